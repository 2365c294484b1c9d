package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/litup/gigfeed/internal/model"
)

// PostgresPerformanceRepo 는 PostgreSQL 을 사용한 공연 리포지토리.
type PostgresPerformanceRepo struct {
	db *sql.DB
}

// NewPostgresPerformanceRepo 는 PostgresPerformanceRepo 를 생성한다.
func NewPostgresPerformanceRepo(db *sql.DB) *PostgresPerformanceRepo {
	return &PostgresPerformanceRepo{db: db}
}

const performanceColumns = `id, club_id, user_id, title, description, perform_date,
        booking_price, onsite_price, booking_url, artists, sns_links,
        is_cancelled, created_at, updated_at`

// FindByID 는 지정 ID 의 공연을 조회한다. 없으면 nil 을 반환한다.
func (r *PostgresPerformanceRepo) FindByID(ctx context.Context, id int64) (*model.Performance, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+performanceColumns+` FROM perform_tmp WHERE id = $1`, id)

	perf, err := scanPerformance(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("공연 조회에 실패했습니다: %w", err)
	}
	return perf, nil
}

// ExistsBySNSLink 는 같은 클럽에 동일 게시물 URL 의 공연이 이미 있는지 검사한다.
func (r *PostgresPerformanceRepo) ExistsBySNSLink(ctx context.Context, clubID int64, postURL string) (bool, error) {
	key, err := json.Marshal([]model.SNSLink{{SNS: "insta", Link: postURL}})
	if err != nil {
		return false, fmt.Errorf("게시물 URL 직렬화에 실패했습니다: %w", err)
	}

	var exists bool
	err = r.db.QueryRowContext(ctx,
		`SELECT EXISTS (
		    SELECT 1 FROM perform_tmp
		    WHERE club_id = $1 AND sns_links @> $2::jsonb
		 )`,
		clubID, key,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("공연 중복 검사에 실패했습니다: %w", err)
	}
	return exists, nil
}

// Create 는 공연을 생성하고 채번된 ID 를 채워 넣는다.
func (r *PostgresPerformanceRepo) Create(ctx context.Context, perf *model.Performance) error {
	artists, err := json.Marshal(emptyIfNilArtists(perf.Artists))
	if err != nil {
		return fmt.Errorf("아티스트 목록 직렬화에 실패했습니다: %w", err)
	}
	snsLinks, err := json.Marshal(emptyIfNilLinks(perf.SNSLinks))
	if err != nil {
		return fmt.Errorf("SNS 링크 직렬화에 실패했습니다: %w", err)
	}

	err = r.db.QueryRowContext(ctx,
		`INSERT INTO perform_tmp (club_id, user_id, title, description, perform_date,
		                          booking_price, onsite_price, booking_url,
		                          artists, sns_links, is_cancelled)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at`,
		perf.ClubID, perf.UserID, perf.Title, perf.Description,
		nullTime(perf.PerformDate), nullInt(perf.BookingPrice), nullInt(perf.OnsitePrice),
		perf.BookingURL, artists, snsLinks, perf.IsCancelled,
	).Scan(&perf.ID, &perf.CreatedAt)
	if err != nil {
		return fmt.Errorf("공연 생성에 실패했습니다: %w", err)
	}
	return nil
}

// List 는 상태 필터와 클럽 필터로 공연 목록을 조회한다.
func (r *PostgresPerformanceRepo) List(ctx context.Context, status string, clubID int64, days int, limit, offset int) ([]*model.Performance, error) {
	query := `SELECT ` + performanceColumns + ` FROM perform_tmp WHERE 1=1`
	args := []any{}

	switch status {
	case "pending":
		query += ` AND title = ''`
	case "completed":
		query += ` AND title <> ''`
	}
	if clubID > 0 {
		args = append(args, clubID)
		query += fmt.Sprintf(` AND club_id = $%d`, len(args))
	}
	if days > 0 {
		args = append(args, days)
		query += fmt.Sprintf(` AND created_at >= NOW() - make_interval(days => $%d)`, len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args))
	args = append(args, offset)
	query += fmt.Sprintf(` OFFSET $%d`, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("공연 목록 조회에 실패했습니다: %w", err)
	}
	defer rows.Close()

	var perfs []*model.Performance
	for rows.Next() {
		perf, err := scanPerformance(rows)
		if err != nil {
			return nil, fmt.Errorf("공연 목록 읽기에 실패했습니다: %w", err)
		}
		perfs = append(perfs, perf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("공연 목록 순회에 실패했습니다: %w", err)
	}
	return perfs, nil
}

// Update 는 공연 레코드를 갱신한다.
func (r *PostgresPerformanceRepo) Update(ctx context.Context, perf *model.Performance) error {
	artists, err := json.Marshal(emptyIfNilArtists(perf.Artists))
	if err != nil {
		return fmt.Errorf("아티스트 목록 직렬화에 실패했습니다: %w", err)
	}
	snsLinks, err := json.Marshal(emptyIfNilLinks(perf.SNSLinks))
	if err != nil {
		return fmt.Errorf("SNS 링크 직렬화에 실패했습니다: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE perform_tmp SET
		    title = $2, description = $3, perform_date = $4,
		    booking_price = $5, onsite_price = $6, booking_url = $7,
		    artists = $8, sns_links = $9, is_cancelled = $10,
		    updated_at = now()
		 WHERE id = $1`,
		perf.ID, perf.Title, perf.Description, nullTime(perf.PerformDate),
		nullInt(perf.BookingPrice), nullInt(perf.OnsitePrice), perf.BookingURL,
		artists, snsLinks, perf.IsCancelled,
	)
	if err != nil {
		return fmt.Errorf("공연 갱신에 실패했습니다: %w", err)
	}
	return nil
}

// Delete 는 지정 ID 의 공연을 삭제한다.
func (r *PostgresPerformanceRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM perform_tmp WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("공연 삭제에 실패했습니다: %w", err)
	}
	return nil
}

// CountByStatus 는 상태별 공연 수를 반환한다.
func (r *PostgresPerformanceRepo) CountByStatus(ctx context.Context) (int, int, error) {
	var pending, completed int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FILTER (WHERE title = ''),
		        count(*) FILTER (WHERE title <> '')
		 FROM perform_tmp`,
	).Scan(&pending, &completed)
	if err != nil {
		return 0, 0, fmt.Errorf("공연 상태별 집계에 실패했습니다: %w", err)
	}
	return pending, completed, nil
}

// rowScanner 는 *sql.Row 와 *sql.Rows 공통의 Scan 인터페이스.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanPerformance 는 performanceColumns 순서의 행을 Performance 로 읽어 들인다.
func scanPerformance(row rowScanner) (*model.Performance, error) {
	perf := &model.Performance{}
	var performDate, updatedAt sql.NullTime
	var bookingPrice, onsitePrice sql.NullInt64
	var artists, snsLinks []byte

	err := row.Scan(
		&perf.ID, &perf.ClubID, &perf.UserID, &perf.Title, &perf.Description,
		&performDate, &bookingPrice, &onsitePrice, &perf.BookingURL,
		&artists, &snsLinks, &perf.IsCancelled, &perf.CreatedAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if performDate.Valid {
		t := performDate.Time
		perf.PerformDate = &t
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		perf.UpdatedAt = &t
	}
	if bookingPrice.Valid {
		v := int(bookingPrice.Int64)
		perf.BookingPrice = &v
	}
	if onsitePrice.Valid {
		v := int(onsitePrice.Int64)
		perf.OnsitePrice = &v
	}
	if err := json.Unmarshal(artists, &perf.Artists); err != nil {
		return nil, fmt.Errorf("아티스트 목록 역직렬화에 실패했습니다: %w", err)
	}
	if err := json.Unmarshal(snsLinks, &perf.SNSLinks); err != nil {
		return nil, fmt.Errorf("SNS 링크 역직렬화에 실패했습니다: %w", err)
	}
	return perf, nil
}

// emptyIfNilArtists 는 nil 슬라이스를 빈 JSON 배열로 직렬화하기 위한 보정.
func emptyIfNilArtists(a []model.ArtistEntry) []model.ArtistEntry {
	if a == nil {
		return []model.ArtistEntry{}
	}
	return a
}

func emptyIfNilLinks(l []model.SNSLink) []model.SNSLink {
	if l == nil {
		return []model.SNSLink{}
	}
	return l
}

// nullInt 는 *int 를 sql.NullInt64 로 변환한다.
func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

// nullTime 은 *time.Time 을 sql.NullTime 으로 변환한다.
func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// compile-time interface check
var _ PerformanceRepository = (*PostgresPerformanceRepo)(nil)
