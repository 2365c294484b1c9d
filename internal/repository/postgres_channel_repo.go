package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/litup/gigfeed/internal/model"
)

// PostgresChannelRepo 는 PostgreSQL 을 사용한 채널 리포지토리.
type PostgresChannelRepo struct {
	db *sql.DB
}

// NewPostgresChannelRepo 는 PostgresChannelRepo 를 생성한다.
func NewPostgresChannelRepo(db *sql.DB) *PostgresChannelRepo {
	return &PostgresChannelRepo{db: db}
}

const channelColumns = `id, username, club_id, profile_url, scrape_status,
        consecutive_errors, error_message, next_scrape_at, created_at, updated_at`

// FindByUsername 은 username 으로 채널을 검색한다. 없으면 nil 을 반환한다.
func (r *PostgresChannelRepo) FindByUsername(ctx context.Context, username string) (*model.Channel, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+channelColumns+` FROM channel_tb WHERE username = $1`, username)

	ch, err := scanChannel(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("채널 조회에 실패했습니다: %w", err)
	}
	return ch, nil
}

// Create 는 채널을 생성하고 채번된 ID 를 채워 넣는다.
func (r *PostgresChannelRepo) Create(ctx context.Context, channel *model.Channel) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO channel_tb (username, club_id, profile_url, scrape_status, next_scrape_at)
		 VALUES ($1, $2, $3, $4, now())
		 RETURNING id, next_scrape_at, created_at, updated_at`,
		channel.Username, channel.ClubID, channel.ProfileURL, model.ScrapeStatusActive,
	).Scan(&channel.ID, &channel.NextScrapeAt, &channel.CreatedAt, &channel.UpdatedAt)
	if err != nil {
		return fmt.Errorf("채널 생성에 실패했습니다: %w", err)
	}
	channel.ScrapeStatus = model.ScrapeStatusActive
	return nil
}

// List 는 전체 채널 목록을 username 순으로 반환한다.
func (r *PostgresChannelRepo) List(ctx context.Context) ([]*model.Channel, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+channelColumns+` FROM channel_tb ORDER BY username ASC`)
	if err != nil {
		return nil, fmt.Errorf("채널 목록 조회에 실패했습니다: %w", err)
	}
	defer rows.Close()

	return collectChannels(rows)
}

// ListDueForScrape 는 스크래핑 대상 채널을 배타적으로 가져온다.
func (r *PostgresChannelRepo) ListDueForScrape(ctx context.Context) ([]*model.Channel, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+channelColumns+` FROM channel_tb
		 WHERE next_scrape_at <= now()
		   AND scrape_status IN ('active', 'error')
		 ORDER BY next_scrape_at ASC
		 FOR UPDATE SKIP LOCKED`)
	if err != nil {
		return nil, fmt.Errorf("스크래핑 대상 채널 조회에 실패했습니다: %w", err)
	}
	defer rows.Close()

	return collectChannels(rows)
}

// UpdateScrapeState 는 채널의 스크래핑 상태를 갱신한다.
func (r *PostgresChannelRepo) UpdateScrapeState(ctx context.Context, channel *model.Channel) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE channel_tb SET
		    scrape_status = $2,
		    consecutive_errors = $3,
		    error_message = $4,
		    next_scrape_at = $5,
		    updated_at = now()
		 WHERE id = $1`,
		channel.ID, channel.ScrapeStatus, channel.ConsecutiveErrors,
		channel.ErrorMessage, channel.NextScrapeAt,
	)
	if err != nil {
		return fmt.Errorf("채널 스크래핑 상태 갱신에 실패했습니다: %w", err)
	}
	return nil
}

// UpdateStatus 는 채널의 scrape_status 만 갱신한다.
func (r *PostgresChannelRepo) UpdateStatus(ctx context.Context, username string, status model.ScrapeStatus) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE channel_tb SET scrape_status = $2, updated_at = now() WHERE username = $1`,
		username, status,
	)
	if err != nil {
		return fmt.Errorf("채널 상태 갱신에 실패했습니다: %w", err)
	}
	return nil
}

// UpdateProfileURL 은 바이오에서 추출한 프로필 링크를 갱신한다.
func (r *PostgresChannelRepo) UpdateProfileURL(ctx context.Context, id int64, profileURL string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE channel_tb SET profile_url = $2, updated_at = now() WHERE id = $1`,
		id, profileURL,
	)
	if err != nil {
		return fmt.Errorf("채널 프로필 링크 갱신에 실패했습니다: %w", err)
	}
	return nil
}

// Delete 는 지정 username 의 채널을 삭제한다.
func (r *PostgresChannelRepo) Delete(ctx context.Context, username string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM channel_tb WHERE username = $1`, username)
	if err != nil {
		return fmt.Errorf("채널 삭제에 실패했습니다: %w", err)
	}
	return nil
}

// scanChannel 은 channelColumns 순서의 행을 Channel 로 읽어 들인다.
func scanChannel(row rowScanner) (*model.Channel, error) {
	ch := &model.Channel{}
	err := row.Scan(
		&ch.ID, &ch.Username, &ch.ClubID, &ch.ProfileURL, &ch.ScrapeStatus,
		&ch.ConsecutiveErrors, &ch.ErrorMessage, &ch.NextScrapeAt,
		&ch.CreatedAt, &ch.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// collectChannels 는 조회 결과 전체를 Channel 슬라이스로 모은다.
func collectChannels(rows *sql.Rows) ([]*model.Channel, error) {
	var channels []*model.Channel
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, fmt.Errorf("채널 목록 읽기에 실패했습니다: %w", err)
		}
		channels = append(channels, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("채널 목록 순회에 실패했습니다: %w", err)
	}
	return channels, nil
}

// compile-time interface check
var _ ChannelRepository = (*PostgresChannelRepo)(nil)
