package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/litup/gigfeed/internal/model"
)

// PostgresImageRepo 는 PostgreSQL 을 사용한 공연 이미지 리포지토리.
type PostgresImageRepo struct {
	db *sql.DB
}

// NewPostgresImageRepo 는 PostgresImageRepo 를 생성한다.
func NewPostgresImageRepo(db *sql.DB) *PostgresImageRepo {
	return &PostgresImageRepo{db: db}
}

const imageColumns = `id, perform_id, file_path, file_size, original_name, is_main, created_at`

// FindByID 는 지정 ID 의 이미지 메타데이터를 조회한다. 없으면 nil 을 반환한다.
func (r *PostgresImageRepo) FindByID(ctx context.Context, id int64) (*model.PerformanceImage, error) {
	img := &model.PerformanceImage{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+imageColumns+` FROM perform_img_tmp WHERE id = $1`, id,
	).Scan(&img.ID, &img.PerformID, &img.FilePath, &img.FileSize,
		&img.OriginalName, &img.IsMain, &img.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("이미지 조회에 실패했습니다: %w", err)
	}
	return img, nil
}

// Create 는 이미지 메타데이터를 생성하고 채번된 ID 를 채워 넣는다.
func (r *PostgresImageRepo) Create(ctx context.Context, img *model.PerformanceImage) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO perform_img_tmp (perform_id, file_path, file_size, original_name, is_main)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		img.PerformID, img.FilePath, img.FileSize, img.OriginalName, img.IsMain,
	).Scan(&img.ID, &img.CreatedAt)
	if err != nil {
		return fmt.Errorf("이미지 메타데이터 생성에 실패했습니다: %w", err)
	}
	return nil
}

// ListByPerformID 는 공연의 이미지 목록을 반환한다(is_main 우선, 등록순).
func (r *PostgresImageRepo) ListByPerformID(ctx context.Context, performID int64) ([]*model.PerformanceImage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+imageColumns+` FROM perform_img_tmp
		 WHERE perform_id = $1
		 ORDER BY is_main DESC, id ASC`, performID)
	if err != nil {
		return nil, fmt.Errorf("이미지 목록 조회에 실패했습니다: %w", err)
	}
	defer rows.Close()

	var images []*model.PerformanceImage
	for rows.Next() {
		img := &model.PerformanceImage{}
		if err := rows.Scan(&img.ID, &img.PerformID, &img.FilePath, &img.FileSize,
			&img.OriginalName, &img.IsMain, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("이미지 목록 읽기에 실패했습니다: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("이미지 목록 순회에 실패했습니다: %w", err)
	}
	return images, nil
}

// Delete 는 지정 ID 의 이미지 메타데이터를 삭제한다.
func (r *PostgresImageRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM perform_img_tmp WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("이미지 삭제에 실패했습니다: %w", err)
	}
	return nil
}

// compile-time interface check
var _ ImageRepository = (*PostgresImageRepo)(nil)
