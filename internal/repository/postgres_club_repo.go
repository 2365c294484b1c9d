package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/litup/gigfeed/internal/model"
)

// PostgresClubRepo 는 PostgreSQL 을 사용한 클럽 리포지토리.
type PostgresClubRepo struct {
	db *sql.DB
}

// NewPostgresClubRepo 는 PostgresClubRepo 를 생성한다.
func NewPostgresClubRepo(db *sql.DB) *PostgresClubRepo {
	return &PostgresClubRepo{db: db}
}

// FindByID 는 지정 ID 의 클럽을 조회한다. 없으면 nil 을 반환한다.
func (r *PostgresClubRepo) FindByID(ctx context.Context, id int64) (*model.Club, error) {
	club := &model.Club{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM club_tb WHERE id = $1`, id,
	).Scan(&club.ID, &club.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("클럽 조회에 실패했습니다: %w", err)
	}
	return club, nil
}

// FindByName 은 이름으로 클럽을 검색한다. 없으면 nil 을 반환한다.
func (r *PostgresClubRepo) FindByName(ctx context.Context, name string) (*model.Club, error) {
	club := &model.Club{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM club_tb WHERE name = $1`, name,
	).Scan(&club.ID, &club.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("클럽 이름 검색에 실패했습니다: %w", err)
	}
	return club, nil
}

// Create 는 클럽을 생성하고 채번된 ID 를 채워 넣는다.
func (r *PostgresClubRepo) Create(ctx context.Context, club *model.Club) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO club_tb (name) VALUES ($1) RETURNING id`, club.Name,
	).Scan(&club.ID)
	if err != nil {
		return fmt.Errorf("클럽 생성에 실패했습니다: %w", err)
	}
	return nil
}

// List 는 전체 클럽 목록을 이름순으로 반환한다.
func (r *PostgresClubRepo) List(ctx context.Context) ([]*model.Club, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM club_tb ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("클럽 목록 조회에 실패했습니다: %w", err)
	}
	defer rows.Close()

	var clubs []*model.Club
	for rows.Next() {
		club := &model.Club{}
		if err := rows.Scan(&club.ID, &club.Name); err != nil {
			return nil, fmt.Errorf("클럽 목록 읽기에 실패했습니다: %w", err)
		}
		clubs = append(clubs, club)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("클럽 목록 순회에 실패했습니다: %w", err)
	}
	return clubs, nil
}

// compile-time interface check
var _ ClubRepository = (*PostgresClubRepo)(nil)
