// Package repository 는 데이터 영속화 인터페이스를 정의한다.
package repository

import (
	"context"

	"github.com/litup/gigfeed/internal/model"
)

// ClubRepository 는 공연장(클럽) 데이터의 영속화 인터페이스.
type ClubRepository interface {
	// FindByID 는 지정 ID 의 클럽을 조회한다. 없으면 nil 을 반환한다.
	FindByID(ctx context.Context, id int64) (*model.Club, error)

	// FindByName 은 이름으로 클럽을 검색한다. 없으면 nil 을 반환한다.
	FindByName(ctx context.Context, name string) (*model.Club, error)

	// Create 는 클럽을 생성하고 채번된 ID 를 채워 넣는다.
	Create(ctx context.Context, club *model.Club) error

	// List 는 전체 클럽 목록을 반환한다.
	List(ctx context.Context) ([]*model.Club, error)
}

// ChannelRepository 는 수집 대상 채널의 영속화 인터페이스.
type ChannelRepository interface {
	// FindByUsername 은 username 으로 채널을 검색한다. 없으면 nil 을 반환한다.
	FindByUsername(ctx context.Context, username string) (*model.Channel, error)

	// Create 는 채널을 생성하고 채번된 ID 를 채워 넣는다.
	Create(ctx context.Context, channel *model.Channel) error

	// List 는 전체 채널 목록을 반환한다.
	List(ctx context.Context) ([]*model.Channel, error)

	// ListDueForScrape 는 스크래핑 대상 채널을 조회한다.
	// next_scrape_at <= now() 이고 scrape_status 가 active 또는 error 인 채널을
	// FOR UPDATE SKIP LOCKED 로 배타적으로 가져온다.
	ListDueForScrape(ctx context.Context) ([]*model.Channel, error)

	// UpdateScrapeState 는 채널의 스크래핑 상태를 갱신한다.
	// scrape_status, consecutive_errors, error_message, next_scrape_at 을 갱신한다.
	UpdateScrapeState(ctx context.Context, channel *model.Channel) error

	// UpdateStatus 는 채널의 scrape_status 만 갱신한다.
	UpdateStatus(ctx context.Context, username string, status model.ScrapeStatus) error

	// UpdateProfileURL 은 바이오에서 추출한 프로필 링크를 갱신한다.
	UpdateProfileURL(ctx context.Context, id int64, profileURL string) error

	// Delete 는 지정 username 의 채널을 삭제한다.
	Delete(ctx context.Context, username string) error
}

// PerformanceRepository 는 공연 레코드의 영속화 인터페이스.
type PerformanceRepository interface {
	// FindByID 는 지정 ID 의 공연을 조회한다. 없으면 nil 을 반환한다.
	FindByID(ctx context.Context, id int64) (*model.Performance, error)

	// ExistsBySNSLink 는 같은 클럽에 동일 게시물 URL 의 공연이 이미 있는지 검사한다.
	// 스크래핑 재수집 시의 중복 저장을 막는 데 사용한다. 캡션이 수정된
	// 게시물도 같은 URL 이면 중복으로 본다.
	ExistsBySNSLink(ctx context.Context, clubID int64, postURL string) (bool, error)

	// Create 는 공연을 생성하고 채번된 ID 를 채워 넣는다.
	Create(ctx context.Context, perf *model.Performance) error

	// List 는 상태 필터와 클럽 필터로 공연 목록을 조회한다.
	// status: "all" | "pending"(제목 없음) | "completed"(제목 있음)
	// clubID 0 은 전체 클럽, days 0 은 전체 기간을 뜻한다.
	// days 가 양수면 최근 days 일 이내에 수집된 공연만 반환한다. created_at 내림차순.
	List(ctx context.Context, status string, clubID int64, days int, limit, offset int) ([]*model.Performance, error)

	// Update 는 공연 레코드를 갱신한다(운영자 수정).
	Update(ctx context.Context, perf *model.Performance) error

	// Delete 는 지정 ID 의 공연을 삭제한다. 이미지 메타데이터는 CASCADE 삭제된다.
	Delete(ctx context.Context, id int64) error

	// CountByStatus 는 상태별 공연 수(pending, completed)를 반환한다.
	CountByStatus(ctx context.Context) (pending int, completed int, err error)
}

// ImageRepository 는 공연 이미지 메타데이터의 영속화 인터페이스.
// 바이너리 본체는 오브젝트 스토리지에 있고 여기는 키와 속성만 보관한다.
type ImageRepository interface {
	// FindByID 는 지정 ID 의 이미지 메타데이터를 조회한다. 없으면 nil 을 반환한다.
	FindByID(ctx context.Context, id int64) (*model.PerformanceImage, error)

	// Create 는 이미지 메타데이터를 생성하고 채번된 ID 를 채워 넣는다.
	Create(ctx context.Context, img *model.PerformanceImage) error

	// ListByPerformID 는 공연의 이미지 목록을 반환한다(is_main 우선).
	ListByPerformID(ctx context.Context, performID int64) ([]*model.PerformanceImage, error)

	// Delete 는 지정 ID 의 이미지 메타데이터를 삭제한다.
	Delete(ctx context.Context, id int64) error
}
