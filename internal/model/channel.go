// Package model 은 도메인 모델을 정의한다.
package model

import "time"

// Channel 은 수집 대상 인스타그램 채널을 표현한다.
// 채널은 클럽(공연장)에 1:1로 매핑되며, 스크래핑 스케줄 상태를 함께 보관한다.
type Channel struct {
	ID                int64
	Username          string
	ClubID            int64
	ProfileURL        string // 프로필 바이오에서 추출한 외부 링크 (linktr.ee 등)
	ScrapeStatus      ScrapeStatus
	ConsecutiveErrors int
	ErrorMessage      string
	NextScrapeAt      time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ScrapeStatus 는 채널의 스크래핑 상태를 표현한다.
type ScrapeStatus string

const (
	// ScrapeStatusActive 는 스크래핑이 활성화된 상태.
	ScrapeStatusActive ScrapeStatus = "active"
	// ScrapeStatusStopped 는 운영자 또는 인증 실패로 중단된 상태.
	ScrapeStatusStopped ScrapeStatus = "stopped"
	// ScrapeStatusError 는 연속 오류로 백오프 중인 상태.
	ScrapeStatusError ScrapeStatus = "error"
)

// ScrapedPost 는 스크래퍼가 가져온 미저장 게시물 데이터를 표현한다.
// 캡션 파서(internal/parser)와 인제스트 서비스에 전달된다.
type ScrapedPost struct {
	Code      string // 인스타그램 게시물 코드 (shortcode)
	Caption   string
	PostURL   string
	ImageURLs []string
	TakenAt   time.Time
}
