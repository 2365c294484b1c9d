// Package model 은 도메인 모델을 정의한다.
package model

import "time"

// ArtistEntry 는 공연 라인업의 아티스트 한 명을 표현한다.
// Handle 은 "@"로 시작하는 인스타그램 핸들이며, 소문자화한 핸들이 동일성 키가 된다.
// Name 은 표시용 속성으로, 동일 핸들이 여러 표기로 등장하면 최초 표기를 유지한다.
type ArtistEntry struct {
	Name   string `json:"name"`
	Handle string `json:"insta"`
}

// SNSLink 는 수집 원본 게시물로의 링크를 표현한다.
type SNSLink struct {
	SNS  string `json:"sns"`
	Link string `json:"link"`
}

// ParsedPerformance 는 캡션 파서가 추출한 미저장 공연 정보를 표현한다.
// 파서가 캡션 1건당 1회 생성하며, 생성 후에는 변경하지 않는다.
// 가격 필드는 추출 실패 시 nil, 무료 공연이면 0이다.
type ParsedPerformance struct {
	Title        string
	Artists      []ArtistEntry
	PerformDate  string // "YYYY-MM-DD HH:MM" 또는 빈 문자열
	BookingPrice *int
	OnsitePrice  *int
	BookingURL   string
	Description  string // 원본 캡션
	SNSLinks     []SNSLink
}

// Performance 은 perform_tmp 테이블에 저장되는 공연 레코드를 표현한다.
type Performance struct {
	ID           int64
	ClubID       int64
	UserID       int64
	Title        string
	Description  string
	PerformDate  *time.Time
	BookingPrice *int
	OnsitePrice  *int
	BookingURL   string
	Artists      []ArtistEntry
	SNSLinks     []SNSLink
	IsCancelled  bool
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// PerformanceStatus 는 관리 API 에서의 처리 상태를 표현한다.
type PerformanceStatus string

const (
	// StatusPending 은 제목이 비어 있어 운영자 확인이 필요한 상태.
	StatusPending PerformanceStatus = "pending"
	// StatusCompleted 은 제목이 채워져 처리 완료된 상태.
	StatusCompleted PerformanceStatus = "completed"
)

// Status 는 제목 유무로 처리 상태를 판정한다.
func (p *Performance) Status() PerformanceStatus {
	if p.Title == "" {
		return StatusPending
	}
	return StatusCompleted
}

// PerformanceImage 는 perform_img_tmp 테이블에 저장되는 공연 이미지 메타데이터를 표현한다.
// FilePath 는 오브젝트 스토리지 키("performance/{perform_id}/{uuid}{ext}")이다.
type PerformanceImage struct {
	ID           int64
	PerformID    int64
	FilePath     string
	FileSize     int64
	OriginalName string
	IsMain       bool
	CreatedAt    time.Time
}

// Club 은 club_tb 테이블의 공연장(클럽)을 표현한다.
type Club struct {
	ID   int64
	Name string
}
