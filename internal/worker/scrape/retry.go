package scrape

import (
	"errors"
	"fmt"
	"time"

	"github.com/litup/gigfeed/internal/instagram"
	"github.com/litup/gigfeed/internal/model"
)

// ScrapeResult 는 스크래핑 오류에 따른 후속 조치의 분류.
type ScrapeResult int

const (
	// ResultOK 는 스크래핑 성공.
	ResultOK ScrapeResult = iota
	// ResultStop 은 스크래핑 중단이 필요한 오류 (세션 사망 / 계정 소멸).
	ResultStop
	// ResultBackoff 는 백오프 후 재시도할 오류 (요청 제한 / 일시 장애).
	ResultBackoff
)

// scrapeFailureThreshold 는 연속 오류로 스크래핑을 중단하는 임계값.
const scrapeFailureThreshold = 10

// ClassifyScrapeError 는 스크래핑 오류를 후속 조치로 분류한다.
// 세션 만료는 재로드 재시도 이후에도 남은 것이므로 중단 대상이다.
func ClassifyScrapeError(err error) ScrapeResult {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, instagram.ErrLoginRequired):
		return ResultStop
	case errors.Is(err, instagram.ErrUserNotFound):
		return ResultStop
	default:
		return ResultBackoff
	}
}

// FailureReason 은 메트릭 라벨용 오류 원인 문자열을 반환한다.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, instagram.ErrLoginRequired):
		return "login_required"
	case errors.Is(err, instagram.ErrUserNotFound):
		return "not_found"
	case errors.Is(err, instagram.ErrRateLimited):
		return "rate_limited"
	default:
		return "error"
	}
}

// BackoffPolicy 는 지수 백오프의 설정.
type BackoffPolicy struct {
	Initial time.Duration // 초회 지연
	Max     time.Duration // 최대 지연
}

// DefaultBackoffPolicy 는 30분 초회, 12시간 상한의 기본 정책을 반환한다.
func DefaultBackoffPolicy() BackoffPolicy {
	return BackoffPolicy{Initial: 30 * time.Minute, Max: 12 * time.Hour}
}

// Delay 는 연속 오류 횟수에 따른 지수 백오프 지연을 계산한다.
// 초회 Initial, 2배씩 증가, 최대 Max.
func (p BackoffPolicy) Delay(consecutiveErrors int) time.Duration {
	delay := p.Initial
	for i := 0; i < consecutiveErrors; i++ {
		delay *= 2
		if delay > p.Max {
			return p.Max
		}
	}
	return delay
}

// ApplySuccess 는 스크래핑 성공 시 채널 상태를 초기화한다.
// 연속 오류를 0으로 리셋하고 다음 스크래핑 시각을 interval 후로 설정한다.
func ApplySuccess(ch *model.Channel, interval time.Duration) {
	ch.ScrapeStatus = model.ScrapeStatusActive
	ch.ConsecutiveErrors = 0
	ch.ErrorMessage = ""
	ch.NextScrapeAt = time.Now().Add(interval)
	ch.UpdatedAt = time.Now()
}

// ApplyBackoff 는 채널에 백오프 전략을 적용한다.
// 연속 오류를 증가시키고 지수 백오프로 next_scrape_at 을 설정한다.
// 임계값에 도달하면 스크래핑을 중단한다.
func ApplyBackoff(ch *model.Channel, policy BackoffPolicy, reason string) {
	ch.ConsecutiveErrors++
	ch.ErrorMessage = reason
	ch.UpdatedAt = time.Now()

	if ch.ConsecutiveErrors >= scrapeFailureThreshold {
		ch.ScrapeStatus = model.ScrapeStatusStopped
		ch.ErrorMessage = fmt.Sprintf("오류가 %d회 연속되어 스크래핑을 중단했습니다: %s", ch.ConsecutiveErrors, reason)
		return
	}

	ch.ScrapeStatus = model.ScrapeStatusError
	ch.NextScrapeAt = time.Now().Add(policy.Delay(ch.ConsecutiveErrors - 1))
}

// ApplyStop 은 채널의 스크래핑을 중단한다.
func ApplyStop(ch *model.Channel, reason string) {
	ch.ScrapeStatus = model.ScrapeStatusStopped
	ch.ErrorMessage = reason
	ch.UpdatedAt = time.Now()
}
