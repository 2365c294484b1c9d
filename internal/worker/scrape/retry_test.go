package scrape

import (
	"errors"
	"testing"
	"time"

	"github.com/litup/gigfeed/internal/instagram"
	"github.com/litup/gigfeed/internal/model"
)

// TestClassifyScrapeError 는 오류가 후속 조치로 올바르게 분류되는지 검증한다.
func TestClassifyScrapeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ScrapeResult
	}{
		{"성공", nil, ResultOK},
		{"세션 만료는 중단", instagram.ErrLoginRequired, ResultStop},
		{"계정 소멸은 중단", instagram.ErrUserNotFound, ResultStop},
		{"요청 제한은 백오프", instagram.ErrRateLimited, ResultBackoff},
		{"일반 오류는 백오프", errors.New("connection reset"), ResultBackoff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyScrapeError(tt.err); got != tt.want {
				t.Errorf("ClassifyScrapeError() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestFailureReason 은 메트릭 라벨이 오류별로 올바른지 검증한다.
func TestFailureReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{instagram.ErrLoginRequired, "login_required"},
		{instagram.ErrUserNotFound, "not_found"},
		{instagram.ErrRateLimited, "rate_limited"},
		{errors.New("timeout"), "error"},
	}

	for _, tt := range tests {
		if got := FailureReason(tt.err); got != tt.want {
			t.Errorf("FailureReason(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

// TestBackoffPolicy_Delay 는 지수 백오프 지연 계산을 검증한다.
func TestBackoffPolicy_Delay(t *testing.T) {
	p := DefaultBackoffPolicy()

	tests := []struct {
		consecutiveErrors int
		want              time.Duration
	}{
		{0, 30 * time.Minute},
		{1, 1 * time.Hour},
		{2, 2 * time.Hour},
		{3, 4 * time.Hour},
		{4, 8 * time.Hour},
		{5, 12 * time.Hour}, // 16시간은 상한에 걸린다
		{10, 12 * time.Hour},
	}

	for _, tt := range tests {
		if got := p.Delay(tt.consecutiveErrors); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.consecutiveErrors, got, tt.want)
		}
	}
}

// TestBackoffPolicy_CustomBounds 는 설정된 범위가 반영되는지 검증한다.
func TestBackoffPolicy_CustomBounds(t *testing.T) {
	p := BackoffPolicy{Initial: 10 * time.Minute, Max: time.Hour}

	if got := p.Delay(0); got != 10*time.Minute {
		t.Errorf("Delay(0) = %v, want 10m", got)
	}
	if got := p.Delay(5); got != time.Hour {
		t.Errorf("Delay(5) = %v, want 1h", got)
	}
}

// TestApplySuccess 는 성공 시 채널 상태가 초기화되는지 검증한다.
func TestApplySuccess(t *testing.T) {
	ch := &model.Channel{
		ScrapeStatus:      model.ScrapeStatusError,
		ConsecutiveErrors: 3,
		ErrorMessage:      "이전 오류",
	}

	before := time.Now()
	ApplySuccess(ch, 6*time.Hour)

	if ch.ScrapeStatus != model.ScrapeStatusActive {
		t.Errorf("ScrapeStatus = %q, want active", ch.ScrapeStatus)
	}
	if ch.ConsecutiveErrors != 0 {
		t.Errorf("ConsecutiveErrors = %d, want 0", ch.ConsecutiveErrors)
	}
	if ch.ErrorMessage != "" {
		t.Errorf("ErrorMessage = %q, want empty", ch.ErrorMessage)
	}
	if ch.NextScrapeAt.Before(before.Add(6*time.Hour - time.Minute)) {
		t.Errorf("NextScrapeAt = %v, 약 6시간 후여야 한다", ch.NextScrapeAt)
	}
}

// TestApplyBackoff 는 오류 시 백오프가 적용되는지 검증한다.
func TestApplyBackoff(t *testing.T) {
	ch := &model.Channel{ScrapeStatus: model.ScrapeStatusActive}

	before := time.Now()
	ApplyBackoff(ch, DefaultBackoffPolicy(), "rate limited")

	if ch.ScrapeStatus != model.ScrapeStatusError {
		t.Errorf("ScrapeStatus = %q, want error", ch.ScrapeStatus)
	}
	if ch.ConsecutiveErrors != 1 {
		t.Errorf("ConsecutiveErrors = %d, want 1", ch.ConsecutiveErrors)
	}
	if ch.ErrorMessage != "rate limited" {
		t.Errorf("ErrorMessage = %q", ch.ErrorMessage)
	}
	// 초회는 30분 후
	if ch.NextScrapeAt.Before(before.Add(29 * time.Minute)) {
		t.Errorf("NextScrapeAt = %v, 약 30분 후여야 한다", ch.NextScrapeAt)
	}
}

// TestApplyBackoff_StopsAtThreshold 는 연속 오류 임계값에서 중단되는지 검증한다.
func TestApplyBackoff_StopsAtThreshold(t *testing.T) {
	ch := &model.Channel{
		ScrapeStatus:      model.ScrapeStatusError,
		ConsecutiveErrors: scrapeFailureThreshold - 1,
	}

	ApplyBackoff(ch, DefaultBackoffPolicy(), "still failing")

	if ch.ScrapeStatus != model.ScrapeStatusStopped {
		t.Errorf("ScrapeStatus = %q, want stopped", ch.ScrapeStatus)
	}
	if ch.ConsecutiveErrors != scrapeFailureThreshold {
		t.Errorf("ConsecutiveErrors = %d, want %d", ch.ConsecutiveErrors, scrapeFailureThreshold)
	}
}

// TestApplyStop 은 중단 조치가 적용되는지 검증한다.
func TestApplyStop(t *testing.T) {
	ch := &model.Channel{ScrapeStatus: model.ScrapeStatusActive}

	ApplyStop(ch, "세션이 만료되었습니다")

	if ch.ScrapeStatus != model.ScrapeStatusStopped {
		t.Errorf("ScrapeStatus = %q, want stopped", ch.ScrapeStatus)
	}
	if ch.ErrorMessage != "세션이 만료되었습니다" {
		t.Errorf("ErrorMessage = %q", ch.ErrorMessage)
	}
}
