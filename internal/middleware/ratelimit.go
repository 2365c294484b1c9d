package middleware

import (
	"encoding/json"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig 는 레이트 제한 설정을 보관한다.
type RateLimiterConfig struct {
	GeneralRate     rate.Limit    // 관리 API 전반의 레이트 (req/sec). 120/60 = 2 req/sec
	GeneralBurst    int           // 관리 API 전반의 버스트 크기
	ChannelRegRate  rate.Limit    // 채널 등록의 레이트 (req/sec). 10/60
	ChannelRegBurst int           // 채널 등록의 버스트 크기
	CleanupInterval time.Duration // 만료 엔트리 정리 간격
}

// DefaultRateLimiterConfig 는 기본 레이트 제한 설정을 반환한다.
// 관리 API 전반 120 req/min, 채널 등록 10 req/min (클라이언트 IP 단위).
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(120.0 / 60.0), // 2 req/sec
		GeneralBurst:    120,
		ChannelRegRate:  rate.Limit(10.0 / 60.0), // ~0.167 req/sec
		ChannelRegBurst: 10,
		CleanupInterval: 5 * time.Minute,
	}
}

// clientLimiter 는 클라이언트별 레이트 리미터와 접근 시각을 보관한다.
type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter 는 클라이언트 IP 단위의 레이트 제한을 관리한다.
// 관리 API 전반의 제한과 채널 등록 전용 제한의 2종류를 제공한다.
type RateLimiter struct {
	config RateLimiterConfig

	generalMu       sync.RWMutex
	generalLimiters map[string]*clientLimiter

	channelRegMu       sync.RWMutex
	channelRegLimiters map[string]*clientLimiter

	stopCh chan struct{}
}

// NewRateLimiter 는 새 RateLimiter 를 생성한다.
// 백그라운드에서 만료 엔트리 정리를 시작한다.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		config:             config,
		generalLimiters:    make(map[string]*clientLimiter),
		channelRegLimiters: make(map[string]*clientLimiter),
		stopCh:             make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop 은 정리용 백그라운드 고루틴을 정지한다.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// clientKey 는 레이트 제한의 키가 되는 클라이언트 IP 를 추출한다.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// GeneralMiddleware 는 관리 API 전반의 레이트 제한 미들웨어를 반환한다.
func (rl *RateLimiter) GeneralMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)
			limiter := rl.getOrCreateGeneralLimiter(key)

			if !limiter.Allow() {
				writeRateLimitResponse(w, rl.config.GeneralRate)
				slog.Warn("rate limit exceeded",
					slog.String("client", key),
					slog.String("limit_type", "general"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ChannelRegistrationMiddleware 는 채널 등록 전용 레이트 제한 미들웨어를 반환한다.
// 관리 API 전반의 제한과는 독립적으로 동작한다.
func (rl *RateLimiter) ChannelRegistrationMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)
			limiter := rl.getOrCreateChannelRegLimiter(key)

			if !limiter.Allow() {
				writeRateLimitResponse(w, rl.config.ChannelRegRate)
				slog.Warn("rate limit exceeded",
					slog.String("client", key),
					slog.String("limit_type", "channel_registration"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GeneralLimiterCount 는 현재 관리 중인 API 전반 리미터의 엔트리 수를 반환한다.
// 테스트 및 메트릭용.
func (rl *RateLimiter) GeneralLimiterCount() int {
	rl.generalMu.RLock()
	defer rl.generalMu.RUnlock()
	return len(rl.generalLimiters)
}

// ChannelRegLimiterCount 는 현재 관리 중인 채널 등록 리미터의 엔트리 수를 반환한다.
// 테스트 및 메트릭용.
func (rl *RateLimiter) ChannelRegLimiterCount() int {
	rl.channelRegMu.RLock()
	defer rl.channelRegMu.RUnlock()
	return len(rl.channelRegLimiters)
}

// getOrCreateGeneralLimiter 는 클라이언트의 API 전반 리미터를 취득하거나 생성한다.
func (rl *RateLimiter) getOrCreateGeneralLimiter(key string) *rate.Limiter {
	rl.generalMu.RLock()
	cl, exists := rl.generalLimiters[key]
	rl.generalMu.RUnlock()

	if exists {
		rl.generalMu.Lock()
		cl.lastAccess = time.Now()
		rl.generalMu.Unlock()
		return cl.limiter
	}

	rl.generalMu.Lock()
	defer rl.generalMu.Unlock()

	// 더블 체크
	if cl, exists := rl.generalLimiters[key]; exists {
		cl.lastAccess = time.Now()
		return cl.limiter
	}

	limiter := rate.NewLimiter(rl.config.GeneralRate, rl.config.GeneralBurst)
	rl.generalLimiters[key] = &clientLimiter{
		limiter:    limiter,
		lastAccess: time.Now(),
	}

	return limiter
}

// getOrCreateChannelRegLimiter 는 클라이언트의 채널 등록 리미터를 취득하거나 생성한다.
func (rl *RateLimiter) getOrCreateChannelRegLimiter(key string) *rate.Limiter {
	rl.channelRegMu.RLock()
	cl, exists := rl.channelRegLimiters[key]
	rl.channelRegMu.RUnlock()

	if exists {
		rl.channelRegMu.Lock()
		cl.lastAccess = time.Now()
		rl.channelRegMu.Unlock()
		return cl.limiter
	}

	rl.channelRegMu.Lock()
	defer rl.channelRegMu.Unlock()

	// 더블 체크
	if cl, exists := rl.channelRegLimiters[key]; exists {
		cl.lastAccess = time.Now()
		return cl.limiter
	}

	limiter := rate.NewLimiter(rl.config.ChannelRegRate, rl.config.ChannelRegBurst)
	rl.channelRegLimiters[key] = &clientLimiter{
		limiter:    limiter,
		lastAccess: time.Now(),
	}

	return limiter
}

// cleanupLoop 는 백그라운드에서 만료 엔트리를 주기적으로 정리한다.
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup 은 최종 접근 시각이 CleanupInterval 의 2배를 넘은 엔트리를 삭제한다.
func (rl *RateLimiter) cleanup() {
	ttl := rl.config.CleanupInterval * 2

	now := time.Now()

	rl.generalMu.Lock()
	for key, cl := range rl.generalLimiters {
		if now.Sub(cl.lastAccess) > ttl {
			delete(rl.generalLimiters, key)
		}
	}
	rl.generalMu.Unlock()

	rl.channelRegMu.Lock()
	for key, cl := range rl.channelRegLimiters {
		if now.Sub(cl.lastAccess) > ttl {
			delete(rl.channelRegLimiters, key)
		}
	}
	rl.channelRegMu.Unlock()
}

// writeRateLimitResponse 는 429 Too Many Requests 응답을 기록한다.
// Retry-After 헤더에는 토큰이 보충될 때까지의 추정 초수를 설정한다.
func writeRateLimitResponse(w http.ResponseWriter, r rate.Limit) {
	// Retry-After 산출: 토큰 1개가 보충될 때까지의 초수
	retryAfterSec := int(math.Ceil(1.0 / float64(r)))
	if retryAfterSec < 1 {
		retryAfterSec = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSec))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)

	json.NewEncoder(w).Encode(map[string]string{
		"code":     "rate_limit_exceeded",
		"message":  "Too many requests. Please try again later.",
		"category": "system",
		"action":   "Please wait and retry after the specified time.",
	})
}
