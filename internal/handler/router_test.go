package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/litup/gigfeed/internal/metrics"
	"github.com/litup/gigfeed/internal/middleware"
)

// fakePinger 는 Pinger 의 테스트 대역.
type fakePinger struct {
	err error
}

func (f *fakePinger) PingContext(ctx context.Context) error {
	return f.err
}

// newTestRouterDeps 는 테스트용 RouterDeps 를 구성한다.
func newTestRouterDeps(t *testing.T) *RouterDeps {
	t.Helper()

	rl := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(rl.Stop)

	registry := prometheus.NewRegistry()
	metrics.NewCollector(registry)

	return &RouterDeps{
		Logger:            newHandlerLogger(),
		AdminToken:        "router-admin-token",
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       rl,
		PerformanceRepo:   newMockPerformanceRepo(),
		ImageRepo:         &mockImageRepo{},
		ChannelRepo:       newMockChannelRepo(),
		ClubRepo:          newMockClubRepo(),
		ImageStore:        &fakeImageStore{},
		Location:          time.UTC,
		MetricsHandler:    metrics.Handler(registry),
		DB:                &fakePinger{},
	}
}

// TestRouter_HealthzOpen 은 헬스체크가 인증 없이 동작하는지 검증한다.
func TestRouter_HealthzOpen(t *testing.T) {
	router := NewRouter(newTestRouterDeps(t))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Result().StatusCode)
	}
}

// TestRouter_HealthzFailsWhenDBDown 은 DB 접속 불가 시 503 이 반환되는지 검증한다.
func TestRouter_HealthzFailsWhenDBDown(t *testing.T) {
	deps := newTestRouterDeps(t)
	deps.DB = &fakePinger{err: errors.New("connection refused")}
	router := NewRouter(deps)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Result().StatusCode)
	}
}

// TestRouter_MetricsOpen 은 메트릭 엔드포인트가 인증 없이 동작하는지 검증한다.
func TestRouter_MetricsOpen(t *testing.T) {
	router := NewRouter(newTestRouterDeps(t))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Result().StatusCode)
	}
}

// TestRouter_APIRequiresAuth 는 /api 이하가 토큰 없이는 401 인지 검증한다.
func TestRouter_APIRequiresAuth(t *testing.T) {
	router := NewRouter(newTestRouterDeps(t))

	endpoints := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/stats"},
		{http.MethodGet, "/api/clubs"},
		{http.MethodGet, "/api/performances"},
		{http.MethodGet, "/api/channels"},
		{http.MethodPost, "/api/channels"},
		{http.MethodPut, "/api/performances/1"},
		{http.MethodDelete, "/api/performances/1"},
	}

	for _, ep := range endpoints {
		req := httptest.NewRequest(ep.method, ep.path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want 401", ep.method, ep.path, w.Result().StatusCode)
		}
	}
}

// TestRouter_APIAllowsWithToken 은 토큰이 있으면 /api 가 동작하는지 검증한다.
func TestRouter_APIAllowsWithToken(t *testing.T) {
	router := NewRouter(newTestRouterDeps(t))

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer router-admin-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Result().StatusCode)
	}
}

// TestRouter_SecurityHeadersApplied 는 보안 헤더가 전 응답에 부여되는지 검증한다.
func TestRouter_SecurityHeadersApplied(t *testing.T) {
	router := NewRouter(newTestRouterDeps(t))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Result().Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := w.Result().Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
