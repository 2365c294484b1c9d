package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/litup/gigfeed/internal/middleware"
	"github.com/litup/gigfeed/internal/repository"
)

// Pinger 는 헬스체크가 필요로 하는 DB 접속 확인 인터페이스.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterDeps 는 NewRouter 에 필요한 의존 관계를 모은 구조체.
type RouterDeps struct {
	// 미들웨어 의존
	Logger            *slog.Logger
	AdminToken        string
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// 리포지토리
	PerformanceRepo repository.PerformanceRepository
	ImageRepo       repository.ImageRepository
	ChannelRepo     repository.ChannelRepository
	ClubRepo        repository.ClubRepository

	// 오브젝트 스토리지
	ImageStore ImageStore

	// 공연 일시 해석에 쓰는 타임존
	Location *time.Location

	// 운영 계통
	MetricsHandler http.Handler
	DB             Pinger
}

// NewRouter 는 전체 API 엔드포인트의 라우팅과 미들웨어 체인을 구성한 chi.Router 를 반환한다.
//
// 미들웨어 스택의 실행 순서:
//
//	Recovery → SecurityHeaders → CORS → Logging → (API 그룹) Auth → RateLimit
//
// /healthz 와 /metrics 는 인증 체인 밖에 둔다.
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))

	perfHandler := NewPerformanceHandler(deps.PerformanceRepo, deps.ImageRepo, deps.ImageStore, deps.Location, deps.Logger)
	channelHandler := NewChannelHandler(deps.ChannelRepo, deps.ClubRepo)
	statsHandler := NewStatsHandler(deps.PerformanceRepo, deps.ClubRepo)

	// --- 인증 불요 루트 ---

	r.Get("/healthz", newHealthzHandler(deps.DB))
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// --- 인증이 필요한 루트 ---
	// 미들웨어 스택: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAdminAuthMiddleware(deps.AdminToken))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 통계와 클럽
		r.Get("/api/stats", statsHandler.GetStats)
		r.Get("/api/clubs", statsHandler.ListClubs)

		// 공연 관리
		r.Route("/api/performances", func(r chi.Router) {
			r.Get("/", perfHandler.ListPerformances)

			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", perfHandler.UpdatePerformance)
				r.Delete("/", perfHandler.DeletePerformance)
				r.Get("/images", perfHandler.GetPerformanceImages)
			})
		})

		// 채널 관리
		r.Route("/api/channels", func(r chi.Router) {
			r.Get("/", channelHandler.ListChannels)
			// POST /api/channels - 채널 등록 (등록 전용 레이트 제한을 추가)
			r.With(deps.RateLimiter.ChannelRegistrationMiddleware()).Post("/", channelHandler.RegisterChannel)
			r.Delete("/{username}", channelHandler.DeleteChannel)
		})
	})

	return r
}

// newHealthzHandler 는 DB 접속을 확인하는 헬스체크 핸들러를 반환한다.
// DB 가 nil 이면 프로세스 생존만 보고한다.
func newHealthzHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				http.Error(w, "database unreachable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}
