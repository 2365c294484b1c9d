package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/litup/gigfeed/internal/config"
	"github.com/litup/gigfeed/internal/database"
	"github.com/litup/gigfeed/internal/handler"
	"github.com/litup/gigfeed/internal/ingest"
	"github.com/litup/gigfeed/internal/instagram"
	"github.com/litup/gigfeed/internal/logger"
	"github.com/litup/gigfeed/internal/metrics"
	"github.com/litup/gigfeed/internal/middleware"
	"github.com/litup/gigfeed/internal/parser"
	"github.com/litup/gigfeed/internal/repository"
	"github.com/litup/gigfeed/internal/security"
	"github.com/litup/gigfeed/internal/storage"
	"github.com/litup/gigfeed/internal/worker/scrape"
)

// Init 은 애플리케이션 초기화를 수행한다.
// 환경 변수에서 Config 를 읽어 들이고 JSON 구조화 로그를 셋업한다.
// writer 가 지정되면 로그 출력 대상으로 그 writer 를 사용한다.
func Init(w io.Writer) (*config.Config, error) {
	// 1. 로그 초기화 (설정 로드 전부터 로그를 쓸 수 있게 한다)
	logger.SetupDefault(w)

	// 2. 환경 변수에서 설정을 읽어 들인다
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run 은 애플리케이션의 메인 엔트리 포인트.
// 커맨드라인 인수에서 서브커맨드를 해석해 대응하는 모드로 기동한다.
// args 에는 os.Args[1:] 을 넘긴다.
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck 는 경량 서브커맨드이므로 풀 초기화를 건너뛴다
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe 는 관리 API 서버 모드로 기동한다.
// DB 접속을 열고 전체 의존 관계를 와이어링해 HTTP 서버를 기동한다.
// SIGINT 또는 SIGTERM 시그널을 받으면 그레이스풀 셧다운을 수행한다.
func runServe(cfg *config.Config) error {
	// 1. DB 접속
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. 공연 일시 해석용 타임존
	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone %q: %w", cfg.Timezone, err)
	}

	// 3. 리포지토리 초기화
	clubRepo := repository.NewPostgresClubRepo(db)
	channelRepo := repository.NewPostgresChannelRepo(db)
	perfRepo := repository.NewPostgresPerformanceRepo(db)
	imgRepo := repository.NewPostgresImageRepo(db)

	// 4. 오브젝트 스토리지 (서명 URL 발급과 이미지 삭제에 사용)
	r2, err := storage.NewR2Storage(context.Background(), storage.R2Config{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		Bucket:          cfg.R2Bucket,
	})
	if err != nil {
		return fmt.Errorf("failed to init object storage: %w", err)
	}

	// 5. 메트릭 (서버 프로세스의 /metrics 노출용)
	registry := prometheus.NewRegistry()
	metrics.NewCollector(registry)

	// 6. 레이트 리미터 (req/min 단위의 설정값을 req/sec 로 변환)
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	if cfg.RateLimitGeneral > 0 {
		rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
		rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	}
	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	// 7. 라우터 구축
	deps := &handler.RouterDeps{
		Logger:            slog.Default(),
		AdminToken:        cfg.AdminToken,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,

		PerformanceRepo: perfRepo,
		ImageRepo:       imgRepo,
		ChannelRepo:     channelRepo,
		ClubRepo:        clubRepo,

		ImageStore: r2,
		Location:   location,

		MetricsHandler: metrics.Handler(registry),
		DB:             db,
	}

	router := handler.NewRouter(deps)

	// 8. HTTP 서버 기동
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 그레이스풀 셧다운을 위한 시그널 핸들링
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker 는 스크래핑 워커 모드로 기동한다.
// DB 접속을 열고 채널 스크래핑 스케줄러를 기동한다.
// SIGINT 또는 SIGTERM 시그널을 받으면 셧다운한다.
func runWorker(cfg *config.Config) error {
	// 1. DB 접속
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established (worker)")

	// 2. 공연 일시 해석용 타임존
	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone %q: %w", cfg.Timezone, err)
	}

	// 3. 리포지토리 초기화
	channelRepo := repository.NewPostgresChannelRepo(db)
	perfRepo := repository.NewPostgresPerformanceRepo(db)
	imgRepo := repository.NewPostgresImageRepo(db)

	// 4. 시큐리티 서비스 초기화
	ssrfGuard := security.NewSSRFGuard()
	sanitizer := security.NewCaptionSanitizer()

	// 5. 오브젝트 스토리지와 이미지 파이프라인
	r2, err := storage.NewR2Storage(context.Background(), storage.R2Config{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		Bucket:          cfg.R2Bucket,
	})
	if err != nil {
		return fmt.Errorf("failed to init object storage: %w", err)
	}
	imageManager := storage.NewImageManager(
		r2, ssrfGuard, cfg.DownloadTimeout, cfg.DownloadMaxSize, slog.Default(),
	)

	// 6. 인스타그램 클라이언트
	igClient := instagram.NewClient(instagram.ClientConfig{
		BaseURL:      cfg.InstagramBaseURL,
		SessionFile:  cfg.InstagramSessionFile,
		RequestDelay: cfg.ScrapeRequestDelay,
	}, slog.Default())
	postScraper := instagram.NewScraper(igClient, cfg.ScrapeMaxPosts, cfg.ScrapeCutoffDays, slog.Default())
	profileResolver := instagram.NewProfileResolver(igClient, cfg.InstagramBaseURL, slog.Default())

	// 7. 캡션 파서 (설정값을 각 추출기에 주입)
	priceCfg := parser.DefaultPriceConfig()
	priceCfg.MinPrice = cfg.MinPrice
	priceCfg.MaxPrice = cfg.MaxPrice

	artistCfg := parser.DefaultArtistConfig()
	if len(cfg.ExcludedKeywords) > 0 {
		artistCfg.ExcludedKeywords = cfg.ExcludedKeywords
	}
	artistCfg.ExcludedHandleKeywords = cfg.ExcludedHandleWords
	artistCfg.ChannelUsernames = cfg.ChannelUsernames

	urlExtractor := parser.NewURLExtractor(parser.DefaultURLConfig())
	captionParser := parser.New(
		parser.NewDateExtractor(parser.DateConfig{
			DefaultHour:   cfg.DefaultPerformHour,
			DefaultMinute: cfg.DefaultPerformMinute,
			Now:           time.Now,
		}, parser.NewLibraryDateParser()),
		parser.NewPriceExtractor(priceCfg),
		parser.NewTitleExtractor(),
		parser.NewArtistExtractor(artistCfg),
		urlExtractor,
	)

	// 8. 메트릭
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 9. 인제스트 파이프라인과 채널 스크래퍼
	ingestService := ingest.NewService(
		perfRepo, imgRepo, captionParser, sanitizer, imageManager,
		collector, location, slog.Default(),
	)
	channelScraper := scrape.NewChannelScraper(
		channelRepo, postScraper, profileResolver, ingestService,
		urlExtractor, collector,
		scrape.BackoffPolicy{Initial: cfg.ScrapeBackoffMin, Max: cfg.ScrapeBackoffMax},
		cfg.ScrapeInterval, slog.Default(),
	)

	// 10. 스케줄러
	scheduler := scrape.NewScheduler(
		channelRepo, channelScraper, slog.Default(), cfg.ScrapeMaxConcurrent,
	)

	// 그레이스풀 셧다운을 위한 시그널 핸들링
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	// 워커 프로세스의 메트릭을 /metrics 로 노출 (스크래핑 메트릭은 여기서 기록된다)
	metricsServer := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: metrics.SetupMetricsRoute(registry),
	}
	go func() {
		slog.Info("worker metrics endpoint starting",
			slog.String("addr", metricsServer.Addr),
		)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics listen error", slog.String("error", err.Error()))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker starting",
		slog.Duration("scrape_interval", cfg.ScrapeInterval),
		slog.Int("max_concurrent", cfg.ScrapeMaxConcurrent),
	)

	// 스크래핑 스케줄러를 메인 고루틴에서 실행 (블로킹)
	scheduler.Start(ctx, cfg.ScrapeInterval)

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate 는 데이터베이스 마이그레이션을 실행한다.
// 미적용 마이그레이션을 순서대로 모두 적용한다.
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck 는 헬스체크를 실행한다.
// distroless 환경의 Docker 헬스체크용 서브커맨드.
// /healthz 엔드포인트에 HTTP 요청을 보내고 결과를 반환한다.
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/healthz", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL 은 데이터베이스 URL 의 인증 정보를 마스킹한다.
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
