package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config 는 애플리케이션 전체 설정을 보관한다.
// 기동 시 환경 변수에서 1회 읽어 들이며 이뮤터블로 다룬다.
type Config struct {
	// Database
	DatabaseURL string

	// Admin API
	AdminToken string

	// Instagram
	InstagramSessionFile string
	InstagramBaseURL     string

	// R2 (오브젝트 스토리지)
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2Bucket          string

	// Scrape
	ScrapeInterval      time.Duration
	ScrapeMaxConcurrent int
	ScrapeRequestDelay  time.Duration
	ScrapeMaxPosts      int
	// ScrapeCutoffDays 가 양수면 최근 N 일 이내 게시물만 수집한다(0 은 무제한).
	ScrapeCutoffDays    int
	ScrapeBackoffMin    time.Duration
	ScrapeBackoffMax    time.Duration

	// Image Download
	DownloadTimeout time.Duration
	DownloadMaxSize int64

	// Parser
	// Timezone 은 공연 일시 해석에 쓰는 IANA 타임존 이름.
	Timezone             string
	DefaultPerformHour   int
	DefaultPerformMinute int
	MinPrice             int
	MaxPrice             int
	ChannelUsernames     []string
	ExcludedKeywords     []string
	ExcludedHandleWords  []string

	// Rate Limit
	RateLimitGeneral int

	// Server
	ServerPort        string
	CORSAllowedOrigin string
}

// Load 는 환경 변수에서 Config 를 읽어 들인다.
// 작업 디렉터리에 .env 파일이 있으면 먼저 읽는다(없어도 에러가 아니다).
// 필수 환경 변수가 미설정이면 에러를 반환한다.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.AdminToken = os.Getenv("ADMIN_TOKEN")
	if cfg.AdminToken == "" {
		missing = append(missing, "ADMIN_TOKEN")
	}

	cfg.R2AccountID = os.Getenv("R2_ACCOUNT_ID")
	if cfg.R2AccountID == "" {
		missing = append(missing, "R2_ACCOUNT_ID")
	}

	cfg.R2AccessKeyID = os.Getenv("R2_ACCESS_KEY_ID")
	if cfg.R2AccessKeyID == "" {
		missing = append(missing, "R2_ACCESS_KEY_ID")
	}

	cfg.R2SecretAccessKey = os.Getenv("R2_SECRET_ACCESS_KEY")
	if cfg.R2SecretAccessKey == "" {
		missing = append(missing, "R2_SECRET_ACCESS_KEY")
	}

	cfg.R2Bucket = os.Getenv("R2_BUCKET")
	if cfg.R2Bucket == "" {
		missing = append(missing, "R2_BUCKET")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.InstagramSessionFile = getEnvString("INSTAGRAM_SESSION_FILE", "session.json")
	cfg.InstagramBaseURL = getEnvString("INSTAGRAM_BASE_URL", "https://www.instagram.com")
	cfg.ScrapeInterval = getEnvDuration("SCRAPE_INTERVAL", 6*time.Hour)
	cfg.ScrapeMaxConcurrent = getEnvInt("SCRAPE_MAX_CONCURRENT", 2)
	cfg.ScrapeRequestDelay = getEnvDuration("SCRAPE_REQUEST_DELAY", 5*time.Second)
	cfg.ScrapeMaxPosts = getEnvInt("SCRAPE_MAX_POSTS", 12)
	cfg.ScrapeCutoffDays = getEnvInt("SCRAPE_CUTOFF_DAYS", 0)
	cfg.ScrapeBackoffMin = getEnvDuration("SCRAPE_BACKOFF_MIN", 30*time.Minute)
	cfg.ScrapeBackoffMax = getEnvDuration("SCRAPE_BACKOFF_MAX", 12*time.Hour)
	cfg.DownloadTimeout = getEnvDuration("DOWNLOAD_TIMEOUT", 15*time.Second)
	cfg.DownloadMaxSize = getEnvInt64("DOWNLOAD_MAX_SIZE", 10485760)
	cfg.Timezone = getEnvString("TIMEZONE", "Asia/Seoul")
	cfg.DefaultPerformHour = getEnvInt("DEFAULT_PERFORM_HOUR", 19)
	cfg.DefaultPerformMinute = getEnvInt("DEFAULT_PERFORM_MINUTE", 0)
	cfg.MinPrice = getEnvInt("MIN_PRICE", 1000)
	cfg.MaxPrice = getEnvInt("MAX_PRICE", 300000)
	cfg.ChannelUsernames = getEnvStringSlice("CHANNEL_USERNAMES", nil)
	cfg.ExcludedKeywords = getEnvStringSlice("EXCLUDED_KEYWORDS",
		[]string{"문의", "inquiry", "예매", "티켓", "ticket", "공지"})
	cfg.ExcludedHandleWords = getEnvStringSlice("EXCLUDED_HANDLE_KEYWORDS", nil)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

// getEnvStringSlice 는 쉼표 구분 목록 환경 변수를 읽어 들인다.
func getEnvStringSlice(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
