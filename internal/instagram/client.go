// Package instagram 은 인스타그램 비공개 웹 API 연동 기능을 제공한다.
// 세션 쿠키 기반의 클라이언트, 채널 게시물 스크래퍼, 프로필 링크 리졸버를 포함한다.
package instagram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	// defaultBaseURL 은 인스타그램 웹 API 의 기본 엔드포인트.
	defaultBaseURL = "https://www.instagram.com"
	// webAppID 는 웹 클라이언트가 보내는 x-ig-app-id 값.
	webAppID = "936619743392459"
	// userAgent 는 차단을 피하기 위한 일반 브라우저 UA.
	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

var (
	// ErrLoginRequired 는 세션이 만료되어 재로그인이 필요한 상태.
	ErrLoginRequired = errors.New("인스타그램 세션이 만료되었습니다")
	// ErrRateLimited 는 요청이 일시적으로 차단된 상태.
	ErrRateLimited = errors.New("인스타그램 요청이 제한되었습니다")
	// ErrUserNotFound 는 존재하지 않는 계정을 조회한 경우.
	ErrUserNotFound = errors.New("인스타그램 계정을 찾을 수 없습니다")
)

// Session 은 세션 파일에 보관되는 인증 쿠키 값.
type Session struct {
	SessionID string `json:"sessionid"`
	CSRFToken string `json:"csrftoken"`
	UserID    string `json:"ds_user_id"`
}

// ClientConfig 는 Client 의 생성 설정.
type ClientConfig struct {
	BaseURL      string        // 비어 있으면 defaultBaseURL
	SessionFile  string        // 세션 쿠키 JSON 파일 경로
	RequestDelay time.Duration // 요청 간 최소 간격
	Timeout      time.Duration // HTTP 타임아웃 (0 이면 30초)
}

// Client 는 인스타그램 웹 API 클라이언트.
// 세션 파일의 쿠키를 재사용하며, 요청 간격을 rate.Limiter 로 제한한다.
type Client struct {
	http        *resty.Client
	limiter     *rate.Limiter
	logger      *slog.Logger
	sessionFile string
	session     *Session
}

// NewClient 는 Client 를 생성한다. 세션 파일은 첫 요청 전에 로드된다.
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	delay := cfg.RequestDelay
	if delay <= 0 {
		delay = time.Second
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("X-IG-App-ID", webAppID)

	return &Client{
		http:        httpClient,
		limiter:     rate.NewLimiter(rate.Every(delay), 1),
		logger:      logger,
		sessionFile: cfg.SessionFile,
	}
}

// LoadSession 은 세션 파일을 읽어 인증 쿠키를 설정한다.
func (c *Client) LoadSession() error {
	data, err := os.ReadFile(c.sessionFile)
	if err != nil {
		return fmt.Errorf("세션 파일 읽기에 실패했습니다: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return fmt.Errorf("세션 파일 파싱에 실패했습니다: %w", err)
	}
	if session.SessionID == "" {
		return fmt.Errorf("세션 파일에 sessionid 가 없습니다: %s", c.sessionFile)
	}

	c.session = &session
	return nil
}

// ReloadSession 은 세션 파일을 다시 읽는다. 운영자가 파일을 교체한 경우를 위한 것.
func (c *Client) ReloadSession() error {
	return c.LoadSession()
}

// userProfileResponse 는 web_profile_info API 응답의 필요한 부분.
type userProfileResponse struct {
	Data struct {
		User *userNode `json:"user"`
	} `json:"data"`
}

type userNode struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Biography   string `json:"biography"`
	ExternalURL string `json:"external_url"`
	Timeline    struct {
		Edges []struct {
			Node postNode `json:"node"`
		} `json:"edges"`
	} `json:"edge_owner_to_timeline_media"`
}

// postNode 는 타임라인 게시물 한 건의 응답 구조.
type postNode struct {
	Shortcode  string `json:"shortcode"`
	DisplayURL string `json:"display_url"`
	TakenAt    int64  `json:"taken_at_timestamp"`
	Caption    struct {
		Edges []captionEdge `json:"edges"`
	} `json:"edge_media_to_caption"`
	Sidecar struct {
		Edges []sidecarEdge `json:"edges"`
	} `json:"edge_sidecar_to_children"`
}

type captionEdge struct {
	Node struct {
		Text string `json:"text"`
	} `json:"node"`
}

type sidecarEdge struct {
	Node struct {
		DisplayURL string `json:"display_url"`
	} `json:"node"`
}

// UserProfile 은 계정 프로필과 최근 게시물을 담은 조회 결과.
type UserProfile struct {
	UserID      string
	Username    string
	Biography   string
	ExternalURL string
	Posts       []postNode
}

// FetchUserProfile 은 계정의 프로필 정보와 최근 게시물을 가져온다.
// 세션 만료는 ErrLoginRequired, 요청 제한은 ErrRateLimited 로 구분해 반환한다.
func (c *Client) FetchUserProfile(ctx context.Context, username string) (*UserProfile, error) {
	if c.session == nil {
		if err := c.LoadSession(); err != nil {
			return nil, err
		}
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var result userProfileResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetCookie(&http.Cookie{Name: "sessionid", Value: c.session.SessionID}).
		SetCookie(&http.Cookie{Name: "csrftoken", Value: c.session.CSRFToken}).
		SetQueryParam("username", username).
		SetResult(&result).
		Get("/api/v1/users/web_profile_info/")
	if err != nil {
		c.logger.Error("인스타그램 API 호출에 실패했습니다",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("인스타그램 API 호출에 실패했습니다: %w", err)
	}

	if err := classifyStatus(resp.StatusCode()); err != nil {
		c.logger.Warn("인스타그램 API 가 오류 상태를 반환했습니다",
			slog.String("username", username),
			slog.Int("http_status", resp.StatusCode()),
		)
		return nil, err
	}

	user := result.Data.User
	if user == nil {
		return nil, ErrUserNotFound
	}

	posts := make([]postNode, 0, len(user.Timeline.Edges))
	for _, edge := range user.Timeline.Edges {
		posts = append(posts, edge.Node)
	}

	return &UserProfile{
		UserID:      user.ID,
		Username:    user.Username,
		Biography:   user.Biography,
		ExternalURL: user.ExternalURL,
		Posts:       posts,
	}, nil
}

// classifyStatus 는 HTTP 상태 코드를 도메인 에러로 변환한다.
func classifyStatus(status int) error {
	switch {
	case status == 200:
		return nil
	case status == 401 || status == 403:
		return ErrLoginRequired
	case status == 404:
		return ErrUserNotFound
	case status == 429:
		return ErrRateLimited
	default:
		return fmt.Errorf("인스타그램 API 가 상태 %d 를 반환했습니다", status)
	}
}
