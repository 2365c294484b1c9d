package instagram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// ProfileResolver 는 채널 계정의 바이오와 외부 링크를 조회한다.
// API 조회가 실패하면 공개 프로필 페이지의 메타 태그에서 바이오를 복원한다.
type ProfileResolver struct {
	client profileFetcher
	page   *resty.Client
	logger *slog.Logger
}

// NewProfileResolver 는 ProfileResolver 를 생성한다.
// pageBaseURL 은 공개 프로필 페이지의 베이스 URL (비어 있으면 기본값).
func NewProfileResolver(client profileFetcher, pageBaseURL string, logger *slog.Logger) *ProfileResolver {
	if pageBaseURL == "" {
		pageBaseURL = defaultBaseURL
	}
	page := resty.New().
		SetBaseURL(pageBaseURL).
		SetHeader("User-Agent", userAgent)
	return &ProfileResolver{client: client, page: page, logger: logger}
}

// Resolve 는 계정의 바이오 텍스트와 프로필 외부 링크를 반환한다.
// 외부 링크가 설정되지 않은 계정은 빈 문자열을 반환한다.
func (r *ProfileResolver) Resolve(ctx context.Context, username string) (bio string, externalURL string, err error) {
	profile, err := r.client.FetchUserProfile(ctx, username)
	if err == nil {
		return profile.Biography, profile.ExternalURL, nil
	}
	if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrLoginRequired) {
		return "", "", err
	}

	r.logger.Warn("프로필 API 조회에 실패하여 공개 페이지 파싱으로 대체합니다",
		slog.String("username", username),
		slog.String("error", err.Error()),
	)
	bio, pageErr := r.resolveFromPage(ctx, username)
	if pageErr != nil {
		return "", "", fmt.Errorf("프로필 조회에 실패했습니다: %w", err)
	}
	return bio, "", nil
}

// resolveFromPage 는 공개 프로필 페이지의 og:description 에서 바이오를 추출한다.
func (r *ProfileResolver) resolveFromPage(ctx context.Context, username string) (string, error) {
	resp, err := r.page.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get("/" + username + "/")
	if err != nil {
		return "", fmt.Errorf("프로필 페이지 요청에 실패했습니다: %w", err)
	}
	defer resp.RawBody().Close()

	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("프로필 페이지가 상태 %d 를 반환했습니다", resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(resp.RawBody())
	if err != nil {
		return "", fmt.Errorf("프로필 페이지 파싱에 실패했습니다: %w", err)
	}

	content, ok := doc.Find(`meta[property="og:description"]`).Attr("content")
	if !ok {
		return "", fmt.Errorf("프로필 페이지에 og:description 이 없습니다")
	}

	// og:description 은 "팔로워 수 - 바이오" 형식이므로 뒷부분만 취한다
	if idx := strings.Index(content, " - "); idx >= 0 {
		content = content[idx+3:]
	}
	return strings.TrimSpace(content), nil
}
