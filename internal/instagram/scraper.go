package instagram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/litup/gigfeed/internal/model"
)

// maxReloginAttempts 는 세션 만료 시 세션 파일 재로드 후 재시도하는 최대 횟수.
const maxReloginAttempts = 2

// profileFetcher 는 Scraper 가 필요로 하는 Client 의 기능.
type profileFetcher interface {
	FetchUserProfile(ctx context.Context, username string) (*UserProfile, error)
	ReloadSession() error
}

// Scraper 는 채널의 최근 게시물을 가져와 ScrapedPost 로 변환한다.
type Scraper struct {
	client     profileFetcher
	maxPosts   int
	cutoffDays int
	logger     *slog.Logger
	now        func() time.Time
}

// NewScraper 는 Scraper 를 생성한다. maxPosts 는 채널당 가져올 게시물 수 상한.
// cutoffDays 가 양수면 최근 cutoffDays 일 이내의 게시물만 수집한다(0 은 무제한).
func NewScraper(client profileFetcher, maxPosts, cutoffDays int, logger *slog.Logger) *Scraper {
	if maxPosts <= 0 {
		maxPosts = 12
	}
	return &Scraper{
		client:     client,
		maxPosts:   maxPosts,
		cutoffDays: cutoffDays,
		logger:     logger,
		now:        time.Now,
	}
}

// ScrapeChannel 은 채널의 최근 게시물을 최신순으로 반환한다.
// 세션 만료 시 세션 파일을 다시 읽고 재시도한다(최대 maxReloginAttempts 회).
func (s *Scraper) ScrapeChannel(ctx context.Context, username string) ([]model.ScrapedPost, error) {
	var profile *UserProfile
	var err error

	for attempt := 1; attempt <= maxReloginAttempts; attempt++ {
		profile, err = s.client.FetchUserProfile(ctx, username)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrLoginRequired) || attempt == maxReloginAttempts {
			return nil, fmt.Errorf("채널 스크래핑에 실패했습니다: %w", err)
		}

		s.logger.Warn("세션이 만료되어 세션 파일을 다시 읽습니다",
			slog.String("username", username),
			slog.Int("attempt", attempt),
		)
		if reloadErr := s.client.ReloadSession(); reloadErr != nil {
			return nil, fmt.Errorf("세션 재로드에 실패했습니다: %w", reloadErr)
		}
	}

	var cutoff time.Time
	if s.cutoffDays > 0 {
		cutoff = s.now().AddDate(0, 0, -s.cutoffDays)
	}

	posts := make([]model.ScrapedPost, 0, len(profile.Posts))
	for _, node := range profile.Posts {
		if len(posts) >= s.maxPosts {
			break
		}
		post := toScrapedPost(node)
		// 게시물은 최신순이므로 컷오프 이전에 도달하면 이후는 볼 필요가 없다
		if !cutoff.IsZero() && post.TakenAt.Before(cutoff) {
			break
		}
		posts = append(posts, post)
	}

	s.logger.Info("채널 게시물을 가져왔습니다",
		slog.String("username", username),
		slog.Int("post_count", len(posts)),
	)
	return posts, nil
}

// toScrapedPost 는 API 응답 노드를 도메인 모델로 변환한다.
func toScrapedPost(node postNode) model.ScrapedPost {
	post := model.ScrapedPost{
		Code:    node.Shortcode,
		PostURL: fmt.Sprintf("https://www.instagram.com/p/%s/", node.Shortcode),
		TakenAt: time.Unix(node.TakenAt, 0).UTC(),
	}

	if len(node.Caption.Edges) > 0 {
		post.Caption = node.Caption.Edges[0].Node.Text
	}

	// 캐러셀이면 자식 이미지 전체, 아니면 대표 이미지 한 장
	if len(node.Sidecar.Edges) > 0 {
		for _, edge := range node.Sidecar.Edges {
			post.ImageURLs = append(post.ImageURLs, edge.Node.DisplayURL)
		}
	} else if node.DisplayURL != "" {
		post.ImageURLs = []string{node.DisplayURL}
	}

	return post
}
