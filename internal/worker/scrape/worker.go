package scrape

import (
	"context"
	"log/slog"
	"time"

	"github.com/litup/gigfeed/internal/ingest"
	"github.com/litup/gigfeed/internal/metrics"
	"github.com/litup/gigfeed/internal/model"
	"github.com/litup/gigfeed/internal/parser"
	"github.com/litup/gigfeed/internal/repository"
)

// PostScraperService 는 채널 게시물 수집의 실행 인터페이스.
type PostScraperService interface {
	ScrapeChannel(ctx context.Context, username string) ([]model.ScrapedPost, error)
}

// ProfileResolverService 는 채널 프로필 조회의 실행 인터페이스.
type ProfileResolverService interface {
	Resolve(ctx context.Context, username string) (bio string, externalURL string, err error)
}

// IngestService 는 게시물 인제스트의 실행 인터페이스.
type IngestService interface {
	IngestChannel(ctx context.Context, channel *model.Channel, posts []model.ScrapedPost) ingest.Result
}

// ChannelScraper 는 채널 한 건의 스크래핑 사이클을 수행한다.
// 프로필 링크 갱신 → 게시물 수집 → 인제스트 → 채널 상태 갱신.
type ChannelScraper struct {
	channelRepo repository.ChannelRepository
	posts       PostScraperService
	profile     ProfileResolverService
	ingest      IngestService
	urls        *parser.URLExtractor
	metrics     metrics.MetricsCollector
	backoff     BackoffPolicy
	interval    time.Duration
	logger      *slog.Logger
}

// NewChannelScraper 는 ChannelScraper 를 생성한다.
// interval 은 성공 시 다음 스크래핑까지의 간격.
func NewChannelScraper(
	channelRepo repository.ChannelRepository,
	posts PostScraperService,
	profile ProfileResolverService,
	ingestService IngestService,
	urls *parser.URLExtractor,
	collector metrics.MetricsCollector,
	backoff BackoffPolicy,
	interval time.Duration,
	logger *slog.Logger,
) *ChannelScraper {
	return &ChannelScraper{
		channelRepo: channelRepo,
		posts:       posts,
		profile:     profile,
		ingest:      ingestService,
		urls:        urls,
		metrics:     collector,
		backoff:     backoff,
		interval:    interval,
		logger:      logger,
	}
}

// Scrape 는 채널 한 건을 스크래핑하고 결과에 따라 채널 상태를 갱신한다.
func (w *ChannelScraper) Scrape(ctx context.Context, ch *model.Channel) error {
	start := time.Now()

	// 프로필 링크는 실패해도 사이클을 막지 않는다
	w.refreshProfileURL(ctx, ch)

	posts, err := w.posts.ScrapeChannel(ctx, ch.Username)
	if err != nil {
		w.metrics.RecordScrapeFailure(ch.Username, FailureReason(err))

		if ClassifyScrapeError(err) == ResultStop {
			ApplyStop(ch, err.Error())
			w.logger.Warn("채널 스크래핑을 중단합니다",
				slog.String("username", ch.Username),
				slog.String("error", err.Error()),
			)
		} else {
			ApplyBackoff(ch, w.backoff, err.Error())
			w.logger.Warn("채널 스크래핑을 백오프합니다",
				slog.String("username", ch.Username),
				slog.Int("consecutive_errors", ch.ConsecutiveErrors),
				slog.Time("next_scrape_at", ch.NextScrapeAt),
			)
		}

		if updErr := w.channelRepo.UpdateScrapeState(ctx, ch); updErr != nil {
			w.logger.Error("채널 상태 갱신에 실패했습니다",
				slog.String("username", ch.Username),
				slog.String("error", updErr.Error()),
			)
		}
		return err
	}

	result := w.ingest.IngestChannel(ctx, ch, posts)

	ApplySuccess(ch, w.interval)
	if err := w.channelRepo.UpdateScrapeState(ctx, ch); err != nil {
		w.logger.Error("채널 상태 갱신에 실패했습니다",
			slog.String("username", ch.Username),
			slog.String("error", err.Error()),
		)
	}

	w.metrics.RecordScrapeSuccess(ch.Username)
	w.metrics.RecordScrapeLatency(time.Since(start))

	w.logger.Info("채널 스크래핑 사이클을 완료했습니다",
		slog.String("username", ch.Username),
		slog.Int("post_count", len(posts)),
		slog.Int("inserted", result.Inserted),
		slog.Int("skipped", result.Skipped),
	)
	return nil
}

// refreshProfileURL 은 계정 바이오의 외부 링크를 조회해 변경 시 DB 에 반영한다.
func (w *ChannelScraper) refreshProfileURL(ctx context.Context, ch *model.Channel) {
	bio, externalURL, err := w.profile.Resolve(ctx, ch.Username)
	if err != nil {
		w.logger.Warn("프로필 조회에 실패했습니다",
			slog.String("username", ch.Username),
			slog.String("error", err.Error()),
		)
		return
	}

	profileURL := externalURL
	if profileURL == "" {
		if u, ok := w.urls.ExtractProfileURLFromBio(bio); ok {
			profileURL = u
		}
	}

	if profileURL == "" || profileURL == ch.ProfileURL {
		return
	}

	if err := w.channelRepo.UpdateProfileURL(ctx, ch.ID, profileURL); err != nil {
		w.logger.Error("프로필 링크 갱신에 실패했습니다",
			slog.String("username", ch.Username),
			slog.String("error", err.Error()),
		)
		return
	}
	ch.ProfileURL = profileURL
}
