// Package ingest 는 스크래핑한 게시물을 공연 레코드로 저장하는 파이프라인을 제공한다.
// 중복 검사 → 캡션 정화 → 파싱 → 저장 → 이미지 처리 순으로 진행하며,
// 개별 게시물의 거부/실패가 배치 전체를 중단시키지 않는다.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/litup/gigfeed/internal/metrics"
	"github.com/litup/gigfeed/internal/model"
	"github.com/litup/gigfeed/internal/parser"
	"github.com/litup/gigfeed/internal/repository"
	"github.com/litup/gigfeed/internal/security"
)

// performDateLayout 은 파서가 반환하는 일시 문자열 형식.
const performDateLayout = "2006-01-02 15:04"

// captionParser 는 Service 가 필요로 하는 파서의 기능.
type captionParser interface {
	Parse(caption, postURL, profileURL string) (*model.ParsedPerformance, error)
}

// imageUploader 는 Service 가 필요로 하는 이미지 파이프라인의 기능.
type imageUploader interface {
	UploadFromURLs(ctx context.Context, performID int64, urls []string) []*model.PerformanceImage
}

// Result 는 채널 한 건의 인제스트 집계.
type Result struct {
	Inserted int // 저장된 게시물
	Skipped  int // 중복으로 건너뛴 게시물
	Rejected int // 공연 게시물이 아니라고 판정된 게시물
	Failed   int // 처리 중 오류가 발생한 게시물
}

// Service 는 게시물 인제스트 파이프라인.
type Service struct {
	perfRepo  repository.PerformanceRepository
	imgRepo   repository.ImageRepository
	parser    captionParser
	sanitizer security.CaptionSanitizerService
	images    imageUploader
	metrics   metrics.MetricsCollector
	logger    *slog.Logger
	location  *time.Location
}

// NewService 는 Service 를 생성한다. 공연 일시는 location 기준으로 저장된다.
func NewService(
	perfRepo repository.PerformanceRepository,
	imgRepo repository.ImageRepository,
	captionParser captionParser,
	sanitizer security.CaptionSanitizerService,
	images imageUploader,
	collector metrics.MetricsCollector,
	location *time.Location,
	logger *slog.Logger,
) *Service {
	if location == nil {
		location = time.Local
	}
	return &Service{
		perfRepo:  perfRepo,
		imgRepo:   imgRepo,
		parser:    captionParser,
		sanitizer: sanitizer,
		images:    images,
		metrics:   collector,
		logger:    logger,
		location:  location,
	}
}

// outcome 은 게시물 한 건의 처리 결과.
type outcome int

const (
	outcomeInserted outcome = iota
	outcomeSkipped
	outcomeRejected
	outcomeFailed
)

// IngestChannel 은 채널의 게시물 목록을 순서대로 처리하고 집계를 반환한다.
// 게시물 한 건의 거부/실패는 기록만 하고 다음 게시물로 진행한다.
func (s *Service) IngestChannel(ctx context.Context, channel *model.Channel, posts []model.ScrapedPost) Result {
	var result Result
	for _, post := range posts {
		switch s.ingestPost(ctx, channel, post) {
		case outcomeInserted:
			result.Inserted++
		case outcomeSkipped:
			result.Skipped++
		case outcomeRejected:
			result.Rejected++
		case outcomeFailed:
			result.Failed++
		}
	}

	s.logger.Info("채널 인제스트를 완료했습니다",
		slog.String("username", channel.Username),
		slog.Int("inserted", result.Inserted),
		slog.Int("skipped", result.Skipped),
		slog.Int("rejected", result.Rejected),
		slog.Int("failed", result.Failed),
	)
	return result
}

// ingestPost 는 게시물 한 건을 처리한다.
func (s *Service) ingestPost(ctx context.Context, channel *model.Channel, post model.ScrapedPost) outcome {
	// 중복 검사는 게시물 URL 기준. 캡션이 수정된 게시물도 같은 URL 이면 재수집으로 본다.
	exists, err := s.perfRepo.ExistsBySNSLink(ctx, channel.ClubID, post.PostURL)
	if err != nil {
		s.logger.Error("게시물 중복 검사에 실패했습니다",
			slog.String("post_url", post.PostURL),
			slog.String("error", err.Error()),
		)
		return outcomeFailed
	}
	if exists {
		s.metrics.RecordPostsSkipped(1)
		return outcomeSkipped
	}

	caption := s.sanitizer.Sanitize(post.Caption)
	parsed, err := s.parser.Parse(caption, post.PostURL, channel.ProfileURL)
	if err != nil {
		switch {
		case errors.Is(err, parser.ErrNoCaption):
			s.metrics.RecordParseOutcome(metrics.ParseOutcomeNoCaption)
			return outcomeRejected
		case errors.Is(err, parser.ErrNoSignal):
			s.metrics.RecordParseOutcome(metrics.ParseOutcomeNoSignal)
			return outcomeRejected
		default:
			s.metrics.RecordParseOutcome(metrics.ParseOutcomeError)
			s.logger.Error("캡션 파싱에 실패했습니다",
				slog.String("post_url", post.PostURL),
				slog.String("error", err.Error()),
			)
			return outcomeFailed
		}
	}

	perf, err := s.buildPerformance(channel, parsed)
	if err != nil {
		s.logger.Error("공연 레코드 구성에 실패했습니다",
			slog.String("post_url", post.PostURL),
			slog.String("error", err.Error()),
		)
		return outcomeFailed
	}

	if err := s.perfRepo.Create(ctx, perf); err != nil {
		s.logger.Error("공연 레코드 저장에 실패했습니다",
			slog.String("post_url", post.PostURL),
			slog.String("error", err.Error()),
		)
		return outcomeFailed
	}
	s.metrics.RecordParseOutcome(metrics.ParseOutcomeRecord)
	s.metrics.RecordPostsInserted(1)

	s.storeImages(ctx, perf.ID, post.ImageURLs)
	return outcomeInserted
}

// buildPerformance 는 파싱 결과를 저장용 모델로 변환한다.
func (s *Service) buildPerformance(channel *model.Channel, parsed *model.ParsedPerformance) (*model.Performance, error) {
	perf := &model.Performance{
		ClubID:       channel.ClubID,
		Title:        parsed.Title,
		Description:  parsed.Description,
		BookingPrice: parsed.BookingPrice,
		OnsitePrice:  parsed.OnsitePrice,
		BookingURL:   parsed.BookingURL,
		Artists:      parsed.Artists,
		SNSLinks:     parsed.SNSLinks,
	}

	if parsed.PerformDate != "" {
		t, err := time.ParseInLocation(performDateLayout, parsed.PerformDate, s.location)
		if err != nil {
			return nil, fmt.Errorf("공연 일시 형식이 올바르지 않습니다: %w", err)
		}
		perf.PerformDate = &t
	}
	return perf, nil
}

// storeImages 는 게시물 이미지를 업로드하고 메타데이터를 저장한다.
// 이미지 실패는 게시물 저장 결과에 영향을 주지 않는다.
func (s *Service) storeImages(ctx context.Context, performID int64, urls []string) {
	if len(urls) == 0 {
		return
	}

	images := s.images.UploadFromURLs(ctx, performID, urls)
	stored := 0
	for _, img := range images {
		if err := s.imgRepo.Create(ctx, img); err != nil {
			s.logger.Error("이미지 메타데이터 저장에 실패했습니다",
				slog.Int64("perform_id", performID),
				slog.String("file_path", img.FilePath),
				slog.String("error", err.Error()),
			)
			continue
		}
		stored++
	}
	if stored > 0 {
		s.metrics.RecordImagesUploaded(stored)
	}
}
