// Package scrape 는 채널의 백그라운드 스크래핑 처리를 제공한다.
// 스케줄러, 채널 스크래퍼, 백오프 전략을 포함한다.
package scrape

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/litup/gigfeed/internal/model"
	"github.com/litup/gigfeed/internal/repository"
)

// ChannelScrapeService 는 채널 스크래핑의 실행 인터페이스.
type ChannelScrapeService interface {
	// Scrape 는 지정 채널을 스크래핑하고 결과에 따라 채널 상태를 갱신한다.
	Scrape(ctx context.Context, channel *model.Channel) error
}

// Scheduler 는 채널 스크래핑의 스케줄링과 병렬 제어를 담당한다.
// 티커 간격으로 스크래핑 대상 채널을 조회하고,
// 세마포어 패턴으로 최대 병렬 수를 제한하며 실행한다.
type Scheduler struct {
	channelRepo    repository.ChannelRepository
	scraper        ChannelScrapeService
	logger         *slog.Logger
	maxConcurrency int
}

// NewScheduler 는 Scheduler 의 새 인스턴스를 생성한다.
// maxConcurrency 가 0 이하면 기본값 2 를 사용한다.
func NewScheduler(
	channelRepo repository.ChannelRepository,
	scraper ChannelScrapeService,
	logger *slog.Logger,
	maxConcurrency int,
) *Scheduler {
	if maxConcurrency <= 0 {
		maxConcurrency = 2
	}
	return &Scheduler{
		channelRepo:    channelRepo,
		scraper:        scraper,
		logger:         logger,
		maxConcurrency: maxConcurrency,
	}
}

// Start 는 지정 간격의 티커로 스케줄러를 기동한다.
// 컨텍스트가 취소될 때까지 실행을 계속한다.
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("스크래핑 스케줄러를 시작했습니다",
		slog.Duration("interval", interval),
		slog.Int("max_concurrency", s.maxConcurrency),
	)

	// 기동 직후 1회 실행
	if err := s.RunOnce(ctx); err != nil {
		s.logger.Error("스크래핑 사이클 실행에 실패했습니다",
			slog.String("error", err.Error()),
		)
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("스크래핑 스케줄러를 정지했습니다")
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.logger.Error("스크래핑 사이클 실행에 실패했습니다",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// RunOnce 는 스크래핑 대상 채널을 1회 조회해 병렬로 실행한다.
// 세마포어 패턴으로 최대 병렬 수를 제한한다.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	start := time.Now()

	// 스크래핑 대상 채널 조회 (FOR UPDATE SKIP LOCKED)
	channels, err := s.channelRepo.ListDueForScrape(ctx)
	if err != nil {
		return err
	}

	if len(channels) == 0 {
		s.logger.Info("스크래핑 대상 채널이 없습니다")
		return nil
	}

	s.logger.Info("스크래핑 사이클을 시작합니다",
		slog.Int("channel_count", len(channels)),
	)

	// 세마포어 패턴으로 병렬 수 제한
	sem := make(chan struct{}, s.maxConcurrency)
	var wg sync.WaitGroup

	for _, channel := range channels {
		wg.Add(1)
		sem <- struct{}{} // 세마포어 획득 (블록)

		go func(ch *model.Channel) {
			defer wg.Done()
			defer func() { <-sem }() // 세마포어 해제

			if err := s.scraper.Scrape(ctx, ch); err != nil {
				s.logger.Error("채널 스크래핑에 실패했습니다",
					slog.String("username", ch.Username),
					slog.String("error", err.Error()),
				)
			}
		}(channel)
	}

	wg.Wait()

	duration := time.Since(start)
	s.logger.Info("스크래핑 사이클이 완료되었습니다",
		slog.Int("channel_count", len(channels)),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}
