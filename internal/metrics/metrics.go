// Package metrics 는 Prometheus 메트릭 수집과 공개를 제공한다.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector 는 메트릭 수집 인터페이스.
// 워커와 인제스트 서비스 계층에서 사용한다.
type MetricsCollector interface {
	RecordScrapeSuccess(username string)
	RecordScrapeFailure(username string, reason string)
	RecordParseOutcome(outcome string)
	RecordScrapeLatency(duration time.Duration)
	RecordPostsInserted(count int)
	RecordPostsSkipped(count int)
	RecordImagesUploaded(count int)
}

// 파싱 결과 라벨 값.
const (
	ParseOutcomeRecord    = "record"
	ParseOutcomeNoSignal  = "no_signal"
	ParseOutcomeNoCaption = "no_caption"
	ParseOutcomeError     = "error"
)

// Collector 는 Prometheus 메트릭을 수집하는 구현.
type Collector struct {
	scrapeSuccess  *prometheus.CounterVec
	scrapeFail     *prometheus.CounterVec
	parseOutcome   *prometheus.CounterVec
	scrapeLatency  prometheus.Histogram
	postsInserted  prometheus.Counter
	postsSkipped   prometheus.Counter
	imagesUploaded prometheus.Counter
}

// NewCollector 는 새 Collector 를 생성하고 지정된 레지스트리에 메트릭을 등록한다.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		scrapeSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gigfeed_scrape_success_total",
			Help: "채널 스크래핑 성공 합계 (채널별)",
		}, []string{"username"}),
		scrapeFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gigfeed_scrape_fail_total",
			Help: "채널 스크래핑 실패 합계 (채널/원인별)",
		}, []string{"username", "reason"}),
		parseOutcome: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gigfeed_parse_outcome_total",
			Help: "캡션 파싱 결과 합계 (record/no_signal/no_caption/error)",
		}, []string{"outcome"}),
		scrapeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gigfeed_scrape_latency_seconds",
			Help:    "채널 스크래핑 소요 시간 (초)",
			Buckets: prometheus.DefBuckets,
		}),
		postsInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gigfeed_posts_inserted_total",
			Help: "저장된 공연 게시물 합계",
		}),
		postsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gigfeed_posts_skipped_total",
			Help: "중복 등으로 건너뛴 게시물 합계",
		}),
		imagesUploaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gigfeed_images_uploaded_total",
			Help: "스토리지에 업로드된 이미지 합계",
		}),
	}

	reg.MustRegister(
		c.scrapeSuccess,
		c.scrapeFail,
		c.parseOutcome,
		c.scrapeLatency,
		c.postsInserted,
		c.postsSkipped,
		c.imagesUploaded,
	)

	return c
}

// RecordScrapeSuccess 는 채널의 스크래핑 성공을 기록한다.
func (c *Collector) RecordScrapeSuccess(username string) {
	c.scrapeSuccess.WithLabelValues(username).Inc()
}

// RecordScrapeFailure 는 채널의 스크래핑 실패를 원인과 함께 기록한다.
func (c *Collector) RecordScrapeFailure(username string, reason string) {
	c.scrapeFail.WithLabelValues(username, reason).Inc()
}

// RecordParseOutcome 은 캡션 파싱 결과를 기록한다.
func (c *Collector) RecordParseOutcome(outcome string) {
	c.parseOutcome.WithLabelValues(outcome).Inc()
}

// RecordScrapeLatency 는 채널 스크래핑 소요 시간을 기록한다.
func (c *Collector) RecordScrapeLatency(duration time.Duration) {
	c.scrapeLatency.Observe(duration.Seconds())
}

// RecordPostsInserted 는 저장된 게시물 수를 기록한다.
func (c *Collector) RecordPostsInserted(count int) {
	c.postsInserted.Add(float64(count))
}

// RecordPostsSkipped 는 건너뛴 게시물 수를 기록한다.
func (c *Collector) RecordPostsSkipped(count int) {
	c.postsSkipped.Add(float64(count))
}

// RecordImagesUploaded 는 업로드된 이미지 수를 기록한다.
func (c *Collector) RecordImagesUploaded(count int) {
	c.imagesUploaded.Add(float64(count))
}

// Handler 는 Prometheus 스크레이프용 HTTP 핸들러를 반환한다.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute 는 /metrics 엔드포인트를 제공하는 HTTP 핸들러를 반환한다.
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
