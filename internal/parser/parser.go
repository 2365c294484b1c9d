// Package parser 는 인스타그램 캡션에서 공연 정보를 추출하는 엔진을 제공한다.
//
// 날짜/가격/제목/아티스트/URL 추출기는 서로 독립적인 순수 함수 계층이며,
// Parser 가 이들을 합성해 공연 레코드를 조립하거나 "공연 게시물이 아님"으로
// 분류한다. 모든 추출은 상태 없는 동기 연산으로, 추출기 인스턴스는 읽기 전용
// 설정만 보유하므로 캡션 단위의 무제한 병렬 호출이 안전하다.
package parser

import (
	"errors"
	"strings"

	"github.com/litup/gigfeed/internal/model"
)

// 분류 에러. 호출 측은 errors.Is 로 판별한다.
var (
	// ErrNoCaption 은 캡션이 비어 있는 경우. 재시도 대상이 아니다.
	ErrNoCaption = errors.New("캡션이 비어 있습니다")
	// ErrNoSignal 은 모든 추출기가 빈 결과를 반환한 경우.
	// 공연 게시물이 아니라는 일상적인 분류 결과이며 결함이 아니다.
	ErrNoSignal = errors.New("공연 정보에 해당하는 내용이 없습니다")
)

// Parser 는 필드 추출기를 합성해 캡션 1건을 공연 레코드로 변환한다.
type Parser struct {
	date   *DateExtractor
	price  *PriceExtractor
	title  *TitleExtractor
	artist *ArtistExtractor
	url    *URLExtractor
}

// New 는 주입된 추출기로 Parser 를 생성한다.
func New(date *DateExtractor, price *PriceExtractor, title *TitleExtractor, artist *ArtistExtractor, url *URLExtractor) *Parser {
	return &Parser{date: date, price: price, title: title, artist: artist, url: url}
}

// NewDefault 는 기본 설정의 추출기로 Parser 를 생성한다.
// natural 에는 자연어 날짜 계층을 주입한다(nil 허용).
func NewDefault(natural NaturalDateParser) *Parser {
	return New(
		NewDateExtractor(DefaultDateConfig(), natural),
		NewPriceExtractor(DefaultPriceConfig()),
		NewTitleExtractor(),
		NewArtistExtractor(DefaultArtistConfig()),
		NewURLExtractor(DefaultURLConfig()),
	)
}

// Parse 는 캡션에서 공연 정보를 추출해 ParsedPerformance 를 조립한다.
//
// 제목/아티스트/일시/가격 중 하나도 추출하지 못하면 ErrNoSignal 을 반환한다.
// 개별 필드의 추출 실패는 해당 필드의 부재로만 드러나며 에러가 되지 않는다.
// 한 캡션의 거절이 배치 전체를 중단시키지 않도록, 반환 에러는 분류 결과로만
// 다뤄야 한다.
func (p *Parser) Parse(caption, postURL, profileURL string) (*model.ParsedPerformance, error) {
	if strings.TrimSpace(caption) == "" {
		return nil, ErrNoCaption
	}

	title, _ := p.title.Extract(caption)
	artists := p.artist.Extract(caption)
	performDate, _ := p.date.Extract(caption)
	quote := p.price.Extract(caption)
	bookingURL, _ := p.url.Extract(caption, profileURL)

	if title == "" && len(artists) == 0 && performDate == "" &&
		quote.Booking == nil && quote.Onsite == nil {
		return nil, ErrNoSignal
	}

	perf := &model.ParsedPerformance{
		Title:        title,
		Artists:      artists,
		PerformDate:  performDate,
		BookingPrice: quote.Booking,
		OnsitePrice:  quote.Onsite,
		BookingURL:   bookingURL,
		Description:  caption,
	}
	if postURL != "" {
		perf.SNSLinks = []model.SNSLink{{SNS: "insta", Link: postURL}}
	}
	return perf, nil
}
