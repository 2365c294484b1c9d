package parser

import (
	"errors"
	"testing"
)

// newTestParser 는 기준 시각을 고정한 Parser 를 생성한다.
func newTestParser() *Parser {
	dateCfg := DefaultDateConfig()
	dateCfg.Now = testNow
	return New(
		NewDateExtractor(dateCfg, nil),
		NewPriceExtractor(DefaultPriceConfig()),
		NewTitleExtractor(),
		NewArtistExtractor(DefaultArtistConfig()),
		NewURLExtractor(DefaultURLConfig()),
	)
}

// TestParse_NoCaption 은 빈 캡션이 ErrNoCaption 으로 분류되는 것을 테스트한다.
func TestParse_NoCaption(t *testing.T) {
	p := newTestParser()
	for _, caption := range []string{"", "   ", "\n\n"} {
		if _, err := p.Parse(caption, "https://instagram.com/p/abc", ""); !errors.Is(err, ErrNoCaption) {
			t.Errorf("Parse(%q) err = %v, want ErrNoCaption", caption, err)
		}
	}
}

// TestParse_NoSignal 은 어느 필드도 추출되지 않은 캡션이 ErrNoSignal 로 분류되는 것을 테스트한다.
func TestParse_NoSignal(t *testing.T) {
	p := newTestParser()
	_, err := p.Parse("#일상\n#카페", "https://instagram.com/p/abc", "")
	if !errors.Is(err, ErrNoSignal) {
		t.Errorf("err = %v, want ErrNoSignal", err)
	}
}

// TestParse_DateOnly 는 유효한 날짜만 있는 캡션이 성공하고 나머지 필드는 비는 것을 테스트한다.
func TestParse_DateOnly(t *testing.T) {
	p := newTestParser()
	got, err := p.Parse("2025.11.15", "https://instagram.com/p/abc", "")
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if got.PerformDate != "2025-11-15 19:00" {
		t.Errorf("PerformDate = %q, want %q", got.PerformDate, "2025-11-15 19:00")
	}
	if got.Title != "" || len(got.Artists) != 0 || got.BookingPrice != nil || got.OnsitePrice != nil {
		t.Errorf("날짜 외 필드는 비어 있어야 한다: %+v", got)
	}
}

// TestParse_FullCaption 은 모든 필드가 있는 캡션의 레코드 조립을 테스트한다.
func TestParse_FullCaption(t *testing.T) {
	p := newTestParser()
	caption := "🔥 LIVE CLUB DAY 🔥\n" +
		"2025.11.14 (FRI) 7:30 PM\n" +
		"혁오 @hyukoh_official\n" +
		"잔나비 @thejannabiofficial\n" +
		"ADV 25,000원 / DOOR 30,000원\n" +
		"예매: https://ticket.melon.com/performance/1"
	postURL := "https://instagram.com/p/abc123"

	got, err := p.Parse(caption, postURL, "")
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if got.Title != "LIVE CLUB DAY" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.PerformDate != "2025-11-14 19:30" {
		t.Errorf("PerformDate = %q", got.PerformDate)
	}
	if len(got.Artists) != 2 || got.Artists[0].Handle != "@hyukoh_official" {
		t.Errorf("Artists = %v", got.Artists)
	}
	if got.BookingPrice == nil || *got.BookingPrice != 25000 {
		t.Errorf("BookingPrice = %v", got.BookingPrice)
	}
	if got.OnsitePrice == nil || *got.OnsitePrice != 30000 {
		t.Errorf("OnsitePrice = %v", got.OnsitePrice)
	}
	if got.BookingURL != "https://ticket.melon.com/performance/1" {
		t.Errorf("BookingURL = %q", got.BookingURL)
	}
	if got.Description != caption {
		t.Error("Description 에는 원본 캡션이 들어가야 한다")
	}
	if len(got.SNSLinks) != 1 || got.SNSLinks[0].SNS != "insta" || got.SNSLinks[0].Link != postURL {
		t.Errorf("SNSLinks = %v", got.SNSLinks)
	}
}

// TestParse_RejectionDoesNotAffectNextCaption 은 한 캡션의 거절이 다음 캡션 처리에
// 영향을 주지 않는 것을 테스트한다.
func TestParse_RejectionDoesNotAffectNextCaption(t *testing.T) {
	p := newTestParser()
	if _, err := p.Parse("", "", ""); !errors.Is(err, ErrNoCaption) {
		t.Fatalf("err = %v, want ErrNoCaption", err)
	}
	got, err := p.Parse("2025.11.15", "https://instagram.com/p/abc", "")
	if err != nil || got.PerformDate != "2025-11-15 19:00" {
		t.Errorf("거절 후에도 다음 캡션은 정상 처리되어야 한다: %v, %v", got, err)
	}
}

// TestParse_Deterministic 은 같은 캡션에 대해 항상 같은 결과를 내는 것을 테스트한다.
func TestParse_Deterministic(t *testing.T) {
	p := newTestParser()
	caption := "2025.11.14 (FRI) 7:30 PM\n혁오 @hyukoh_official"
	first, err1 := p.Parse(caption, "https://instagram.com/p/abc", "")
	second, err2 := p.Parse(caption, "https://instagram.com/p/abc", "")
	if err1 != nil || err2 != nil {
		t.Fatalf("err = %v, %v", err1, err2)
	}
	if first.PerformDate != second.PerformDate || first.Title != second.Title ||
		len(first.Artists) != len(second.Artists) {
		t.Error("결과가 결정적이지 않다")
	}
}
