package parser

import "testing"

// priceOf 는 후보 포인터의 값을 비교용으로 꺼낸다(-1 은 nil).
func priceOf(p *int) int {
	if p == nil {
		return -1
	}
	return *p
}

// assertQuote 는 추출 결과가 기대하는 예매가/현매가인지 검사한다.
func assertQuote(t *testing.T, got PriceQuote, booking, onsite int) {
	t.Helper()
	if priceOf(got.Booking) != booking || priceOf(got.Onsite) != onsite {
		t.Errorf("got (booking=%d, onsite=%d), want (booking=%d, onsite=%d)",
			priceOf(got.Booking), priceOf(got.Onsite), booking, onsite)
	}
}

// TestPriceExtract_Free 는 무료 표기가 숫자 추출을 무시하고 0/0 이 되는 것을 테스트한다.
func TestPriceExtract_Free(t *testing.T) {
	e := NewPriceExtractor(DefaultPriceConfig())
	assertQuote(t, e.Extract("입장료: 무료"), 0, 0)
	assertQuote(t, e.Extract("FREE ENTRANCE / 11월 14일"), 0, 0)
}

// TestPriceExtract_KeywordAdjacent 는 키워드 인접 숫자의 분류를 테스트한다.
func TestPriceExtract_KeywordAdjacent(t *testing.T) {
	e := NewPriceExtractor(DefaultPriceConfig())
	assertQuote(t, e.Extract("ADV 25,000원 / DOOR 30,000원"), 25000, 30000)
	assertQuote(t, e.Extract("예매 18,000원\n현장 22,000원"), 18000, 22000)
	assertQuote(t, e.Extract("Ticket: 20,000₩"), 20000, -1)
	assertQuote(t, e.Extract("입장료：15,000원"), 15000, -1)
	assertQuote(t, e.Extract("ADV 10000"), 10000, -1)
}

// TestPriceExtract_ManWon 은 만원 표기의 환산과 분류를 테스트한다.
func TestPriceExtract_ManWon(t *testing.T) {
	e := NewPriceExtractor(DefaultPriceConfig())
	assertQuote(t, e.Extract("5만원"), 50000, -1)
	assertQuote(t, e.Extract("예매 3만원 / 현장 4만원"), 30000, 40000)
	assertQuote(t, e.Extract("3.5만원"), 35000, -1)
}

// TestPriceExtract_SlashPair 는 슬래시 쌍의 분류를 테스트한다.
// 키워드가 없으면 작은 쪽이 예매가가 된다.
func TestPriceExtract_SlashPair(t *testing.T) {
	e := NewPriceExtractor(DefaultPriceConfig())
	assertQuote(t, e.Extract("25,000/30,000"), 25000, 30000)
	assertQuote(t, e.Extract("30,000/25,000"), 25000, 30000)
}

// TestPriceExtract_EmojiAdjacent 는 금액 이모지 인접 숫자의 추출을 테스트한다.
func TestPriceExtract_EmojiAdjacent(t *testing.T) {
	e := NewPriceExtractor(DefaultPriceConfig())
	assertQuote(t, e.Extract("🎫 25,000 KRW"), 25000, -1)
}

// TestPriceExtract_DateDigitsIgnored 는 날짜 숫자가 가격으로 오인되지 않는 것을 테스트한다.
func TestPriceExtract_DateDigitsIgnored(t *testing.T) {
	e := NewPriceExtractor(DefaultPriceConfig())
	assertQuote(t, e.Extract("2025.11.15 공연"), -1, -1)
	assertQuote(t, e.Extract("2025년 11월 15일 예매 20,000원"), 20000, -1)
}

// TestPriceExtract_PhoneNumberIgnored 는 전화번호가 가격 쌍으로 오인되지 않는 것을 테스트한다.
func TestPriceExtract_PhoneNumberIgnored(t *testing.T) {
	e := NewPriceExtractor(DefaultPriceConfig())
	assertQuote(t, e.Extract("티켓 12,000원 문의 010-1234-5678"), 12000, -1)
}

// TestPriceExtract_OutOfRange 는 허용 구간 밖의 금액이 버려지는 것을 테스트한다.
func TestPriceExtract_OutOfRange(t *testing.T) {
	e := NewPriceExtractor(DefaultPriceConfig())
	assertQuote(t, e.Extract("예매 500원"), -1, -1)
	assertQuote(t, e.Extract("예매 900,000원"), -1, -1)
}

// TestPriceExtract_MinimumPerField 는 필드별로 후보의 최솟값이 선택되는 것을 테스트한다.
func TestPriceExtract_MinimumPerField(t *testing.T) {
	e := NewPriceExtractor(DefaultPriceConfig())
	assertQuote(t, e.Extract("예매 20,000원 / 예매 15,000원"), 15000, -1)
}

// TestPriceExtract_Empty 는 빈 캡션과 무신호 캡션에서 둘 다 nil 인 것을 테스트한다.
func TestPriceExtract_Empty(t *testing.T) {
	e := NewPriceExtractor(DefaultPriceConfig())
	assertQuote(t, e.Extract(""), -1, -1)
	assertQuote(t, e.Extract("오늘도 좋은 공연"), -1, -1)
}

// TestPriceExtract_CustomBounds 는 허용 구간이 설정으로 바뀌는 것을 테스트한다.
func TestPriceExtract_CustomBounds(t *testing.T) {
	cfg := DefaultPriceConfig()
	cfg.MinPrice = 30000
	e := NewPriceExtractor(cfg)
	assertQuote(t, e.Extract("예매 25,000원"), -1, -1)
}
