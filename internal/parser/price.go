package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// PriceQuote 는 예매가/현매가 추출 결과를 표현한다.
// 추출하지 못한 필드는 nil, 무료 공연이면 둘 다 0 이다.
type PriceQuote struct {
	Booking *int
	Onsite  *int
}

// PriceConfig 는 PriceExtractor 의 불변 설정.
type PriceConfig struct {
	// MinPrice/MaxPrice 는 노이즈(연도, 전화번호 등)를 걸러내는 허용 구간.
	MinPrice int
	MaxPrice int
	// BookingKeywords/OnsiteKeywords 는 금액 후보를 예매/현매로 분류하는 키워드.
	BookingKeywords []string
	OnsiteKeywords  []string
}

// DefaultPriceConfig 는 기본 설정(허용 구간 1,000~300,000원)을 반환한다.
func DefaultPriceConfig() PriceConfig {
	return PriceConfig{
		MinPrice:        1000,
		MaxPrice:        300000,
		BookingKeywords: []string{"예매", "예약", "adv", "advance", "티켓", "ticket", "입장료", "cover", "사전"},
		OnsiteKeywords:  []string{"현장", "현매", "도어", "door", "당일"},
	}
}

// PriceExtractor 는 캡션에서 예매가와 현매가를 추출한다.
//
// 후보 수집은 만원 표기 → 키워드 인접 숫자 → 슬래시 쌍 → 이모지 인접 숫자 순으로
// 진행하고, 필드별로 수집된 후보의 최솟값을 최종값으로 선택한다(전화번호 등
// 무관한 큰 숫자를 잘못 포착하는 경우에 대한 방어).
type PriceExtractor struct {
	cfg         PriceConfig
	reBookingNum *regexp.Regexp
	reOnsiteNum  *regexp.Regexp
}

var (
	reFree = regexp.MustCompile(`(?i)\bfree\b|무료`)

	// 날짜 형태의 숫자가 가격으로 오인되지 않도록 선제 제거하는 패턴
	reStripDates = []*regexp.Regexp{
		reDateNumericYMD,
		reDateShortYMD,
		reDateMonthName,
		regexp.MustCompile(`\d{4}\s*년(?:\s*\d{1,2}\s*월)?(?:\s*\d{1,2}\s*일)?`),
		regexp.MustCompile(`\d{1,2}\s*월\s*\d{1,2}\s*일`),
	}

	// 3만원 / 3.5만원
	reManWon = regexp.MustCompile(`(\d{1,2}(?:\.\d)?)\s*만\s*원`)
	// 25,000 / 10000 형태의 금액 토큰
	priceToken = `(\d{1,3}(?:,\d{3})+|\d{4,6})`
	reNumber   = regexp.MustCompile(priceToken)
	// 25,000/30,000 또는 25,000-30,000 쌍
	rePair = regexp.MustCompile(priceToken + `\s*(?:원|₩|won|KRW)?\s*[/\-]\s*` + priceToken)
	// 🎫 25,000 처럼 금액 이모지에 인접한 숫자
	reEmojiNum = regexp.MustCompile(`[🎫💳💰][^\d\n]{0,12}` + priceToken)
)

// NewPriceExtractor 는 PriceExtractor 를 생성한다.
// 키워드 인접 패턴은 설정된 키워드 목록으로 생성 시 1회 컴파일된다.
func NewPriceExtractor(cfg PriceConfig) *PriceExtractor {
	return &PriceExtractor{
		cfg:          cfg,
		reBookingNum: keywordNumberPattern(cfg.BookingKeywords),
		reOnsiteNum:  keywordNumberPattern(cfg.OnsiteKeywords),
	}
}

// keywordNumberPattern 은 "키워드 [:] 금액" 형태의 패턴을 컴파일한다.
func keywordNumberPattern(keywords []string) *regexp.Regexp {
	quoted := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		quoted = append(quoted, regexp.QuoteMeta(kw))
	}
	return regexp.MustCompile(`(?i)(?:` + strings.Join(quoted, "|") + `)\s*[:：]?\s*` + priceToken)
}

// Extract 는 캡션에서 예매가/현매가를 추출한다.
func (e *PriceExtractor) Extract(text string) PriceQuote {
	if text == "" {
		return PriceQuote{}
	}

	// 0단계: 무료 공연은 숫자 추출을 무시하고 0/0 으로 확정한다.
	if reFree.MatchString(text) {
		zero := 0
		zero2 := 0
		return PriceQuote{Booking: &zero, Onsite: &zero2}
	}

	// 1단계: 날짜 형태의 숫자를 제거한다.
	cleaned := stripDateShapes(text)

	var bookingC, onsiteC []int

	// 2단계: 만원 표기
	for _, loc := range reManWon.FindAllStringSubmatchIndex(cleaned, -1) {
		val, err := strconv.ParseFloat(cleaned[loc[2]:loc[3]], 64)
		if err != nil {
			continue
		}
		price := int(val * 10000)
		if !e.inRange(price) {
			continue
		}
		if e.classifyAt(cleaned, loc[0], loc[1]) == classOnsite {
			onsiteC = append(onsiteC, price)
		} else {
			bookingC = append(bookingC, price)
		}
	}

	// 3단계: 키워드 인접 숫자
	for _, m := range e.reBookingNum.FindAllStringSubmatch(cleaned, -1) {
		if price, ok := e.parsePrice(m[1]); ok {
			bookingC = append(bookingC, price)
		}
	}
	for _, m := range e.reOnsiteNum.FindAllStringSubmatch(cleaned, -1) {
		if price, ok := e.parsePrice(m[1]); ok {
			onsiteC = append(onsiteC, price)
		}
	}

	// 4단계: 슬래시/대시 쌍
	for _, loc := range rePair.FindAllStringSubmatchIndex(cleaned, -1) {
		// 전화번호처럼 대시가 이어지는 숫자열의 일부는 제외한다
		if loc[0] > 0 && cleaned[loc[0]-1] == '-' {
			continue
		}
		left, okL := e.parsePrice(cleaned[loc[2]:loc[3]])
		right, okR := e.parsePrice(cleaned[loc[4]:loc[5]])
		if !okL || !okR {
			continue
		}
		booking, onsite := left, right
		switch e.classifyAt(cleaned, loc[0], loc[1]) {
		case classOnsite:
			booking, onsite = right, left
		case classNone:
			// 키워드가 없으면 관례상 작은 쪽이 예매가
			if left > right {
				booking, onsite = right, left
			}
		}
		bookingC = append(bookingC, booking)
		onsiteC = append(onsiteC, onsite)
	}

	// 5단계: 금액 이모지 인접 숫자
	for _, loc := range reEmojiNum.FindAllStringSubmatchIndex(cleaned, -1) {
		price, ok := e.parsePrice(cleaned[loc[2]:loc[3]])
		if !ok {
			continue
		}
		if e.classifyAt(cleaned, loc[0], loc[1]) == classOnsite {
			onsiteC = append(onsiteC, price)
		} else {
			bookingC = append(bookingC, price)
		}
	}

	// 6단계: 분류된 후보가 전혀 없으면 전체 텍스트의 최소 금액을 예매가로 본다.
	if len(bookingC) == 0 && len(onsiteC) == 0 {
		for _, m := range reNumber.FindAllStringSubmatch(cleaned, -1) {
			if price, ok := e.parsePrice(m[1]); ok {
				bookingC = append(bookingC, price)
			}
		}
	}

	// 최종 선택: 필드별 최솟값
	var quote PriceQuote
	if len(bookingC) > 0 {
		v := minOf(bookingC)
		quote.Booking = &v
	}
	if len(onsiteC) > 0 {
		v := minOf(onsiteC)
		quote.Onsite = &v
	}
	return quote
}

// priceClass 는 금액 후보의 분류 결과.
type priceClass int

const (
	classNone priceClass = iota
	classBooking
	classOnsite
)

// classifyAt 은 매칭 주변의 좁은 창에서 예매/현매 키워드를 탐색해 분류한다.
// 두 분류의 키워드가 모두 있으면 창 안에서 먼저 나타난 쪽이 우선한다.
func (e *PriceExtractor) classifyAt(text string, start, end int) priceClass {
	const window = 15
	lo := start - window
	if lo < 0 {
		lo = 0
	}
	hi := end + 9
	if hi > len(text) {
		hi = len(text)
	}
	win := strings.ToLower(text[lo:hi])

	bIdx := earliestIndex(win, e.cfg.BookingKeywords)
	oIdx := earliestIndex(win, e.cfg.OnsiteKeywords)

	switch {
	case bIdx < 0 && oIdx < 0:
		return classNone
	case oIdx < 0:
		return classBooking
	case bIdx < 0:
		return classOnsite
	case bIdx <= oIdx:
		return classBooking
	default:
		return classOnsite
	}
}

// earliestIndex 는 키워드 목록 중 가장 먼저 나타나는 위치를 반환한다(없으면 -1).
func earliestIndex(s string, keywords []string) int {
	best := -1
	for _, kw := range keywords {
		if idx := strings.Index(s, strings.ToLower(kw)); idx >= 0 && (best < 0 || idx < best) {
			best = idx
		}
	}
	return best
}

// parsePrice 는 금액 토큰을 정수로 변환하고 허용 구간을 검사한다.
func (e *PriceExtractor) parsePrice(token string) (int, bool) {
	n, err := strconv.Atoi(strings.ReplaceAll(token, ",", ""))
	if err != nil || !e.inRange(n) {
		return 0, false
	}
	return n, true
}

// inRange 는 금액이 허용 구간 안에 있는지 검사한다.
func (e *PriceExtractor) inRange(price int) bool {
	return price >= e.cfg.MinPrice && price <= e.cfg.MaxPrice
}

// stripDateShapes 는 날짜 형태의 부분 문자열을 공백으로 치환한다.
func stripDateShapes(text string) string {
	for _, re := range reStripDates {
		text = re.ReplaceAllStringFunc(text, func(m string) string {
			return strings.Repeat(" ", len(m))
		})
	}
	return text
}

// minOf 는 정수 슬라이스의 최솟값을 반환한다(빈 슬라이스 금지).
func minOf(values []int) int {
	best := values[0]
	for _, v := range values[1:] {
		if v < best {
			best = v
		}
	}
	return best
}
