package parser

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateConfig 는 DateExtractor 의 불변 설정.
type DateConfig struct {
	// DefaultHour/DefaultMinute 는 시각 표기가 없는 캡션에 적용하는 기본 공연 시각.
	DefaultHour   int
	DefaultMinute int
	// Now 는 연도 생략 표기("11/29" 등)가 가정하는 현재 시각. 테스트에서 고정한다.
	Now func() time.Time
}

// DefaultDateConfig 는 기본 설정(기본 시각 19:00)을 반환한다.
func DefaultDateConfig() DateConfig {
	return DateConfig{DefaultHour: 19, DefaultMinute: 0, Now: time.Now}
}

// DateExtractor 는 캡션에서 공연 날짜와 시각을 추출한다.
//
// 날짜 탐색과 시각 탐색은 완전히 분리된 2단계로 동작한다. 날짜만 있는 캡션도
// 기본 시각으로 유효한 타임스탬프를 얻을 수 있고, 각 단계의 패턴 테이블을
// 독립적으로 확장할 수 있다. 우선순위 순서로 평가되는 순수 매처 함수 목록이며,
// 최초로 매칭된 패턴이 확정된다(매칭 간 교차 검증은 하지 않는다).
type DateExtractor struct {
	cfg     DateConfig
	natural NaturalDateParser
}

// NewDateExtractor 는 DateExtractor 를 생성한다. natural 이 nil 이면
// 자연어 계층 없이 정규식 테이블만 사용한다.
func NewDateExtractor(cfg DateConfig, natural NaturalDateParser) *DateExtractor {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &DateExtractor{cfg: cfg, natural: natural}
}

// Extract 는 캡션에서 "YYYY-MM-DD HH:MM" 형식의 공연 일시를 추출한다.
// 날짜를 찾지 못하면 ok=false 를 반환한다(시각 단독으로는 의미가 없다).
// 시각을 찾지 못하면 기본 시각을 적용한다.
func (e *DateExtractor) Extract(text string) (string, bool) {
	if text == "" {
		return "", false
	}

	year, month, day, ok := e.findDate(text)
	if !ok {
		return "", false
	}

	hour, minute, ok := e.findTime(text)
	if !ok {
		slog.Warn("공연 시각을 찾지 못해 기본 시각을 적용합니다",
			slog.Int("default_hour", e.cfg.DefaultHour),
		)
		hour, minute = e.cfg.DefaultHour, e.cfg.DefaultMinute
	}

	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d", year, month, day, hour, minute), true
}

// --- 날짜 단계 ---

var (
	// 2025.11.14 / 2025-11-14 / 2025/11/16 / "2025. 11. 7"
	reDateNumericYMD = regexp.MustCompile(`(\d{4})[.\-/]\s*(\d{1,2})[.\-/]\s*(\d{1,2})`)
	// 25.11.29 (2자리 연도, 50 을 기준으로 1900/2000년대 판별)
	reDateShortYMD = regexp.MustCompile(`\b(\d{2})[.\-/](\d{1,2})[.\-/](\d{1,2})\b`)
	// 11/29 (연도 생략, 현재 연도로 가정)
	reDateBareMD = regexp.MustCompile(`\b(\d{1,2})\s*/\s*(\d{1,2})\b`)
	// 28.NOV.2025
	reDateMonthName = regexp.MustCompile(`(?i)\b(\d{1,2})\.?\s*(JAN|FEB|MAR|APR|MAY|JUN|JUL|AUG|SEP|OCT|NOV|DEC)\.?\s*(\d{4})`)
	// 2025년 11월 14일
	reDateKoreanFull = regexp.MustCompile(`(\d{4})\s*년\s*(\d{1,2})\s*월\s*(\d{1,2})\s*일`)
	// 11월 14일 (연도 생략)
	reDateKoreanMD = regexp.MustCompile(`(\d{1,2})\s*월\s*(\d{1,2})\s*일`)
)

// englishMonths 는 3글자 영문 월 이름과 월 번호의 대응.
var englishMonths = map[string]int{
	"JAN": 1, "FEB": 2, "MAR": 3, "APR": 4, "MAY": 5, "JUN": 6,
	"JUL": 7, "AUG": 8, "SEP": 9, "OCT": 10, "NOV": 11, "DEC": 12,
}

// findDate 는 우선순위 순서로 날짜 패턴을 시도해 (연, 월, 일)을 반환한다.
func (e *DateExtractor) findDate(text string) (int, int, int, bool) {
	// 1단계: 자연어 계층
	if e.natural != nil {
		if t, ok := e.natural.ParseDate(text, e.cfg.Now()); ok {
			return t.Year(), int(t.Month()), t.Day(), true
		}
	}

	// 2단계: 정규식 테이블 (최초 매칭이 확정)
	if m := reDateNumericYMD.FindStringSubmatch(text); m != nil {
		return atoi(m[1]), atoi(m[2]), atoi(m[3]), true
	}
	if m := reDateShortYMD.FindStringSubmatch(text); m != nil {
		year := atoi(m[1])
		if year < 50 {
			year += 2000
		} else {
			year += 1900
		}
		return year, atoi(m[2]), atoi(m[3]), true
	}
	if m := reDateBareMD.FindStringSubmatch(text); m != nil {
		month, day := atoi(m[1]), atoi(m[2])
		if month >= 1 && month <= 12 {
			return e.cfg.Now().Year(), month, day, true
		}
	}
	if m := reDateMonthName.FindStringSubmatch(text); m != nil {
		return atoi(m[3]), englishMonths[strings.ToUpper(m[2])], atoi(m[1]), true
	}
	if m := reDateKoreanFull.FindStringSubmatch(text); m != nil {
		return atoi(m[1]), atoi(m[2]), atoi(m[3]), true
	}
	if m := reDateKoreanMD.FindStringSubmatch(text); m != nil {
		return e.cfg.Now().Year(), atoi(m[1]), atoi(m[2]), true
	}

	return 0, 0, 0, false
}

// --- 시각 단계 ---

var (
	// 7:30 PM / 7:30pm
	reTimeClockMeridiem = regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})\s*(AM|PM)`)
	// 10pm / 8 PM
	reTimeHourMeridiem = regexp.MustCompile(`(?i)\b(\d{1,2})\s*(AM|PM)\b`)
	// 19:00 (24시간제)
	reTimeClock24 = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	// 오후 8시 / 저녁 7시 30분
	reTimeKoreanPeriod = regexp.MustCompile(`(오전|오후|저녁|아침|밤|낮)\s*(\d{1,2})\s*시(?:\s*(\d{1,2})\s*분)?`)
	// 7시 / 7시 30분 (오전/오후 표기 없음)
	reTimeKoreanBare = regexp.MustCompile(`(\d{1,2})\s*시(?:\s*(\d{1,2})\s*분)?`)
)

// timeKeywords 는 자연어 계층에 시각 해석을 시도시킬 줄을 고르는 키워드.
var timeKeywords = []string{"시간", "time", "gig time", "공연시간", "start", "open"}

// koreanEveningPeriods 는 12시간제 시각을 오후로 보정하는 한국어 시간대 표기.
var koreanEveningPeriods = map[string]bool{"오후": true, "저녁": true, "밤": true}

// findTime 은 우선순위 순서로 시각 패턴을 시도해 (시, 분)을 반환한다.
func (e *DateExtractor) findTime(text string) (int, int, bool) {
	// 1단계: 키워드가 있는 줄에 자연어 계층을 시도
	if e.natural != nil {
		for _, line := range strings.Split(text, "\n") {
			if !hasTimeHint(line) {
				continue
			}
			if h, m, ok := e.natural.ParseClock(afterTimeKeyword(line)); ok {
				return h, m, true
			}
		}
	}

	// 2단계: 정규식 테이블
	if m := reTimeClockMeridiem.FindStringSubmatch(text); m != nil {
		hour := adjustMeridiem(atoi(m[1]), m[3])
		return hour, atoi(m[2]), true
	}
	if m := reTimeHourMeridiem.FindStringSubmatch(text); m != nil {
		return adjustMeridiem(atoi(m[1]), m[2]), 0, true
	}
	if m := reTimeClock24.FindStringSubmatch(text); m != nil {
		hour, minute := atoi(m[1]), atoi(m[2])
		if hour <= 23 && minute <= 59 {
			return hour, minute, true
		}
	}
	if m := reTimeKoreanPeriod.FindStringSubmatch(text); m != nil {
		hour := atoi(m[2])
		if koreanEveningPeriods[m[1]] && hour < 12 {
			hour += 12
		}
		if m[1] == "오전" && hour == 12 {
			hour = 0
		}
		return hour, atoi(m[3]), true
	}
	if m := reTimeKoreanBare.FindStringSubmatch(text); m != nil {
		// 공연은 저녁 행사이므로 오전/오후 표기가 없는 1~11시는 오후로 본다.
		hour := atoi(m[1])
		if hour >= 1 && hour < 12 {
			hour += 12
		}
		if hour <= 23 {
			return hour, atoi(m[2]), true
		}
	}

	return 0, 0, false
}

// adjustMeridiem 은 AM/PM 표기를 24시간제로 보정한다.
// 정오(12PM)는 12 유지, 자정(12AM)은 0 이 된다.
func adjustMeridiem(hour int, meridiem string) int {
	switch strings.ToUpper(meridiem) {
	case "PM":
		if hour < 12 {
			hour += 12
		}
	case "AM":
		if hour == 12 {
			hour = 0
		}
	}
	return hour
}

// hasTimeHint 는 해당 줄에 시각 표기로 볼 근거가 있는지 판정한다.
// 키워드, 콜론, AM/PM 토큰, 한국어 "시" 표기를 근거로 본다.
func hasTimeHint(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range timeKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	if strings.Contains(line, ":") {
		return true
	}
	if reTimeHourMeridiem.MatchString(line) {
		return true
	}
	return strings.Contains(line, "시")
}

// afterTimeKeyword 는 줄에서 콜론 뒤의 시각 후보 부분을 잘라낸다.
// "공연시간 Gig Time : 19:00" 처럼 레이블 콜론이 섞인 줄에 대응한다.
func afterTimeKeyword(line string) string {
	if idx := strings.LastIndexAny(line, ":："); idx >= 0 && idx >= len(line)-8 {
		// 마지막 콜론이 시각(HH:MM)의 일부인 경우는 콜론 앞 2글자부터 남긴다
		start := idx - 2
		if start < 0 {
			start = 0
		}
		return strings.TrimSpace(line[start:])
	}
	return strings.TrimSpace(line)
}

// atoi 는 정규식 매칭으로 확보된 숫자 문자열을 변환한다(실패 시 0).
func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
