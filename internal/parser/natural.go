package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// NaturalDateParser 는 정규식 테이블보다 먼저 시도되는 자연어 날짜 해석 계층이다.
// 외부 라이브러리 의존을 주입형 인터페이스로 분리해, 테스트에서는 스텁으로
// 교체할 수 있고 실패 시에는 정규식 테이블이 그대로 이어받는다.
type NaturalDateParser interface {
	// ParseDate 는 문자열에서 날짜(연/월/일)를 해석한다. 해석 실패 시 ok=false.
	ParseDate(s string, ref time.Time) (time.Time, bool)
	// ParseClock 은 문자열에서 시각(시/분)을 해석한다. 해석 실패 시 ok=false.
	ParseClock(s string) (hour, minute int, ok bool)
}

// libraryDateParser 는 dateparse 라이브러리를 사용하는 기본 구현.
// 미래 날짜 우선: 기준일보다 1년 이상 과거로 해석되면 다음 해로 보정한다
// (연도가 생략된 표기를 과거로 해석하는 경우에 대한 방어).
type libraryDateParser struct{}

// NewLibraryDateParser 는 dateparse 기반의 기본 NaturalDateParser 를 생성한다.
func NewLibraryDateParser() NaturalDateParser {
	return &libraryDateParser{}
}

// ParseDate 는 줄 단위로 dateparse 해석을 시도하고 최초 성공을 반환한다.
// 날짜로 볼 근거(4자리 연도 또는 영문 월 이름)가 없는 줄은 건너뛴다.
//
// dateparse 는 "2025.11.15 (SAT)" 같은 표기에서 괄호 뒤 숫자나 일(day)을
// 시각으로 소비해 엉뚱한 날짜를 에러 없이 반환할 수 있다. 괄호 보조 표기를
// 먼저 제거하고, 해석된 일이 줄의 숫자 토큰으로 실재하는지 교차 검증해
// 오독을 정규식 테이블로 넘긴다.
func (p *libraryDateParser) ParseDate(s string, ref time.Time) (time.Time, bool) {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(reParenGroup.ReplaceAllString(line, " "))
		if line == "" || !hasDateHint(line) {
			continue
		}
		t, err := dateparse.ParseAny(line)
		if err != nil {
			continue
		}
		if t.Year() < 2000 {
			continue
		}
		if !hasDayToken(line, t.Day()) {
			continue
		}
		// 미래 날짜 우선
		if t.Before(ref.AddDate(-1, 0, 0)) {
			t = t.AddDate(1, 0, 0)
		}
		return t, true
	}
	return time.Time{}, false
}

var (
	// 괄호로 감싼 보조 표기 (요일 등)
	reParenGroup = regexp.MustCompile(`\([^)]*\)`)
	reDigitToken = regexp.MustCompile(`\d+`)
)

// hasDayToken 은 해석된 일(day)이 줄의 숫자 토큰으로 존재하는지 검사한다.
// 숫자를 시각으로 소비해 1일로 귀결되는 dateparse 오독을 걸러낸다.
func hasDayToken(line string, day int) bool {
	for _, tok := range reDigitToken.FindAllString(line, -1) {
		if n, err := strconv.Atoi(tok); err == nil && n == day {
			return true
		}
	}
	return false
}

// ParseClock 은 표준 시각 레이아웃으로 시각 해석을 시도한다.
func (p *libraryDateParser) ParseClock(s string) (int, int, bool) {
	s = strings.TrimSpace(s)
	layouts := []string{"3:04 PM", "3:04PM", "15:04", "3 PM", "3PM"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, strings.ToUpper(s)); err == nil {
			return t.Hour(), t.Minute(), true
		}
	}
	return 0, 0, false
}

// monthNames 는 dateparse 해석을 시도할 근거가 되는 영문 월 이름.
var monthNames = []string{
	"jan", "feb", "mar", "apr", "may", "jun",
	"jul", "aug", "sep", "oct", "nov", "dec",
}

// hasDateHint 는 해당 줄에 날짜 표기로 볼 근거가 있는지 판정한다.
func hasDateHint(line string) bool {
	lower := strings.ToLower(line)
	for _, m := range monthNames {
		if strings.Contains(lower, m) {
			return true
		}
	}
	digits := 0
	for _, r := range line {
		if r >= '0' && r <= '9' {
			digits++
			if digits >= 4 {
				return true
			}
		} else {
			digits = 0
		}
	}
	return false
}
