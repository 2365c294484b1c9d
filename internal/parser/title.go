package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// TitleExtractor 는 캡션에서 공연 제목을 추출한다.
//
// 전략은 우선순위 순으로 평가되며 최초로 성공한 전략이 확정된다.
//  1. 첫 줄: 장식 문자를 제거한 첫 줄이 제목 조건을 만족하면 채택
//  2. 괄호/따옴표 구간: <...> 또는 따옴표 쌍으로 감싼 최초 구간을 채택
//
// 해시태그를 제목으로 쓰는 전략은 폐기되었다. 해시태그로 시작하는 첫 줄도
// 제목으로 보지 않는다.
type TitleExtractor struct{}

// NewTitleExtractor 는 TitleExtractor 를 생성한다.
func NewTitleExtractor() *TitleExtractor {
	return &TitleExtractor{}
}

const (
	titleMinRunes = 2
	titleMaxRunes = 50
)

var (
	// 제목에서 제거하는 이모지/장식 기호
	reTitleDecoration = regexp.MustCompile(`[\x{1F000}-\x{1FAFF}\x{2600}-\x{27BF}\x{2B00}-\x{2BFF}\x{FE0F}\x{200D}★☆♪♬◆◇■□▶▷]`)
	// 첫 줄이 날짜 토큰으로 시작하는 경우 (예: "2025.11.14 ...")
	reTitleDateHead = regexp.MustCompile(`^\d{4}\s*[.\-/년]`)
	// 숫자만으로 이루어진 줄
	reTitleBareNumber = regexp.MustCompile(`^\d+$`)
	// <...> 또는 따옴표 쌍으로 감싼 구간
	reTitleSpans = []*regexp.Regexp{
		regexp.MustCompile(`<([^<>\n]+)>`),
		regexp.MustCompile(`＜([^＜＞\n]+)＞`),
		regexp.MustCompile(`「([^「」\n]+)」`),
		regexp.MustCompile(`『([^『』\n]+)』`),
		regexp.MustCompile(`“([^“”\n]+)”`),
		regexp.MustCompile(`"([^"\n]+)"`),
		regexp.MustCompile(`'([^'\n]+)'`),
	}
)

// titleTrimCutset 은 제목 양끝에서 잘라내는 괄호/따옴표/구분 문자.
const titleTrimCutset = " \t[]【】〈〉《》«»\"'“”‘’|~-―ㅡ·•:："

// Extract 는 캡션에서 제목을 추출한다. 조건을 만족하는 제목이 없으면 ok=false.
func (e *TitleExtractor) Extract(text string) (string, bool) {
	if text == "" {
		return "", false
	}

	// 전략 1: 첫 줄
	firstLine, _, _ := strings.Cut(text, "\n")
	if title, ok := cleanTitleLine(firstLine); ok {
		return title, true
	}

	// 전략 2: 괄호/따옴표 구간
	for _, re := range reTitleSpans {
		if m := re.FindStringSubmatch(text); m != nil {
			if title, ok := cleanTitleLine(m[1]); ok {
				return title, true
			}
		}
	}

	return "", false
}

// cleanTitleLine 은 장식 문자를 제거한 뒤 제목 조건을 검사한다.
func cleanTitleLine(line string) (string, bool) {
	cleaned := reTitleDecoration.ReplaceAllString(line, "")
	cleaned = strings.Trim(cleaned, titleTrimCutset)

	if cleaned == "" || strings.HasPrefix(cleaned, "#") {
		return "", false
	}
	if reTitleBareNumber.MatchString(cleaned) || reTitleDateHead.MatchString(cleaned) {
		return "", false
	}
	if n := utf8.RuneCountInString(cleaned); n <= titleMinRunes || n >= titleMaxRunes {
		return "", false
	}
	return cleaned, true
}
