package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/litup/gigfeed/internal/model"
)

// ArtistConfig 는 ArtistExtractor 의 불변 설정.
type ArtistConfig struct {
	// ExcludedKeywords 는 표기 이름에 포함되면 제외하는 키워드(문의 안내 등).
	ExcludedKeywords []string
	// ExcludedHandleKeywords 는 핸들에 포함되면 제외하는 키워드(공연장 자체 계정 등).
	ExcludedHandleKeywords []string
	// ChannelUsernames 는 수집 대상 채널의 username 목록.
	// 캡션 안에서 채널이 자기 자신을 태그한 경우를 라인업에서 제외한다.
	ChannelUsernames []string
}

// DefaultArtistConfig 는 기본 제외 키워드를 담은 설정을 반환한다.
func DefaultArtistConfig() ArtistConfig {
	return ArtistConfig{
		ExcludedKeywords: []string{"문의", "inquiry", "예매", "티켓", "ticket", "공지"},
	}
}

// ArtistExtractor 는 캡션의 라인업 블록에서 (이름, 핸들) 쌍 목록을 추출한다.
//
// 줄 단위로 "표기 이름 + @핸들" 패턴을 검사하고, 이름 유효성 검사를 통과한
// 항목만 남긴다. 소문자화한 핸들을 키로 중복을 제거하며 최초 표기를 유지한다.
type ArtistExtractor struct {
	cfg ArtistConfig
}

// NewArtistExtractor 는 ArtistExtractor 를 생성한다.
func NewArtistExtractor(cfg ArtistConfig) *ArtistExtractor {
	return &ArtistExtractor{cfg: cfg}
}

var (
	// "혁오 @hyukoh_official" 형태: 핸들 앞의 전체가 표기 이름.
	// 핸들은 줄 시작이거나 공백 뒤에만 인정한다. 이메일 주소처럼 단어에
	// 붙은 @ 는 핸들이 아니다.
	reArtistLine = regexp.MustCompile(`^(?:(.*?)\s+)?(@[A-Za-z0-9._]+)`)
	// 이름을 대신하는 해시태그 단어
	reHashtagWord = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)
	// 날짜로 시작하는 줄은 라인업이 아니라 일정 표기로 본다
	reArtistDateLine = regexp.MustCompile(`^\d{4}[.\-/]`)
	// 이름 앞의 장식 문자 (불릿, 화살표, 이모지 등)
	reArtistLeadMarkup = regexp.MustCompile(`^[>\-–—•·*▶▷✦✧│┃\x{1F000}-\x{1FAFF}\x{2600}-\x{27BF}\x{FE0F}\s]+`)
	// 서술형 문장을 배제하는 조사/어미
	proseParticles = []string{"하는", "으로", "에서", "통해", "함께", "대한"}
)

// Extract 는 캡션에서 아티스트 목록을 문서 순서대로 추출한다.
func (e *ArtistExtractor) Extract(text string) []model.ArtistEntry {
	if text == "" {
		return nil
	}

	var entries []model.ArtistEntry
	seen := make(map[string]bool)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, "@") || utf8.RuneCountInString(line) < 3 {
			continue
		}
		if reArtistDateLine.MatchString(line) {
			continue
		}

		m := reArtistLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		handle := m[2]
		label := strings.TrimSpace(reArtistLeadMarkup.ReplaceAllString(m[1], ""))

		// 해시태그로만 이름을 표기하는 줄은 해시태그 단어를 이름으로 쓴다
		if strings.Contains(label, "#") {
			if hm := reHashtagWord.FindStringSubmatch(label); hm != nil {
				label = hm[1]
			}
		}
		if label == "" {
			label = nameFromHandle(handle)
		}

		if !e.validName(label) || !e.validHandle(handle) {
			continue
		}

		key := strings.ToLower(handle)
		if seen[key] {
			continue
		}
		seen[key] = true
		entries = append(entries, model.ArtistEntry{Name: label, Handle: handle})
	}

	return entries
}

// validName 은 표기 이름이 아티스트 이름으로 유효한지 검사한다.
// 제외 키워드, 서술형 문장 휴리스틱, 문자 구성을 검사한다.
func (e *ArtistExtractor) validName(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range e.cfg.ExcludedKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return false
		}
	}

	// 서술형 문장 휴리스틱: 길이, 구두점 수, 조사/어미
	if utf8.RuneCountInString(name) > 50 {
		return false
	}
	punct := 0
	for _, r := range name {
		if r == ',' || r == '.' || r == '、' || r == '。' {
			punct++
		}
	}
	if punct >= 2 {
		return false
	}
	for _, p := range proseParticles {
		if strings.Contains(name, p) {
			return false
		}
	}

	// 한글 또는 라틴 문자가 하나도 없으면 이름으로 보지 않는다
	for _, r := range name {
		if unicode.Is(unicode.Hangul, r) || unicode.Is(unicode.Latin, r) {
			return true
		}
	}
	return false
}

// validHandle 은 핸들이 제외 대상(공연장 계정, 채널 자기 참조)이 아닌지 검사한다.
func (e *ArtistExtractor) validHandle(handle string) bool {
	lower := strings.ToLower(strings.TrimPrefix(handle, "@"))
	for _, kw := range e.cfg.ExcludedHandleKeywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return false
		}
	}
	for _, username := range e.cfg.ChannelUsernames {
		if username != "" && strings.Contains(lower, strings.ToLower(username)) {
			return false
		}
	}
	return true
}

// nameFromHandle 은 이름 표기가 없는 줄의 핸들에서 대체 이름을 만든다.
func nameFromHandle(handle string) string {
	name := strings.TrimPrefix(handle, "@")
	name = strings.ReplaceAll(name, "_", " ")
	return strings.TrimSpace(name)
}
