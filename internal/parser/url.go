package parser

import (
	"regexp"
	"strings"
)

// URLConfig 는 URLExtractor 의 불변 설정.
type URLConfig struct {
	// AggregatorDomains 는 링크 모음 서비스의 도메인.
	AggregatorDomains []string
	// ProfilePhrases 는 "프로필 링크 참조"를 뜻하는 문구.
	ProfilePhrases []string
	// BookingDomains 는 예매처 도메인 패턴. 구체적인 예매 플랫폼을 앞에,
	// 범용 패턴(ticket/booking 단어 포함)을 뒤에 둔다.
	BookingDomains []string
}

// DefaultURLConfig 는 국내 예매 플랫폼 중심의 기본 설정을 반환한다.
func DefaultURLConfig() URLConfig {
	return URLConfig{
		AggregatorDomains: []string{"linktr.ee", "litt.ly", "bio.link", "link.inpock"},
		ProfilePhrases: []string{
			"프로필 링크", "프로필링크", "프로필 주소", "상단 링크",
			"link in bio", "프로필의 링크",
		},
		BookingDomains: []string{
			"ticket.melon.com",
			"tickets.interpark.com",
			"ticket.interpark.com",
			"ticket.yes24.com",
			"booking.naver.com",
			"tumblbug.com",
			"forms.gle",
			"docs.google.com/forms",
			"ticket",
			"booking",
		},
	}
}

// URLExtractor 는 캡션 또는 프로필 링크에서 예매 URL 을 찾는다.
//
// 명시적으로 참조된 링크 모음 프로필 링크가 가장 신뢰할 수 있는 예매처이므로
// 최우선으로 반환하고, 그 다음에 캡션 내 직접 URL 을 예매처 도메인 우선순위로
// 탐색한다.
type URLExtractor struct {
	cfg URLConfig
}

// NewURLExtractor 는 URLExtractor 를 생성한다.
func NewURLExtractor(cfg URLConfig) *URLExtractor {
	return &URLExtractor{cfg: cfg}
}

var reURL = regexp.MustCompile(`https?://[^\s<>"']+`)

// urlTrimCutset 은 URL 매칭 끝에 붙는 문장 부호.
const urlTrimCutset = `.,;:!?)]}>"'`

// Extract 는 캡션과 프로필 링크에서 예매 URL 을 찾는다. 없으면 ok=false.
func (e *URLExtractor) Extract(caption, profileURL string) (string, bool) {
	if caption == "" && profileURL == "" {
		return "", false
	}

	hasPhrase := e.containsProfilePhrase(caption)

	// 1단계: 링크 모음 도메인의 프로필 링크가 명시적으로 참조된 경우
	if profileURL != "" && e.isAggregator(profileURL) && hasPhrase {
		return profileURL, true
	}

	// 2단계: 캡션 내 직접 URL (예매처 도메인 우선순위 순)
	urls := findURLs(caption)
	for _, domain := range e.cfg.BookingDomains {
		for _, u := range urls {
			if strings.Contains(strings.ToLower(u), domain) {
				return u, true
			}
		}
	}

	// 3단계: 프로필 링크 참조 문구만 있는 경우 (도메인 불문)
	if hasPhrase && profileURL != "" {
		return profileURL, true
	}

	return "", false
}

// ExtractProfileURLFromBio 는 계정 바이오 문자열에서 프로필 링크를 찾는다.
// 링크 모음 도메인을 우선하고, 없으면 최초 URL 을 반환한다.
func (e *URLExtractor) ExtractProfileURLFromBio(bio string) (string, bool) {
	urls := findURLs(bio)
	if len(urls) == 0 {
		return "", false
	}
	for _, u := range urls {
		if e.isAggregator(u) {
			return u, true
		}
	}
	return urls[0], true
}

// isAggregator 는 URL 이 링크 모음 서비스 도메인인지 검사한다.
func (e *URLExtractor) isAggregator(url string) bool {
	lower := strings.ToLower(url)
	for _, domain := range e.cfg.AggregatorDomains {
		if strings.Contains(lower, domain) {
			return true
		}
	}
	return false
}

// containsProfilePhrase 는 캡션에 프로필 링크 참조 문구가 있는지 검사한다.
func (e *URLExtractor) containsProfilePhrase(caption string) bool {
	lower := strings.ToLower(caption)
	for _, phrase := range e.cfg.ProfilePhrases {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}

// findURLs 는 텍스트 내 모든 URL 을 문서 순서대로 수집한다.
// 매칭 끝의 문장 부호는 잘라낸다.
func findURLs(text string) []string {
	matches := reURL.FindAllString(text, -1)
	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		if u := strings.TrimRight(m, urlTrimCutset); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}
