// Package security 는 애플리케이션의 보안 기능을 제공한다.
//
// CaptionSanitizerService 는 스크래핑한 게시물 캡션을 저장 전에 정화한다.
// 캡션은 평문으로 저장되므로 허용 목록 기반이 아닌 StrictPolicy 로
// 모든 태그를 제거하고, 남은 HTML 엔티티를 원래 문자로 되돌린다.
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// CaptionSanitizerService 는 캡션 정화 기능의 인터페이스를 정의한다.
// 인제스트 파이프라인에서 파서에 캡션을 넘기기 전에 사용된다.
type CaptionSanitizerService interface {
	// Sanitize 는 캡션에서 모든 HTML 태그를 제거한 평문을 반환한다.
	// 태그 제거 후 남은 엔티티(&amp; 등)는 원래 문자로 복원한다.
	// 빈 문자열 입력에는 빈 문자열을 반환한다.
	// 같은 입력에 대해 항상 같은 출력을 반환한다(멱등).
	Sanitize(raw string) string
}

// captionSanitizer 는 CaptionSanitizerService 의 구현.
// bluemonday 의 StrictPolicy 를 보유하며 스레드 세이프하게 동작한다.
type captionSanitizer struct {
	policy *bluemonday.Policy
}

// NewCaptionSanitizer 는 CaptionSanitizerService 의 새 인스턴스를 생성한다.
// StrictPolicy 는 태그를 일절 허용하지 않으므로 script/iframe/style 및
// 모든 on* 이벤트 속성이 함께 제거된다.
func NewCaptionSanitizer() *captionSanitizer {
	return &captionSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize 는 캡션에서 모든 HTML 태그를 제거한 평문을 반환한다.
func (s *captionSanitizer) Sanitize(raw string) string {
	if raw == "" {
		return ""
	}
	stripped := s.policy.Sanitize(raw)
	// StrictPolicy 는 & 등을 엔티티로 이스케이프해 반환하므로 되돌린다
	return strings.TrimSpace(html.UnescapeString(stripped))
}
