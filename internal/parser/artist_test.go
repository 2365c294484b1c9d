package parser

import "testing"

// TestArtistExtract_LineupBlock 은 라인업 블록에서 (이름, 핸들) 쌍을 순서대로 추출하는 것을 테스트한다.
func TestArtistExtract_LineupBlock(t *testing.T) {
	e := NewArtistExtractor(DefaultArtistConfig())
	got := e.Extract("혁오 @hyukoh_official\n잔나비 @thejannabiofficial")
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2: %v", len(got), got)
	}
	if got[0].Name != "혁오" || got[0].Handle != "@hyukoh_official" {
		t.Errorf("entry[0] = %+v", got[0])
	}
	if got[1].Name != "잔나비" || got[1].Handle != "@thejannabiofficial" {
		t.Errorf("entry[1] = %+v", got[1])
	}
}

// TestArtistExtract_DedupByHandle 은 소문자화한 핸들로 중복을 제거하고
// 최초 표기를 유지하는 것을 테스트한다.
func TestArtistExtract_DedupByHandle(t *testing.T) {
	e := NewArtistExtractor(DefaultArtistConfig())
	got := e.Extract("HYUKOH @HYUKOH_OFFICIAL\n혁오 @hyukoh_official\n혁오밴드 @Hyukoh_Official")
	if len(got) != 1 {
		t.Fatalf("got %d entries, want 1: %v", len(got), got)
	}
	if got[0].Name != "HYUKOH" || got[0].Handle != "@HYUKOH_OFFICIAL" {
		t.Errorf("최초 표기가 유지되어야 한다: %+v", got[0])
	}
}

// TestArtistExtract_HashtagLabel 은 해시태그로만 표기된 이름을 해시태그 단어로 대체하는 것을 테스트한다.
func TestArtistExtract_HashtagLabel(t *testing.T) {
	e := NewArtistExtractor(DefaultArtistConfig())
	got := e.Extract("#새소년 @se_so_neon")
	if len(got) != 1 || got[0].Name != "새소년" {
		t.Fatalf("got %v, want [새소년 @se_so_neon]", got)
	}
}

// TestArtistExtract_NameFromHandle 은 이름 표기가 없는 줄에서 핸들 기반 대체 이름을 만드는 것을 테스트한다.
func TestArtistExtract_NameFromHandle(t *testing.T) {
	e := NewArtistExtractor(DefaultArtistConfig())
	got := e.Extract("@wave_to_earth")
	if len(got) != 1 || got[0].Name != "wave to earth" {
		t.Fatalf("got %v, want [wave to earth @wave_to_earth]", got)
	}
}

// TestArtistExtract_EmailNotHandle 은 이메일 주소의 @ 를 핸들로 오인하지 않는 것을 테스트한다.
func TestArtistExtract_EmailNotHandle(t *testing.T) {
	e := NewArtistExtractor(DefaultArtistConfig())
	got := e.Extract("혁오 @hyukoh_official\n연락처 contact@clubff.com")
	if len(got) != 1 {
		t.Fatalf("got %d entries, want 1: %v", len(got), got)
	}
	if got[0].Handle != "@hyukoh_official" {
		t.Errorf("entry[0] = %+v", got[0])
	}
	if got := e.Extract("예약 booking@venue.co.kr"); len(got) != 0 {
		t.Errorf("이메일만 있는 줄은 추출되지 않아야 한다: %v", got)
	}
}

// TestArtistExtract_LeadingMarkupStripped 는 불릿/장식 문자가 이름에서 제거되는 것을 테스트한다.
func TestArtistExtract_LeadingMarkupStripped(t *testing.T) {
	e := NewArtistExtractor(DefaultArtistConfig())
	got := e.Extract("> 실리카겔 @silicagel_official\n• 쏜애플 @thornapple_official")
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2: %v", len(got), got)
	}
	if got[0].Name != "실리카겔" || got[1].Name != "쏜애플" {
		t.Errorf("장식 문자가 제거되어야 한다: %v", got)
	}
}

// TestArtistExtract_ExcludedKeyword 는 제외 키워드가 포함된 이름을 버리는 것을 테스트한다.
func TestArtistExtract_ExcludedKeyword(t *testing.T) {
	e := NewArtistExtractor(DefaultArtistConfig())
	if got := e.Extract("공연 문의 @venue_contact"); len(got) != 0 {
		t.Errorf("제외 키워드가 포함된 항목은 버려야 한다: %v", got)
	}
}

// TestArtistExtract_ProseRejected 는 서술형 문장을 이름으로 보지 않는 것을 테스트한다.
func TestArtistExtract_ProseRejected(t *testing.T) {
	e := NewArtistExtractor(DefaultArtistConfig())
	if got := e.Extract("올해 10주년을 맞이한 밴드와 함께 @someband"); len(got) != 0 {
		t.Errorf("서술형 문장은 버려야 한다: %v", got)
	}
	if got := e.Extract("공연장, 합정역 5번 출구, 도보 3분. @someplace"); len(got) != 0 {
		t.Errorf("구두점이 많은 줄은 버려야 한다: %v", got)
	}
}

// TestArtistExtract_NoLetterRejected 는 한글/라틴 문자가 없는 이름을 버리는 것을 테스트한다.
func TestArtistExtract_NoLetterRejected(t *testing.T) {
	e := NewArtistExtractor(DefaultArtistConfig())
	if got := e.Extract("2024 @someband"); len(got) != 0 {
		t.Errorf("숫자만으로 된 이름은 버려야 한다: %v", got)
	}
}

// TestArtistExtract_ChannelSelfReference 는 채널 자기 참조 핸들을 버리는 것을 테스트한다.
func TestArtistExtract_ChannelSelfReference(t *testing.T) {
	cfg := DefaultArtistConfig()
	cfg.ChannelUsernames = []string{"club_ff"}
	e := NewArtistExtractor(cfg)
	got := e.Extract("CLUB FF @club_ff_seoul\n혁오 @hyukoh_official")
	if len(got) != 1 || got[0].Handle != "@hyukoh_official" {
		t.Errorf("채널 자기 참조는 버려야 한다: %v", got)
	}
}

// TestArtistExtract_ExcludedHandleKeyword 는 핸들 제외 키워드를 테스트한다.
func TestArtistExtract_ExcludedHandleKeyword(t *testing.T) {
	cfg := DefaultArtistConfig()
	cfg.ExcludedHandleKeywords = []string{"festival"}
	e := NewArtistExtractor(cfg)
	if got := e.Extract("라인업 공개 @seoulfestival"); len(got) != 0 {
		t.Errorf("핸들 제외 키워드가 포함된 항목은 버려야 한다: %v", got)
	}
}

// TestArtistExtract_SkipNonLineup 은 핸들이 없거나 너무 짧은 줄을 건너뛰는 것을 테스트한다.
func TestArtistExtract_SkipNonLineup(t *testing.T) {
	e := NewArtistExtractor(DefaultArtistConfig())
	if got := e.Extract("라인업은 아래와 같습니다\n@a\n2025.11.14 @venue_tag"); len(got) != 0 {
		t.Errorf("핸들 없는 줄, 짧은 줄, 날짜 줄은 건너뛰어야 한다: %v", got)
	}
	if got := e.Extract(""); got != nil {
		t.Errorf("빈 캡션은 nil 을 반환해야 한다: %v", got)
	}
}
