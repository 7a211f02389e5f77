package engine

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTrimDescription(t *testing.T) {
	short := "  Hello world  "
	if got := TrimDescription(short, 300); got != "Hello world" {
		t.Errorf("short description should only be trimmed, got %q", got)
	}

	long := "This is a very long description that needs to be truncated at a word boundary for readability"
	if got := TrimDescription(long, 0); got != long {
		t.Errorf("limit 0 should keep the description whole, got %q", got)
	}
	result := TrimDescription(long, 50)
	if !strings.HasSuffix(result, "...") {
		t.Errorf("truncated description should end with '...', got %q", result)
	}
	if n := len([]rune(strings.TrimSuffix(result, "..."))); n > 50 {
		t.Errorf("truncated rune count = %d, should be <= 50", n)
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := TruncateRunes("short", 200, "..."); got != "short" {
		t.Errorf("short input should be unchanged, got %q", got)
	}
	long := strings.Repeat("привет ", 100)
	got := TruncateRunes(long, 20, "...")
	if !utf8.ValidString(got) {
		t.Errorf("truncation split a rune: %q", got)
	}
	if !strings.HasSuffix(got, "...") || len([]rune(got)) >= len([]rune(long)) {
		t.Errorf("long input should be cut with suffix, got %q", got)
	}
}
