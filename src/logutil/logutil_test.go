package logutil

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"flattens whitespace", "Hello\n  World\t!", "Hello World !"},
		{"empty", "", ""},
		{"keeps unicode", "こんにちは 世界", "こんにちは 世界"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	long := strings.Repeat("語", maxLogText+10)
	got := Sanitize(long)
	if !strings.HasSuffix(got, "...") || len([]rune(got)) != maxLogText+3 {
		t.Errorf("long text not truncated on a rune boundary: %d runes", len([]rune(got)))
	}
}
