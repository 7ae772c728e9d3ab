package notify

import (
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{
			name: "short string unchanged",
			in:   "hello",
			max:  10,
			want: "hello",
		},
		{
			name: "exact length unchanged",
			in:   "hello",
			max:  5,
			want: "hello",
		},
		{
			name: "long string shortened",
			in:   "hello world",
			max:  5,
			want: "hello...",
		},
		{
			name: "multi-byte runes kept whole",
			in:   "héllo wörld",
			max:  6,
			want: "héllo ...",
		},
		{
			name: "cut lands on a wide rune",
			in:   "日本語のテキスト",
			max:  3,
			want: "日本語...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.max)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncate produced invalid UTF-8: %q", got)
			}
		})
	}
}
