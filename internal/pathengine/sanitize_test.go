package pathengine

import "testing"

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello world", "hello world"},
		{"path separators go fullwidth", "../../etc/passwd", "／..／etc／passwd"},
		{"illegal chars go fullwidth", `a:b*c?d"e<f>g|h`, "a：b＊c？d＂e＜f＞g｜h"},
		{"control chars stripped", "a\x00b\x1fc", "abc"},
		{"unicode space collapses", "a 　b", "a b"},
		{"leading/trailing dots and spaces trimmed", "  ..name..  ", "name"},
		{"empty falls back to unknown", "", "unknown"},
		{"only spaces falls back to unknown", "   ", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
