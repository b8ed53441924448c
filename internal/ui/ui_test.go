package ui

import "testing"

func TestShortID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want string
	}{
		{"uuid truncates", "0c27e8a3-4f1e-4d5a-9b1c-2f7d8e9a0b1c", "0c27e8a3"},
		{"exactly eight", "abcdefgh", "abcdefgh"},
		{"short remote id", "a1", "a1"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShortID(tt.id); got != tt.want {
				t.Errorf("ShortID(%q) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}

func TestRenderPlainWithoutColor(t *testing.T) {
	if ColorEnabled() {
		t.Skip("terminal supports color")
	}

	if got := RenderAccent("title"); got != "title" {
		t.Errorf("RenderAccent = %q, want bare text on a plain terminal", got)
	}
	if got := RenderStatus("idle"); got != "✓ synced" {
		t.Errorf("RenderStatus = %q, want unstyled indicator", got)
	}
}
