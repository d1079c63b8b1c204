package cli

import "testing"

func TestHistory_OlderAndNewer(t *testing.T) {
	h := NewHistory(5)
	h.Record("rigardu")
	h.Record("norden")
	h.Record("prenu la ŝlosilon")

	for _, want := range []string{"prenu la ŝlosilon", "norden", "rigardu", "rigardu"} {
		got, ok := h.Older()
		if !ok || got != want {
			t.Errorf("Older() = %q, %v, want %q", got, ok, want)
		}
	}

	if got, ok := h.Newer(); !ok || got != "norden" {
		t.Errorf("Newer() = %q, %v, want norden", got, ok)
	}
	h.Newer()
	if _, ok := h.Newer(); ok {
		t.Error("expected false when stepping past the newest line")
	}
}

func TestHistory_Empty(t *testing.T) {
	h := NewHistory(5)
	if _, ok := h.Older(); ok {
		t.Error("expected false on empty history")
	}
	if _, ok := h.Newer(); ok {
		t.Error("expected false on empty history")
	}
	if _, ok := h.Repeat(); ok {
		t.Error("expected nothing to repeat")
	}
}

func TestHistory_Limit(t *testing.T) {
	h := NewHistory(2)
	h.Record("suden")
	h.Record("norden")
	h.Record("rigardu")

	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}
	for _, want := range []string{"rigardu", "norden", "norden"} {
		if got, _ := h.Older(); got != want {
			t.Errorf("Older() = %q, want %q", got, want)
		}
	}
}

func TestHistory_SameCommandKeptOnce(t *testing.T) {
	tests := []struct {
		name string
		a, b string
	}{
		{"identical", "rigardu", "rigardu"},
		{"shortcut", "n", "mi iras norden"},
		{"x-system", "sxovu la sxrankon", "ŝovu la ŝrankon"},
		{"case and full stop", "Prenu la libron.", "prenu la libron"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			h := NewHistory(5)
			h.Record(tt.a)
			h.Record(tt.b)
			if h.Len() != 1 {
				t.Errorf("Len() = %d after %q and %q, want 1", h.Len(), tt.a, tt.b)
			}
		})
	}

	h := NewHistory(5)
	h.Record("rigardu")
	h.Record("norden")
	h.Record("rigardu")
	if h.Len() != 3 {
		t.Errorf("Len() = %d, want 3 when the same line is not consecutive", h.Len())
	}
}

func TestHistory_Repeat(t *testing.T) {
	h := NewHistory(5)
	h.Record("norden")
	h.Record("/state")
	h.Record("denove")
	h.Record("G")

	if got, ok := h.Repeat(); !ok || got != "norden" {
		t.Errorf("Repeat() = %q, %v, want norden", got, ok)
	}
	if h.Len() != 2 {
		t.Errorf("Len() = %d, want repeat requests left out", h.Len())
	}

	h.Forget()
	if _, ok := h.Repeat(); ok {
		t.Error("expected nothing to repeat after Forget")
	}
}

func TestHistory_RecordEndsBrowsing(t *testing.T) {
	h := NewHistory(5)
	h.Record("rigardu")
	h.Record("norden")
	h.Older()
	h.Older()
	h.Record("suden")

	if got, _ := h.Older(); got != "suden" {
		t.Errorf("Older() = %q after a new line, want suden", got)
	}
}

func TestIsRepeat(t *testing.T) {
	for _, line := range []string{"denove", "g", " Denove ", "G"} {
		if !IsRepeat(line) {
			t.Errorf("IsRepeat(%q) = false", line)
		}
	}
	for _, line := range []string{"gardu", "denove norden", ""} {
		if IsRepeat(line) {
			t.Errorf("IsRepeat(%q) = true", line)
		}
	}
}
