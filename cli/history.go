package cli

import (
	"strings"

	"github.com/nathoo/aventuro/engine/morph"
	"github.com/nathoo/aventuro/engine/parser"
)

// History keeps the lines typed in a session. Front ends use it to recall
// earlier lines and to resolve "denove". Consecutive lines that mean the
// same command ("n" and "mi iras norden", "sxovu" and "ŝovu") are kept once.
type History struct {
	lines  []string
	limit  int
	cursor int // len(lines) when not browsing
	repeat string
}

// NewHistory returns a history keeping at most limit lines.
func NewHistory(limit int) *History {
	return &History{limit: limit}
}

// IsRepeat reports whether line asks for the previous game command again.
func IsRepeat(line string) bool {
	w := morph.Normalize(strings.TrimSpace(line))
	return w == "denove" || w == "g"
}

// Record stores a submitted line and ends browsing. Repeat requests are
// not stored; meta commands are stored but never repeated.
func (h *History) Record(line string) {
	defer func() { h.cursor = len(h.lines) }()

	if IsRepeat(line) {
		return
	}
	if !strings.HasPrefix(line, "/") {
		h.repeat = line
	}
	if n := len(h.lines); n > 0 && sameCommand(h.lines[n-1], line) {
		return
	}
	h.lines = append(h.lines, line)
	if len(h.lines) > h.limit {
		h.lines = h.lines[1:]
	}
}

// Repeat returns the game command "denove" stands for.
func (h *History) Repeat() (string, bool) {
	return h.repeat, h.repeat != ""
}

// Forget clears the repeat command. Used after a load or restart, when
// the previous command belongs to another session.
func (h *History) Forget() {
	h.repeat = ""
}

// Older steps back one line. It stays on the oldest line and reports false
// only when nothing was recorded.
func (h *History) Older() (string, bool) {
	if len(h.lines) == 0 {
		return "", false
	}
	if h.cursor > 0 {
		h.cursor--
	}
	return h.lines[h.cursor], true
}

// Newer steps forward one line. Stepping past the newest line returns to
// an empty prompt and reports false.
func (h *History) Newer() (string, bool) {
	if h.cursor >= len(h.lines) {
		return "", false
	}
	h.cursor++
	if h.cursor == len(h.lines) {
		return "", false
	}
	return h.lines[h.cursor], true
}

// Len returns the number of lines kept.
func (h *History) Len() int { return len(h.lines) }

func sameCommand(a, b string) bool {
	ea, eb := parser.ExpandShortcut(a), parser.ExpandShortcut(b)
	if morph.Normalize(ea) == morph.Normalize(eb) {
		return true
	}
	ca, okA := parser.Parse(ea)
	cb, okB := parser.Parse(eb)
	return okA && okB && ca == cb
}
