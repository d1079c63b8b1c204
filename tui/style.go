package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("23")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Underline(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarration = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleListing = lipgloss.NewStyle().
			Bold(true)

	styleSpeech = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleRefusal = lipgloss.NewStyle().
			Foreground(lipgloss.Color("174"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// lineKind selects the style of an output line.
type lineKind int

const (
	kindNarration lineKind = iota
	kindListing
	kindSpeech
	kindSystem
	kindRefusal
	kindTrace
	kindInput
	kindHeader
)

// listingPrefix starts the line naming what lies in a room.
const listingPrefix = "Ĉi tie estas "

// classifyLine picks the kind of a line of game text.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, listingPrefix):
		return kindListing
	case strings.HasPrefix(line, "Vi ne "),
		strings.HasPrefix(line, "Mi ne "):
		return kindRefusal
	case containsQuotedSpeech(line):
		return kindSpeech
	default:
		return kindNarration
	}
}

// quotePairs are the quotation marks Esperanto texts use.
var quotePairs = map[rune]rune{
	'"': '"',
	'«': '»',
	'„': '“',
	'“': '”',
}

// containsQuotedSpeech reports whether the line holds a quotation longer
// than a few letters.
func containsQuotedSpeech(line string) bool {
	var closing rune
	n := 0
	for _, r := range line {
		if closing != 0 {
			if r == closing {
				if n > 5 {
					return true
				}
				closing = 0
				continue
			}
			n++
			continue
		}
		if c, ok := quotePairs[r]; ok {
			closing, n = c, 0
		}
	}
	return false
}

// renderLine applies the style of a kind to already wrapped text.
func renderLine(text string, kind lineKind) string {
	switch kind {
	case kindListing:
		return styledListing(text)
	case kindSpeech:
		return styleSpeech.Render(text)
	case kindSystem:
		return styleSystem.Render(text)
	case kindRefusal:
		return styleRefusal.Render(text)
	case kindTrace:
		return styleTrace.Render(text)
	case kindInput:
		return stylePlayerInput.Render(text)
	case kindHeader:
		return styleHeader.Render(text)
	default:
		return styleNarration.Render(text)
	}
}

// styledListing renders "Ĉi tie estas a, b kaj c." with the items bold.
func styledListing(line string) string {
	if !strings.HasPrefix(line, listingPrefix) {
		return styleNarration.Render(line)
	}
	return styleNarration.Render(listingPrefix) + styleListing.Render(line[len(listingPrefix):])
}
