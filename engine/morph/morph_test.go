package morph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestIsAlphabetic(t *testing.T) {
	tests := []struct {
		r    rune
		want bool
	}{
		{'a', true},
		{'Z', true},
		{'ĉ', true},
		{'Ŭ', true},
		{'ŝ', true},
		{'é', false},
		{'1', false},
		{' ', false},
		{'-', false},
	}
	for _, tt := range tests {
		if got := IsAlphabetic(tt.r); got != tt.want {
			t.Errorf("IsAlphabetic(%q) = %v, want %v", tt.r, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hundo", "hundo"},
		{"ĈAMBRO", "ĉambro"},
		{"cxambro", "ĉambro"},
		{"CXAMBRO", "ĉambro"},
		{"sxi", "ŝi"},
		{"auxto", "aŭto"},
		{"ĝardeno", "ĝardeno"},
		{"gxardeno", "ĝardeno"},
		{"mi iras norden", "mi iras norden"},
		{"x", "x"},
		{"ax", "ax"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalize_Decomposed(t *testing.T) {
	// "c" followed by a combining circumflex.
	assert.Equal(t, "ĉu", Normalize("c\u0302u"))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal("Ŝranko", "sxranko"))
	assert.True(t, Equal("HUNDO", "hundo"))
	assert.False(t, Equal("hundo", "hundoj"))
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Ĉambro", Capitalize("ĉambro"))
	assert.Equal(t, "La hundo", Capitalize("la hundo"))
	assert.Equal(t, "", Capitalize(""))
}

func TestIsWord(t *testing.T) {
	assert.True(t, IsWord("ŝranko"))
	assert.False(t, IsWord(""))
	assert.False(t, IsWord("du vortoj"))
}

func TestNormalize_Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		letters := []rune("abcĉdefgĝhĥijĵklmnoprsŝtuŭvzxABCĈX ")
		n := rapid.IntRange(0, 20).Draw(t, "n")
		var b strings.Builder
		for i := 0; i < n; i++ {
			b.WriteRune(rapid.SampledFrom(letters).Draw(t, "r"))
		}
		once := Normalize(b.String())
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize not idempotent: %q -> %q -> %q", b.String(), once, twice)
		}
	})
}
