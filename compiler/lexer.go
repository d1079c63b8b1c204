package compiler

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nathoo/aventuro/builder"
)

// tokenKind is the type of a lexical token.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokSymbol
	tokKeyword
	tokNumber
	tokString
	tokOpenBrace
	tokCloseBrace
)

func (k tokenKind) String() string {
	return [...]string{"end of file", "symbol", "keyword", "number", "string", "‘{’", "‘}’"}[k]
}

type token struct {
	kind tokenKind
	text string // symbol, keyword or string contents
	num  int
	line int
}

// keywords are the reserved words of the language. Any other word is a
// symbol.
var keywords = map[string]bool{}

func init() {
	for _, k := range []string{
		"nomo", "aŭtoro", "jaro", "enkonduko", "teksto", "ejo", "priskribo",
		"norden", "orienten", "suden", "okcidenten", "supren", "suben", "elen",
		"direkto", "luma", "nelumigebla", "ludfino", "poentoj", "eco",
		"aĵo", "monstro", "alinomo", "fenomeno", "loko", "kunportata", "enen",
		"legebla", "viro", "ino", "besto", "pluralo",
		"portebla", "neportebla", "fermebla", "fermita", "lumigebla",
		"lumigita", "fajrebla", "fajrilo", "brulanta", "bruligita",
		"manĝebla", "trinkebla", "venena",
		"pezo", "grando", "enhavo", "perpafo", "ŝargo", "perbato", "perpiko",
		"manĝeblo", "trinkeblo", "fajrodaŭro", "fino",
		"kadavro", "malsato", "soifo", "agreso", "atako", "defendo", "vivoj",
		"fuĝo", "vagado",
		"mesaĝo", "pero", "se", "do", "ne", "estas", "ĉeestas", "ŝanco",
		"ejeco", "ludeco", "samnoma", "samsubstantiva", "samadjektiva",
		"nenio", "io", "alien", "nova", "kopio", "porti", "forigi",
		"adjektivo", "ekigi",
	} {
		keywords[k] = true
	}
}

// lexer splits source text into tokens. One token can be put back.
type lexer struct {
	r    *bufio.Reader
	line int

	back    token
	hasBack bool
}

func newLexer(r io.Reader) *lexer {
	return &lexer{r: bufio.NewReader(r), line: 1}
}

func (l *lexer) errorf(line int, format string, args ...any) error {
	return &builder.Error{Line: line, Msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) read() (rune, error) {
	c, _, err := l.r.ReadRune()
	if err != nil {
		return 0, err
	}
	if c == '\n' {
		l.line++
	}
	return c, nil
}

func (l *lexer) unread(c rune) {
	_ = l.r.UnreadRune()
	if c == '\n' {
		l.line--
	}
}

// putBack makes the next call to next return tok again.
func (l *lexer) putBack(tok token) {
	l.back = tok
	l.hasBack = true
}

func isSymbolRune(c rune) bool {
	return c == '_' || c >= utf8.RuneSelf || (c >= '0' && c <= '9') ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// next returns the next token.
func (l *lexer) next() (token, error) {
	if l.hasBack {
		l.hasBack = false
		return l.back, nil
	}

	for {
		c, err := l.read()
		if errors.Is(err, io.EOF) {
			return token{kind: tokEOF, line: l.line}, nil
		}
		if err != nil {
			return token{}, err
		}

		switch {
		case c == '#':
			if err := l.skipComment(); err != nil {
				return token{}, err
			}
		case unicode.IsSpace(c):
		case c == '{':
			return token{kind: tokOpenBrace, line: l.line}, nil
		case c == '}':
			return token{kind: tokCloseBrace, line: l.line}, nil
		case c == '"':
			return l.lexString()
		case c == '-' || (c >= '0' && c <= '9'):
			l.unread(c)
			return l.lexNumber()
		case isSymbolRune(c):
			l.unread(c)
			return l.lexSymbol()
		default:
			return token{}, l.errorf(l.line, "Neatendita signo ‘%c’", c)
		}
	}
}

func (l *lexer) skipComment() error {
	for {
		c, err := l.read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if c == '\n' {
			return nil
		}
	}
}

func (l *lexer) lexSymbol() (token, error) {
	line := l.line
	var b strings.Builder
	for {
		c, err := l.read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return token{}, err
		}
		if !isSymbolRune(c) {
			l.unread(c)
			break
		}
		b.WriteRune(c)
	}
	text := b.String()
	if !utf8.ValidString(text) {
		return token{}, l.errorf(line, "Invalid UTF-8")
	}
	if keywords[text] {
		return token{kind: tokKeyword, text: text, line: line}, nil
	}
	return token{kind: tokSymbol, text: text, line: line}, nil
}

// lexNumber reads an integer. Underscores may group digits.
func (l *lexer) lexNumber() (token, error) {
	line := l.line
	var b strings.Builder
	for {
		c, err := l.read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return token{}, err
		}
		if !isSymbolRune(c) && c != '-' {
			l.unread(c)
			break
		}
		if c != '_' {
			b.WriteRune(c)
		}
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return token{}, l.errorf(line, "Nevalida numero")
	}
	return token{kind: tokNumber, num: n, line: line}, nil
}

// lexString reads a quoted string and normalizes its white space: runs of
// spaces become one space, a single line break is a space, and two or more
// line breaks are kept as that many newlines.
func (l *lexer) lexString() (token, error) {
	start := l.line
	var b strings.Builder
	spaces, newlines := 0, 0

	flush := func() {
		if b.Len() == 0 {
			spaces, newlines = 0, 0
			return
		}
		switch {
		case newlines >= 2:
			b.WriteString(strings.Repeat("\n", newlines))
		case newlines == 1 || spaces > 0:
			b.WriteByte(' ')
		}
		spaces, newlines = 0, 0
	}

	for {
		c, err := l.read()
		if errors.Is(err, io.EOF) {
			return token{}, l.errorf(start, "Senfina teksto")
		}
		if err != nil {
			return token{}, err
		}

		switch {
		case c == '"':
			return token{kind: tokString, text: b.String(), line: start}, nil
		case c == '\n':
			newlines++
		case unicode.IsSpace(c):
			spaces++
		case c == '\\':
			esc, err := l.read()
			if errors.Is(err, io.EOF) {
				return token{}, l.errorf(start, "Senfina teksto")
			}
			if err != nil {
				return token{}, err
			}
			if esc != '"' && esc != '\\' {
				return token{}, l.errorf(l.line, "Nevalida eskapsekvenco")
			}
			flush()
			b.WriteRune(esc)
		default:
			flush()
			b.WriteRune(c)
		}
	}
}
