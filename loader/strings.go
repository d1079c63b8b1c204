package loader

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	textOffset    = 0xca80
	textChunkSize = 128

	pointersOffset = 0xac96
	pointerSize    = 4
	maxPointers    = 1000
)

// codePage maps the bytes the format uses for the accented letters.
var codePage = map[byte]rune{
	0x92: 'ĥ',
	0xa5: 'ŝ',
	0x90: 'ĝ',
	0x80: 'ĉ',
	0x96: 'ĵ',
	0x97: 'ŭ',
	0x99: 'Ĥ',
	0xa7: 'Ŝ',
	0x91: 'Ĝ',
	0x8e: 'Ĉ',
	0x9a: 'Ŭ',
}

// decodeChunk converts bytes in the game's code page to UTF-8. Only the
// accented letters and printable ASCII other than '@' are allowed.
func decodeChunk(chunk []byte) (string, error) {
	var b strings.Builder
	b.Grow(len(chunk))
	for _, c := range chunk {
		if r, ok := codePage[c]; ok {
			b.WriteRune(r)
			continue
		}
		if c == '@' || c < 32 || c >= 128 {
			return "", loadErrorf(InvalidString, "Invalid string chunk encountered")
		}
		b.WriteByte(c)
	}
	return b.String(), nil
}

// extractString decodes a length-prefixed string stored in a field with
// room for max bytes.
func extractString(field []byte, max int) (string, error) {
	n := int(field[0])
	if n > max {
		return "", loadErrorf(InvalidString, "String too long for the space")
	}
	return decodeChunk(field[1 : 1+n])
}

// countStrings returns how many strings the file declares by scanning the
// far pointer table up to its zero terminator. The pointers themselves are
// not used.
func countStrings(r io.ReadSeeker) (int, error) {
	recs, err := readRecords(r, pointersOffset, pointerSize, maxPointers, func(rec []byte) bool {
		return rec[0] == 0 && rec[1] == 0 && rec[2] == 0 && rec[3] == 0
	})
	if err != nil {
		return 0, err
	}
	return len(recs), nil
}

// readStrings reads n strings from the text pages. Each page holds a length
// byte and up to 127 bytes of text; a string ends on a page whose last byte
// is '@', and may span any number of pages.
func readStrings(r io.ReadSeeker, n int) ([]string, error) {
	if _, err := r.Seek(textOffset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking to text: %w", err)
	}

	out := make([]string, 0, n)
	var cur strings.Builder
	page := make([]byte, textChunkSize)

	for len(out) < n {
		_, err := io.ReadFull(r, page)
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, loadErrorf(InvalidString, "Incomplete string chunk encountered")
		}
		if err != nil {
			return nil, fmt.Errorf("reading text: %w", err)
		}

		length := int(page[0])
		if length < 1 || length >= textChunkSize {
			return nil, loadErrorf(InvalidString, "Invalid string chunk encountered")
		}

		end := false
		if page[length] == '@' {
			end = true
			length--
			for length > 0 && page[length] == ' ' {
				length--
			}
		}

		s, err := decodeChunk(page[1 : length+1])
		if err != nil {
			return nil, err
		}
		cur.WriteString(s)

		if end {
			out = append(out, cur.String())
			cur.Reset()
		}
	}

	if len(out) < n {
		return nil, loadErrorf(InvalidString, "The file has %d strings but declares %d", len(out), n)
	}
	return out, nil
}
