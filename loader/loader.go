// Package loader builds game definitions from files. Three formats are
// understood: the legacy binary format, which starts with Magic; the
// Esperanto source language handled by the compiler package; and Lua
// scripts using the Room/Object/Monster/Rule constructors.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nathoo/aventuro/compiler"
	"github.com/nathoo/aventuro/types"
	"go.uber.org/zap"
)

// Option configures a load.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets the logger used for debug output and game warnings.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// IsBinary reports whether r starts with the binary game marker. The read
// position is left at the start of the stream.
func IsBinary(r io.ReadSeeker) (bool, error) {
	buf := make([]byte, len(Magic))
	_, err := io.ReadFull(r, buf)
	if _, serr := r.Seek(0, io.SeekStart); serr != nil {
		return false, serr
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return bytes.Equal(buf, []byte(Magic)), nil
}

// Load reads the game at path in whichever format it is in, validates it
// and returns the immutable definition. Directories and .lua files are run
// as Lua; other files are binary if they start with Magic and source text
// otherwise.
func Load(path string, opts ...Option) (*types.Definition, error) {
	o := newOptions(opts)

	def, err := load(path, opts)
	if err != nil {
		return nil, err
	}
	if err := validate(def, o.logger.With(zap.String("path", path))); err != nil {
		return nil, fmt.Errorf("validating %s: %w", path, err)
	}
	return def, nil
}

func load(path string, opts []Option) (*types.Definition, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() || filepath.Ext(path) == ".lua" {
		return LoadLua(path, opts...)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	binary, err := IsBinary(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if binary {
		def, err := LoadAVT(f, opts...)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		return def, nil
	}

	def, err := compiler.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", path, err)
	}
	return def, nil
}
