package loader

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const sourceGame = `nomo "Testo"
aŭtoro "Iu"
jaro "2024"

ejo halo { priskribo "Granda halo." }
ejo kelo { priskribo "Malseka kelo." }
`

func TestLoad_Formats(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		path string
		want string
	}{
		{"source", writeFile(t, dir, "testo.avt", sourceGame), "Testo"},
		{"binary", writeFile(t, dir, "halo.avt", string(validAVT())), "La halo"},
		{"lua", writeFile(t, dir, "kaverno.lua", caveGame), "Kaverno"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			def, err := Load(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, def.Name)
		})
	}
}

func TestLoad_Warnings(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	path := writeFile(t, t.TempDir(), "testo.avt", sourceGame)

	_, err := Load(path, WithLogger(zap.New(core)))
	require.NoError(t, err)

	entries := logs.FilterMessage("game warning").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "room 1 (kelo) cannot be reached", entries[0].ContextMap()["warning"])
	assert.Equal(t, path, entries[0].ContextMap()["path"])
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "nenio.avt"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "opening")
	})

	t.Run("broken binary", func(t *testing.T) {
		b := validAVT()
		b[room1North] = 9
		path := writeFile(t, dir, "rompita.avt", string(b))

		_, err := Load(path)
		var le *LoadError
		require.True(t, errors.As(err, &le))
		assert.Equal(t, InvalidRoom, le.Kind)
		assert.Contains(t, err.Error(), "loading "+path)
	})

	t.Run("bad source", func(t *testing.T) {
		path := writeFile(t, dir, "malbona.avt", "nomo\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "compiling "+path)
	})
}

func TestIsBinary(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"magic", Magic + "\x00\x00", true},
		{"magic only", Magic, true},
		{"source", sourceGame, false},
		{"short", "Aventur", false},
		{"empty", "", false},
		{"almost", strings.ToLower(Magic), false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r := bytes.NewReader([]byte(tt.input))
			got, err := IsBinary(r)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			pos, err := r.Seek(0, 1)
			require.NoError(t, err)
			assert.Zero(t, pos)
		})
	}
}
