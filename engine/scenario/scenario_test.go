package scenario

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nathoo/aventuro/compiler"
	"github.com/nathoo/aventuro/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	def, err := compiler.ParseFile(filepath.Join("testdata", "kaverno.avs"))
	require.NoError(t, err)
	return engine.New(def, engine.WithSeed(1))
}

func TestScripts(t *testing.T) {
	scripts, err := filepath.Glob(filepath.Join("testdata", "*.txt"))
	require.NoError(t, err)
	require.NotEmpty(t, scripts)

	for _, path := range scripts {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			f, err := os.Open(path)
			require.NoError(t, err)
			defer f.Close()

			if err := Run(newEngine(t), f); err != nil {
				t.Errorf("%s: %v", path, err)
			}
		})
	}
}

func TestRun_Failures(t *testing.T) {
	intro := "Vi vekiĝas antaŭ kaverno.\nVi staras antaŭ malhela kaverno.\nĈi tie estas malnova lampo kaj skatolo.\n"
	tests := []struct {
		name   string
		script string
		line   int
		msg    string
	}{
		{
			name:   "wrong message",
			script: "Vi dormas.",
			line:   1,
			msg:    "\n expected: Vi dormas.\n received: Vi vekiĝas antaŭ kaverno.",
		},
		{
			name:   "unread message before command",
			script: "Vi vekiĝas antaŭ kaverno.\n> n",
			line:   2,
			msg:    "unexpected message: Vi staras antaŭ malhela kaverno.",
		},
		{
			name:   "missing message",
			script: intro + "Plia mesaĝo.",
			line:   4,
			msg:    "expected message but none received",
		},
		{
			name:   "leftover messages",
			script: "# nur komento",
			msg:    "extra message received after script: Vi vekiĝas antaŭ kaverno.",
		},
		{
			name:   "wrong room",
			script: intro + "@room Kaverno",
			line:   4,
			msg:    "wrong room\n expected: Kaverno\n received: Enirejo",
		},
		{
			name:   "not over",
			script: intro + "@game_over",
			line:   4,
			msg:    "game over expected but not reported",
		},
		{
			name:   "bad random",
			script: intro + "@random multe",
			line:   4,
		},
		{
			name:   "unknown command",
			script: intro + "@dormu",
			line:   4,
			msg:    `unknown test command "dormu"`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := Run(newEngine(t), strings.NewReader(tt.script))
			var f *Failure
			require.True(t, errors.As(err, &f), "Run error = %v, want *Failure", err)
			assert.Equal(t, tt.line, f.Line)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, f.Msg)
			}
		})
	}
}

func TestFailure_Error(t *testing.T) {
	assert.Equal(t, "line 3: oops", (&Failure{Line: 3, Msg: "oops"}).Error())
	assert.Equal(t, "oops", (&Failure{Msg: "oops"}).Error())
}
