package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/nathoo/aventuro/engine/resolve"
	"github.com/nathoo/aventuro/engine/save"
)

// Snapshot captures the session for saving.
func (e *Engine) Snapshot() *save.SaveData {
	return &save.SaveData{
		Version:     save.Version,
		Game:        e.def.Name,
		Session:     e.session,
		Turn:        e.turn,
		Score:       e.score,
		RNGSeed:     e.rng.Seed(),
		RNGPosition: e.rng.Position(),
		CommandLog:  append([]string(nil), e.commandLog...),
		World:       save.Capture(e.state),
	}
}

// Restore replaces the session with a saved one. On error the engine is
// left unchanged. Pending messages are dropped.
func (e *Engine) Restore(sd *save.SaveData) error {
	if sd.Game != e.def.Name {
		return fmt.Errorf("save is for %q, not %q: %w", sd.Game, e.def.Name, save.ErrMismatch)
	}
	s, err := sd.World.Restore(e.def)
	if err != nil {
		return fmt.Errorf("restoring save: %w", err)
	}
	rng, err := RestoreRNG(sd.RNGSeed, sd.RNGPosition)
	if err != nil {
		return fmt.Errorf("restoring save: %w", err)
	}

	e.state = s
	e.seed = sd.RNGSeed
	e.rng = rng
	e.turn = sd.Turn
	e.score = sd.Score
	e.commandLog = append([]string(nil), sd.CommandLog...)
	e.mentions = resolve.NewMentions()
	e.queue.Clear()
	e.events.Reset()

	e.log.Debug("save restored",
		zap.String("saved_session", sd.Session),
		zap.Int("turn", sd.Turn),
	)
	return nil
}
