package engine

import (
	"errors"
	"testing"

	"github.com/nathoo/aventuro/engine/save"
)

func TestRNG_Deterministic(t *testing.T) {
	rng1 := NewRNG(42)
	rng2 := NewRNG(42)

	for i := 0; i < 20; i++ {
		a := rng1.Percent()
		b := rng2.Percent()
		if a != b {
			t.Fatalf("draw %d: got %d and %d from same seed", i, a, b)
		}
	}
}

func TestRNG_Percent_Range(t *testing.T) {
	rng := NewRNG(99)

	for i := 0; i < 1000; i++ {
		r := rng.Percent()
		if r < 0 || r > 99 {
			t.Fatalf("draw out of range [0,99]: got %d", r)
		}
	}
}

func TestRNG_Force(t *testing.T) {
	rng := NewRNG(7)
	rng.Force(42)

	for i := 0; i < 5; i++ {
		if r := rng.Percent(); r != 42 {
			t.Fatalf("forced draw = %d, want 42", r)
		}
	}
	if rng.Position() != 0 {
		t.Errorf("forced draws advanced position to %d", rng.Position())
	}

	rng.Force(-1)
	rng.Percent()
	if rng.Position() != 1 {
		t.Errorf("Position = %d after one real draw, want 1", rng.Position())
	}
}

func TestRNG_Position(t *testing.T) {
	rng := NewRNG(42)

	if rng.Position() != 0 {
		t.Fatalf("initial position = %d, want 0", rng.Position())
	}
	for i := 0; i < 5; i++ {
		rng.Percent()
	}
	if rng.Position() != 5 {
		t.Errorf("Position = %d, want 5", rng.Position())
	}
	if rng.Seed() != 42 {
		t.Errorf("Seed = %d, want 42", rng.Seed())
	}
}

func TestRestoreRNG(t *testing.T) {
	original := NewRNG(42)
	for i := 0; i < 10; i++ {
		original.Percent()
	}

	restored, err := RestoreRNG(42, original.Position())
	if err != nil {
		t.Fatalf("RestoreRNG: %v", err)
	}
	if restored.Position() != original.Position() {
		t.Fatalf("restored position = %d, want %d", restored.Position(), original.Position())
	}

	for i := 0; i < 20; i++ {
		a := original.Percent()
		b := restored.Percent()
		if a != b {
			t.Fatalf("after restore, draw %d: original=%d restored=%d", i, a, b)
		}
	}
}

func TestRestoreRNG_BadPosition(t *testing.T) {
	for _, pos := range []int64{-1, maxRNGPosition + 1} {
		if _, err := RestoreRNG(42, pos); !errors.Is(err, save.ErrMismatch) {
			t.Errorf("RestoreRNG(42, %d) error = %v, want ErrMismatch", pos, err)
		}
	}
}
