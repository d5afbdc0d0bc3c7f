package id

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func TestRunGenerator_NewID(t *testing.T) {
	t.Parallel()

	gen := &RunGenerator{
		now:    func() time.Time { return time.Date(2025, 11, 5, 10, 15, 0, 0, time.FixedZone("WIB", 7*3600)) },
		random: bytes.NewReader([]byte{0x9f, 0x1c, 0x2a, 0x7e}),
	}
	got, err := gen.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	if got != "20251105T031500Z-9f1c2a7e" {
		t.Fatalf("unexpected id: %s", got)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestRunGenerator_RandomFailure(t *testing.T) {
	t.Parallel()

	gen := &RunGenerator{now: time.Now, random: failingReader{}}
	if _, err := gen.NewID(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestRunGenerator_Unique(t *testing.T) {
	t.Parallel()

	gen := NewRunGenerator()
	first, err := gen.NewID()
	if err != nil {
		t.Fatalf("first id: %v", err)
	}
	second, err := gen.NewID()
	if err != nil {
		t.Fatalf("second id: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct ids, got %s twice", first)
	}
}
