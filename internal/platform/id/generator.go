package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"time"
)

// Generator creates opaque IDs suitable for external references.
type Generator interface {
	NewID() (string, error)
}

// RunGenerator creates sortable build run ids: a UTC timestamp followed by a
// random suffix, e.g. 20251105T101500Z-9f1c2a7e.
type RunGenerator struct {
	now    func() time.Time
	random io.Reader
}

func NewRunGenerator() *RunGenerator {
	return &RunGenerator{now: time.Now, random: rand.Reader}
}

func (g *RunGenerator) NewID() (string, error) {
	buf := make([]byte, 4)
	if _, err := io.ReadFull(g.random, buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	return g.now().UTC().Format("20060102T150405Z") + "-" + hex.EncodeToString(buf), nil
}

// Static always returns the same id. Tests use it to pin run ids.
type Static string

func (s Static) NewID() (string, error) {
	return string(s), nil
}
