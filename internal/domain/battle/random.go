package battle

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"
)

// RandomSource yields uniform draws in [0, 1).
type RandomSource interface {
	Float64() float64
}

// FixedSource always returns the same draw.
type FixedSource float64

// Float64 returns f.
func (f FixedSource) Float64() float64 { return float64(f) }

// lockedSource serialises access to a math/rand generator.
type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomSource returns a seeded source. A zero seed is replaced with one
// read from crypto/rand.
func NewRandomSource(seed int64) (RandomSource, error) {
	if seed == 0 {
		s, err := NewSeed()
		if err != nil {
			return nil, err
		}
		seed = s
	}
	//nolint:gosec // battle draws are not security sensitive.
	return &lockedSource{rng: rand.New(rand.NewSource(seed))}, nil
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
