// Package random supplies seeds for the racers' pseudo-random generators.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"
)

// NewSeed returns a seed read from crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Sequence returns a seed source yielding base, base+1, base+2, ...
// A race seeded from a sequence replays the same speeds.
func Sequence(base int64) func() (int64, error) {
	var (
		mu   sync.Mutex
		next = base
	)
	return func() (int64, error) {
		mu.Lock()
		defer mu.Unlock()
		s := next
		next++
		return s, nil
	}
}
