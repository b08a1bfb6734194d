// Package idgen provides the detection id generators injected into the
// pipeline.
package idgen

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Generator returns a new identifier on each call.
type Generator interface {
	Next() string
}

// UUID generates random version 4 UUIDs.
type UUID struct{}

func (UUID) Next() string { return uuid.NewString() }

// Sequence generates "<prefix>-0001", "<prefix>-0002", ... and is safe for
// concurrent use.
type Sequence struct {
	Prefix string

	mu sync.Mutex
	n  int
}

// NewSequence returns a sequence starting at 1.
func NewSequence(prefix string) *Sequence {
	return &Sequence{Prefix: prefix}
}

func (s *Sequence) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s-%04d", s.Prefix, s.n)
}

// Reset restarts the sequence so repeated runs produce the same ids.
func (s *Sequence) Reset() {
	s.mu.Lock()
	s.n = 0
	s.mu.Unlock()
}
