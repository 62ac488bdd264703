package types

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Epoch names one versioning event. Epochs are derived from a UTC timestamp
// so they sort lexically in creation order, and are immutable once written.
type Epoch string

const epochTimeLayout = "20060102150405"

var ErrInvalidEpoch = errors.New("invalid epoch identifier")

// NewEpochAt derives the epoch identifier for the given time, at second
// resolution.
func NewEpochAt(t time.Time) Epoch {
	return Epoch("v" + t.UTC().Format(epochTimeLayout))
}

// Time parses the timestamp the epoch was derived from.
func (e Epoch) Time() (time.Time, error) {
	s := string(e)
	if len(s) != len(epochTimeLayout)+1 || s[0] != 'v' {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidEpoch, s)
	}
	t, err := time.Parse(epochTimeLayout, s[1:])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidEpoch, s)
	}
	return t, nil
}

// Validate checks the identifier is well formed.
func (e Epoch) Validate() error {
	_, err := e.Time()
	return err
}

// EpochGenerator hands out strictly increasing epoch identifiers. When two
// calls land within the same second the second one is bumped into the
// future, so identifiers stay unique and lexically ordered within a process.
type EpochGenerator struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

// NewEpochGenerator returns a generator using the wall clock.
func NewEpochGenerator() *EpochGenerator {
	return &EpochGenerator{now: time.Now}
}

// NewEpochGeneratorWithClock returns a generator with an injectable clock,
// for tests.
func NewEpochGeneratorWithClock(now func() time.Time) *EpochGenerator {
	return &EpochGenerator{now: now}
}

// Next returns the next epoch identifier.
func (g *EpochGenerator) Next() Epoch {
	g.mu.Lock()
	defer g.mu.Unlock()

	t := g.now().UTC().Truncate(time.Second)
	if !t.After(g.last) {
		t = g.last.Add(time.Second)
	}
	g.last = t
	return NewEpochAt(t)
}
