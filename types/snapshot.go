package types

import (
	"errors"
	"fmt"
	"time"
)

// Section names one restorable slice of live state.
type Section string

const (
	SectionValues   Section = "values"
	SectionRegistry Section = "registry"
	SectionProfiles Section = "profiles"
)

// SnapshotType selects which sections a snapshot captures.
type SnapshotType string

const (
	SnapshotTypeValues   SnapshotType = "values"
	SnapshotTypeRegistry SnapshotType = "registry"
	SnapshotTypeProfiles SnapshotType = "profiles"
	SnapshotTypeFull     SnapshotType = "full"
)

var ErrUnknownSnapshotType = errors.New("unknown snapshot type")

// restore order, values before registry before profiles
var fullSections = []Section{SectionValues, SectionRegistry, SectionProfiles}

// Sections returns the ordered sections this type captures and restores.
func (t SnapshotType) Sections() []Section {
	switch t {
	case SnapshotTypeValues:
		return []Section{SectionValues}
	case SnapshotTypeRegistry:
		return []Section{SectionRegistry}
	case SnapshotTypeProfiles:
		return []Section{SectionProfiles}
	case SnapshotTypeFull:
		return fullSections
	}
	return nil
}

// Includes reports whether the type captures the given section.
func (t SnapshotType) Includes(s Section) bool {
	for _, sec := range t.Sections() {
		if sec == s {
			return true
		}
	}
	return false
}

// Validate checks the type is one of the known variants.
func (t SnapshotType) Validate() error {
	if t.Sections() == nil {
		return fmt.Errorf("%w: %q", ErrUnknownSnapshotType, string(t))
	}
	return nil
}

// ParseSnapshotType parses a snapshot type as supplied on the command line.
func ParseSnapshotType(s string) (SnapshotType, error) {
	t := SnapshotType(s)
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t, nil
}

// SnapshotPayload holds full row sets for the captured sections. Sections
// outside the snapshot's type are nil.
type SnapshotPayload struct {
	Values   []ValueRecord   `json:"values,omitempty"`
	Players  []Player        `json:"players,omitempty"`
	Profiles []LeagueProfile `json:"profiles,omitempty"`
}

// Rows returns the row set size for the given section.
func (p SnapshotPayload) Rows(s Section) int {
	switch s {
	case SectionValues:
		return len(p.Values)
	case SectionRegistry:
		return len(p.Players)
	case SectionProfiles:
		return len(p.Profiles)
	}
	return 0
}

// Snapshot is one retention-bounded capture of system state. Read only once
// created, removed by retention cleanup or explicit operator action.
type Snapshot struct {
	ID        string          `db:"id"`
	Type      SnapshotType    `db:"snapshot_type"`
	Epoch     Epoch           `db:"epoch"`
	Payload   SnapshotPayload `db:"payload"`
	Stats     map[string]int  `db:"stats"`
	Size      int             `db:"size_bytes"`
	CreatedAt time.Time       `db:"created_at"`
	ExpiresAt time.Time       `db:"expires_at"`
}

// Expired reports whether the snapshot is past its retention window.
func (s Snapshot) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}

// StorageStatistics aggregates snapshot storage for operational visibility.
type StorageStatistics struct {
	TotalCount int
	TotalBytes int64
	ByType     map[SnapshotType]TypeStatistics
}

// TypeStatistics is the per-type slice of StorageStatistics.
type TypeStatistics struct {
	Count  int
	Bytes  int64
	Oldest time.Time
	Newest time.Time
}
