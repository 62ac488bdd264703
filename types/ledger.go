package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// VersionedValueEntry is one value row frozen under an epoch. Entries are
// append only, at most one exists per (epoch, asset, scope).
type VersionedValueEntry struct {
	Epoch          Epoch             `db:"epoch"`
	AssetID        string            `db:"asset_id"`
	Scope          Scope             `db:"scope"`
	Value          decimal.Decimal   `db:"value"`
	PositionalRank int               `db:"positional_rank"`
	OverallRank    int               `db:"overall_rank"`
	Tier           int               `db:"tier"`
	Metadata       map[string]string `db:"metadata"`
	CreatedAt      time.Time         `db:"created_at"`
}

// ChecksumKind names what a checksum record covers.
type ChecksumKind string

const (
	// ChecksumKindValues covers the versioned value set of one epoch.
	ChecksumKindValues ChecksumKind = "values"
)

// ChecksumRecord pairs an epoch with the digest of its value set. The hash
// is reproducible from the versioned entries alone.
type ChecksumRecord struct {
	Kind      ChecksumKind `db:"kind"`
	Epoch     Epoch        `db:"epoch"`
	Hash      string       `db:"hash"`
	RowCount  int          `db:"row_count"`
	CreatedAt time.Time    `db:"created_at"`
}

// EpochResult reports one successful ledger write.
type EpochResult struct {
	Epoch        Epoch
	RowsInserted int
	Checksum     string
	Timestamp    time.Time
}
