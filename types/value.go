package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Scope identifies the valuation horizon a value was computed for.
type Scope string

const (
	ScopeDynasty Scope = "dynasty"
	ScopeRedraft Scope = "redraft"
)

// Format identifies the league format a value was computed for.
type Format string

const (
	Format1QB       Format = "1qb"
	FormatSuperflex Format = "superflex"
)

// ValueRecord is one computed value row, keyed on (asset, scope, format).
// The value computation component owns these rows, this subsystem only ever
// reads them, or replaces the whole table during a restore.
type ValueRecord struct {
	AssetID        string            `db:"asset_id"`
	Scope          Scope             `db:"scope"`
	Format         Format            `db:"format"`
	Value          decimal.Decimal   `db:"value"`
	PositionalRank int               `db:"positional_rank"`
	OverallRank    int               `db:"overall_rank"`
	Tier           int               `db:"tier"`
	Metadata       map[string]string `db:"metadata"`
	UpdatedAt      time.Time         `db:"updated_at"`
}

// HasValue reports whether a computed value has been populated for the row.
// The ledger only versions rows that have one.
func (v ValueRecord) HasValue() bool {
	return !v.Value.IsZero() || v.OverallRank > 0
}

// Player is one asset registry row: a player or a draft pick.
type Player struct {
	AssetID  string            `db:"asset_id"`
	Name     string            `db:"name"`
	Position string            `db:"position"`
	Team     string            `db:"team"`
	Age      int               `db:"age"`
	Status   string            `db:"status"`
	Metadata map[string]string `db:"metadata"`
}

// LeagueProfile is one imported league configuration row.
type LeagueProfile struct {
	LeagueID string            `db:"league_id"`
	Name     string            `db:"name"`
	Format   Format            `db:"format"`
	Scoring  map[string]string `db:"scoring"`
	Roster   map[string]string `db:"roster"`
}
