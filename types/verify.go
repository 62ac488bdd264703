package types

import "github.com/shopspring/decimal"

// ValueChange is one asset whose value differs between two epochs. Change
// is the signed delta, new minus old.
type ValueChange struct {
	AssetID  string
	Scope    Scope
	OldValue decimal.Decimal
	NewValue decimal.Decimal
	Change   decimal.Decimal
}

// EpochComparison is the field level diff between the value sets of two
// epochs. Changes holds the largest moves by absolute delta, descending,
// capped by the verifier.
type EpochComparison struct {
	EpochA Epoch
	EpochB Epoch

	Added     int
	Removed   int
	Changed   int
	Unchanged int

	Changes []ValueChange
}

// VolatilityReport summarises how much one asset's value moved over its
// recent epochs. MaxRise and MaxFall are the largest single step up and
// down, both reported as magnitudes. Volatility is the mean absolute step.
type VolatilityReport struct {
	AssetID    string
	Scope      Scope
	Epochs     int
	MaxRise    decimal.Decimal
	MaxFall    decimal.Decimal
	Volatility decimal.Decimal
}
