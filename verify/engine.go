// Package verify audits versioned history after the fact: it recomputes
// epoch checksums against their stored records, diffs the value sets of two
// epochs and derives per asset volatility from an asset's own history.
package verify

import (
	"context"
	"sort"

	"github.com/dynastyops/valuekeeper/checksum"
	"github.com/dynastyops/valuekeeper/logging"
	"github.com/dynastyops/valuekeeper/types"

	"github.com/shopspring/decimal"
)

const namedLogger = "verify"

// maxChanges caps the change detail returned by CompareEpochs. The counts
// always cover the full diff.
const maxChanges = 100

// VersionedStore reads frozen entries out of versioned history.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/mocks.go -package mocks github.com/dynastyops/valuekeeper/verify VersionedStore,ChecksumStore
type VersionedStore interface {
	ReadByEpoch(ctx context.Context, epoch types.Epoch) ([]types.VersionedValueEntry, error)
	ReadAssetHistory(ctx context.Context, assetID string, scope types.Scope, window int) ([]types.VersionedValueEntry, error)
}

// ChecksumStore reads stored checksum records, nil on miss.
type ChecksumStore interface {
	GetByEpoch(ctx context.Context, epoch types.Epoch) (*types.ChecksumRecord, error)
}

// Engine is the integrity verifier.
type Engine struct {
	Config
	log *logging.Logger

	versioned VersionedStore
	checksums ChecksumStore
}

// New returns the verifier engine.
func New(log *logging.Logger, cfg Config, versioned VersionedStore, checksums ChecksumStore) *Engine {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	return &Engine{
		Config:    cfg,
		log:       log,
		versioned: versioned,
		checksums: checksums,
	}
}

// ReloadConf updates the engine configuration.
func (e *Engine) ReloadConf(cfg Config) {
	e.log.Info("reloading configuration")
	if e.log.GetLevel() != cfg.Level.Get() {
		e.log.Info("updating log level",
			logging.String("old", e.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		e.log.SetLevel(cfg.Level.Get())
	}
	e.Config = cfg
}

// VerifyChecksum recomputes the digest of an epoch's versioned entries and
// compares it against the stored checksum record. A missing record means
// the epoch cannot be verified, that is reported as false, never as valid.
// Store failures are returned, they say nothing about integrity.
func (e *Engine) VerifyChecksum(ctx context.Context, epoch types.Epoch) (bool, error) {
	if err := epoch.Validate(); err != nil {
		return false, err
	}

	rec, err := e.checksums.GetByEpoch(ctx, epoch)
	if err != nil {
		return false, err
	}
	if rec == nil {
		e.log.Warn("no checksum record for epoch, cannot verify",
			logging.String("epoch", string(epoch)),
		)
		return false, nil
	}

	entries, err := e.versioned.ReadByEpoch(ctx, epoch)
	if err != nil {
		return false, err
	}

	pairs := make([]checksum.Pair, 0, len(entries))
	for _, en := range entries {
		pairs = append(pairs, checksum.Pair{AssetID: en.AssetID, Value: en.Value})
	}

	recomputed := checksum.Sum(pairs)
	if recomputed != rec.Hash {
		e.log.Error("checksum mismatch",
			logging.String("epoch", string(epoch)),
			logging.String("stored", rec.Hash),
			logging.String("recomputed", recomputed),
			logging.Int("rows", len(entries)),
		)
		return false, nil
	}

	if e.log.IsDebug() {
		e.log.Debug("checksum verified",
			logging.String("epoch", string(epoch)),
			logging.Int("rows", len(entries)),
		)
	}
	return true, nil
}

type assetKey struct {
	assetID string
	scope   types.Scope
}

// CompareEpochs diffs the value sets of two epochs. Every row is classified
// as added, removed, changed or unchanged against its (asset, scope) peer.
// The change detail lists the largest moves by absolute delta, descending,
// capped to keep the result bounded on full table churn.
func (e *Engine) CompareEpochs(ctx context.Context, epochA, epochB types.Epoch) (*types.EpochComparison, error) {
	if err := epochA.Validate(); err != nil {
		return nil, err
	}
	if err := epochB.Validate(); err != nil {
		return nil, err
	}

	entriesA, err := e.versioned.ReadByEpoch(ctx, epochA)
	if err != nil {
		return nil, err
	}
	entriesB, err := e.versioned.ReadByEpoch(ctx, epochB)
	if err != nil {
		return nil, err
	}

	valuesA := make(map[assetKey]decimal.Decimal, len(entriesA))
	for _, en := range entriesA {
		valuesA[assetKey{en.AssetID, en.Scope}] = en.Value
	}

	cmp := &types.EpochComparison{EpochA: epochA, EpochB: epochB}
	changes := make([]types.ValueChange, 0, len(entriesB))

	seen := make(map[assetKey]struct{}, len(entriesB))
	for _, en := range entriesB {
		key := assetKey{en.AssetID, en.Scope}
		seen[key] = struct{}{}

		old, ok := valuesA[key]
		if !ok {
			cmp.Added++
			continue
		}
		if old.Equal(en.Value) {
			cmp.Unchanged++
			continue
		}
		cmp.Changed++
		changes = append(changes, types.ValueChange{
			AssetID:  en.AssetID,
			Scope:    en.Scope,
			OldValue: old,
			NewValue: en.Value,
			Change:   en.Value.Sub(old),
		})
	}
	for key := range valuesA {
		if _, ok := seen[key]; !ok {
			cmp.Removed++
		}
	}

	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Change.Abs().GreaterThan(changes[j].Change.Abs())
	})
	if len(changes) > maxChanges {
		changes = changes[:maxChanges]
	}
	cmp.Changes = changes

	return cmp, nil
}

// Volatility derives movement statistics from the last window epochs of one
// asset: largest single step rise, largest single step fall, both as
// magnitudes, and the mean absolute step. Fewer than two epochs of history
// yields a zeroed report.
func (e *Engine) Volatility(ctx context.Context, assetID string, scope types.Scope, window int) (*types.VolatilityReport, error) {
	if window <= 0 {
		window = e.VolatilityWindow
	}

	history, err := e.versioned.ReadAssetHistory(ctx, assetID, scope, window)
	if err != nil {
		return nil, err
	}

	// oldest first so steps read forward in time
	sort.Slice(history, func(i, j int) bool {
		return history[i].Epoch < history[j].Epoch
	})

	report := &types.VolatilityReport{
		AssetID: assetID,
		Scope:   scope,
		Epochs:  len(history),
	}
	if len(history) < 2 {
		return report, nil
	}

	sum := decimal.Zero
	for i := 1; i < len(history); i++ {
		step := history[i].Value.Sub(history[i-1].Value)
		if step.IsPositive() && step.GreaterThan(report.MaxRise) {
			report.MaxRise = step
		}
		if step.IsNegative() && step.Neg().GreaterThan(report.MaxFall) {
			report.MaxFall = step.Neg()
		}
		sum = sum.Add(step.Abs())
	}
	report.Volatility = sum.Div(decimal.NewFromInt(int64(len(history) - 1)))

	return report, nil
}
