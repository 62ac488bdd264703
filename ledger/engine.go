// Package ledger appends recomputed value sets into versioned history. Every
// successful record produces one immutable epoch of entries plus a checksum
// record reproducible from those entries alone.
package ledger

import (
	"context"
	"time"

	"github.com/dynastyops/valuekeeper/checksum"
	"github.com/dynastyops/valuekeeper/logging"
	"github.com/dynastyops/valuekeeper/metrics"
	"github.com/dynastyops/valuekeeper/types"
)

const namedLogger = "ledger"

// ValueSource reads the live computed value set.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/mocks.go -package mocks github.com/dynastyops/valuekeeper/ledger ValueSource,VersionedStore,ChecksumStore
type ValueSource interface {
	ReadComputed(ctx context.Context) ([]types.ValueRecord, error)
}

// VersionedStore appends entries into versioned history.
type VersionedStore interface {
	BulkInsert(ctx context.Context, entries []types.VersionedValueEntry) error
}

// ChecksumStore persists one checksum record per ledger write.
type ChecksumStore interface {
	Insert(ctx context.Context, rec types.ChecksumRecord) error
}

// Engine is the epoch ledger recorder.
type Engine struct {
	Config
	log *logging.Logger

	values    ValueSource
	versioned VersionedStore
	checksums ChecksumStore

	epochs *types.EpochGenerator
	now    func() time.Time
}

// New returns the ledger engine.
func New(log *logging.Logger, cfg Config, values ValueSource, versioned VersionedStore, checksums ChecksumStore) *Engine {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	return &Engine{
		Config:    cfg,
		log:       log,
		values:    values,
		versioned: versioned,
		checksums: checksums,
		epochs:    types.NewEpochGenerator(),
		now:       time.Now,
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

// Record freezes the current value set under a new epoch. A caller supplied
// epoch is used when given, otherwise one is generated. Recoverable
// conditions, a failed read or an empty value set, are logged and reported
// as a nil result with no error, the live value table is never mutated
// either way. A failed append is returned to the caller, nothing retries
// here.
func (e *Engine) Record(ctx context.Context, epochs ...types.Epoch) (*types.EpochResult, error) {
	epoch, err := e.pickEpoch(epochs)
	if err != nil {
		return nil, err
	}

	records, err := e.values.ReadComputed(ctx)
	if err != nil {
		e.log.Warn("could not read the computed value set, skipping this epoch",
			logging.String("epoch", string(epoch)),
			logging.Error(err),
		)
		return nil, nil
	}
	if len(records) == 0 {
		e.log.Warn("no computed values to record, skipping this epoch",
			logging.String("epoch", string(epoch)),
		)
		return nil, nil
	}

	now := e.now()
	entries := make([]types.VersionedValueEntry, 0, len(records))
	pairs := make([]checksum.Pair, 0, len(records))
	for _, r := range records {
		entries = append(entries, types.VersionedValueEntry{
			Epoch:          epoch,
			AssetID:        r.AssetID,
			Scope:          r.Scope,
			Value:          r.Value,
			PositionalRank: r.PositionalRank,
			OverallRank:    r.OverallRank,
			Tier:           r.Tier,
			Metadata:       r.Metadata,
			CreatedAt:      now,
		})
		pairs = append(pairs, checksum.Pair{AssetID: r.AssetID, Value: r.Value})
	}

	if err := e.versioned.BulkInsert(ctx, entries); err != nil {
		e.log.Error("failed to append versioned entries",
			logging.String("epoch", string(epoch)),
			logging.Int("rows", len(entries)),
			logging.Error(err),
		)
		return nil, err
	}

	hash := checksum.Sum(pairs)
	rec := types.ChecksumRecord{
		Kind:      types.ChecksumKindValues,
		Epoch:     epoch,
		Hash:      hash,
		RowCount:  len(entries),
		CreatedAt: now,
	}
	if err := e.checksums.Insert(ctx, rec); err != nil {
		e.log.Error("versioned entries written but checksum record failed",
			logging.String("epoch", string(epoch)),
			logging.Error(err),
		)
		return nil, err
	}

	metrics.EpochRecorded(len(entries))
	e.log.Info("recorded value epoch",
		logging.String("epoch", string(epoch)),
		logging.Int("rows", len(entries)),
		logging.String("checksum", hash),
	)

	return &types.EpochResult{
		Epoch:        epoch,
		RowsInserted: len(entries),
		Checksum:     hash,
		Timestamp:    now,
	}, nil
}

func (e *Engine) pickEpoch(epochs []types.Epoch) (types.Epoch, error) {
	if len(epochs) > 0 && epochs[0] != "" {
		if err := epochs[0].Validate(); err != nil {
			return "", err
		}
		return epochs[0], nil
	}
	return e.epochs.Next(), nil
}
