// Package snapshot captures point in time copies of system state, values,
// the player registry, league profiles, or all three, into retention
// bounded blobs the rollback engine can restore from.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dynastyops/valuekeeper/logging"
	"github.com/dynastyops/valuekeeper/metrics"
	"github.com/dynastyops/valuekeeper/types"

	uuid "github.com/satori/go.uuid"
)

const namedLogger = "snapshot"

// ValueSource reads the full live value table.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/mocks.go -package mocks github.com/dynastyops/valuekeeper/snapshot ValueSource,RegistrySource,ProfileSource,Store
type ValueSource interface {
	ReadAll(ctx context.Context) ([]types.ValueRecord, error)
}

// RegistrySource reads the full player registry.
type RegistrySource interface {
	ReadAll(ctx context.Context) ([]types.Player, error)
}

// ProfileSource reads the full league profile table.
type ProfileSource interface {
	ReadAll(ctx context.Context) ([]types.LeagueProfile, error)
}

// Store is the snapshot persistence layer. Reads return nil on miss, never
// an error for "not found". List returns snapshots ordered by creation time
// descending. DeleteExpired is the shared expiry sweep, it covers every
// snapshot type at once.
type Store interface {
	Insert(ctx context.Context, snap types.Snapshot) error
	GetByID(ctx context.Context, id string) (*types.Snapshot, error)
	GetByEpoch(ctx context.Context, epoch types.Epoch) (*types.Snapshot, error)
	List(ctx context.Context, snapshotType *types.SnapshotType, limit int) ([]types.Snapshot, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
	StorageStats(ctx context.Context) (*types.StorageStatistics, error)
}

// Engine builds, persists and prunes snapshots.
type Engine struct {
	Config
	log *logging.Logger

	values   ValueSource
	registry RegistrySource
	profiles ProfileSource
	store    Store

	now func() time.Time
}

// New returns the snapshot engine.
func New(log *logging.Logger, cfg Config, values ValueSource, registry RegistrySource, profiles ProfileSource, store Store) *Engine {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	return &Engine{
		Config:   cfg,
		log:      log,
		values:   values,
		registry: registry,
		profiles: profiles,
		store:    store,
		now:      time.Now,
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
	if cfg.RetentionFull.Get() < cfg.RetentionValues.Get() ||
		cfg.RetentionFull.Get() < cfg.RetentionDefault.Get() {
		e.log.Warn("full snapshot retention is shorter than another type, full snapshots are the recovery path of last resort",
			logging.Duration("retention-full", cfg.RetentionFull.Get()),
		)
	}
	e.Config = cfg
}

// Create captures the sections selected by the snapshot type, persists the
// result and prunes old snapshots of that type. The epoch tag is optional,
// an empty epoch marks a snapshot not tied to one ledger write.
func (e *Engine) Create(ctx context.Context, snapshotType types.SnapshotType, epoch types.Epoch) (*types.Snapshot, error) {
	if err := snapshotType.Validate(); err != nil {
		return nil, err
	}
	if epoch != "" {
		if err := epoch.Validate(); err != nil {
			return nil, err
		}
	}

	payload, err := e.buildPayload(ctx, snapshotType)
	if err != nil {
		e.log.Error("failed to build snapshot payload",
			logging.String("type", string(snapshotType)),
			logging.Error(err),
		)
		return nil, err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("couldn't serialise snapshot payload: %w", err)
	}

	now := e.now()
	stats := map[string]int{}
	for _, sec := range snapshotType.Sections() {
		stats[string(sec)] = payload.Rows(sec)
	}

	snap := types.Snapshot{
		ID:        uuid.NewV4().String(),
		Type:      snapshotType,
		Epoch:     epoch,
		Payload:   *payload,
		Stats:     stats,
		Size:      len(raw),
		CreatedAt: now,
		ExpiresAt: now.Add(e.retentionFor(snapshotType)),
	}

	if err := e.store.Insert(ctx, snap); err != nil {
		e.log.Error("failed to persist snapshot",
			logging.String("id", snap.ID),
			logging.String("type", string(snapshotType)),
			logging.Error(err),
		)
		return nil, err
	}

	metrics.SnapshotCreated(string(snapshotType))
	e.log.Info("snapshot created",
		logging.String("id", snap.ID),
		logging.String("type", string(snapshotType)),
		logging.String("epoch", string(epoch)),
		logging.Int("size", snap.Size),
	)

	// retention is best effort, a failed cleanup never fails the capture
	if err := e.CleanupOld(ctx, snapshotType); err != nil {
		e.log.Warn("snapshot cleanup failed",
			logging.String("type", string(snapshotType)),
			logging.Error(err),
		)
	}

	return &snap, nil
}

func (e *Engine) buildPayload(ctx context.Context, snapshotType types.SnapshotType) (*types.SnapshotPayload, error) {
	payload := &types.SnapshotPayload{}
	for _, sec := range snapshotType.Sections() {
		switch sec {
		case types.SectionValues:
			rows, err := e.values.ReadAll(ctx)
			if err != nil {
				return nil, fmt.Errorf("reading value store: %w", err)
			}
			payload.Values = rows
		case types.SectionRegistry:
			rows, err := e.registry.ReadAll(ctx)
			if err != nil {
				return nil, fmt.Errorf("reading player registry: %w", err)
			}
			payload.Players = rows
		case types.SectionProfiles:
			rows, err := e.profiles.ReadAll(ctx)
			if err != nil {
				return nil, fmt.Errorf("reading league profiles: %w", err)
			}
			payload.Profiles = rows
		}
	}
	return payload, nil
}

// Get returns the snapshot with the given id, nil when it doesn't exist.
func (e *Engine) Get(ctx context.Context, id string) (*types.Snapshot, error) {
	return e.store.GetByID(ctx, id)
}

// GetByEpoch returns the most recent snapshot tagged with the given epoch,
// nil when there is none.
func (e *Engine) GetByEpoch(ctx context.Context, epoch types.Epoch) (*types.Snapshot, error) {
	return e.store.GetByEpoch(ctx, epoch)
}

// List returns up to limit snapshots, newest first, optionally filtered by
// type.
func (e *Engine) List(ctx context.Context, snapshotType *types.SnapshotType, limit int) ([]types.Snapshot, error) {
	return e.store.List(ctx, snapshotType, limit)
}

// Latest returns the newest snapshot, optionally filtered by type, nil when
// there is none.
func (e *Engine) Latest(ctx context.Context, snapshotType *types.SnapshotType) (*types.Snapshot, error) {
	snaps, err := e.store.List(ctx, snapshotType, 1)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, nil
	}
	return &snaps[0], nil
}

// CleanupOld removes expired snapshots through the shared expiry sweep,
// then, independent of expiry, trims the given type down to its keep count,
// newest first. Retention is the intersection of the time window and the
// count cap, whichever bites first.
func (e *Engine) CleanupOld(ctx context.Context, snapshotType types.SnapshotType) error {
	if err := snapshotType.Validate(); err != nil {
		return err
	}

	expired, err := e.store.DeleteExpired(ctx)
	if err != nil {
		return fmt.Errorf("expiry sweep: %w", err)
	}
	if expired > 0 {
		e.log.Info("expired snapshots removed", logging.Int64("count", expired))
	}

	keep := e.keepFor(snapshotType)
	snaps, err := e.store.List(ctx, &snapshotType, 0)
	if err != nil {
		return fmt.Errorf("listing snapshots for trim: %w", err)
	}
	if len(snaps) <= keep {
		metrics.SnapshotsPruned(string(snapshotType), int(expired))
		return nil
	}

	ids := make([]string, 0, len(snaps)-keep)
	for _, s := range snaps[keep:] {
		ids = append(ids, s.ID)
	}
	trimmed, err := e.store.DeleteByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("trimming snapshots: %w", err)
	}

	metrics.SnapshotsPruned(string(snapshotType), int(expired+trimmed))
	e.log.Info("snapshots trimmed to keep count",
		logging.String("type", string(snapshotType)),
		logging.Int("keep", keep),
		logging.Int64("trimmed", trimmed),
	)
	return nil
}

// StorageStatistics aggregates snapshot count and size per type.
func (e *Engine) StorageStatistics(ctx context.Context) (*types.StorageStatistics, error) {
	return e.store.StorageStats(ctx)
}
