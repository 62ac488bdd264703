// Package rollback coordinates disaster recovery: given a snapshot it takes
// a full safety snapshot, raises the advisory safe mode flag, replaces live
// tables section by section with the snapshot payload, clears safe mode and
// writes one audit record per attempt.
package rollback

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/dynastyops/valuekeeper/logging"
	"github.com/dynastyops/valuekeeper/metrics"
	"github.com/dynastyops/valuekeeper/types"

	"github.com/pkg/errors"
)

const namedLogger = "rollback"

var (
	// ErrSnapshotNotFound is returned when the rollback target does not
	// resolve to a stored snapshot.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrRollbackInProgress is returned when another rollback holds the
	// in-process single flight lock.
	ErrRollbackInProgress = errors.New("a rollback is already in progress")
)

// Snapshots is the slice of the snapshot engine the orchestrator needs: the
// target lookup and the pre-rollback safety capture.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/mocks.go -package mocks github.com/dynastyops/valuekeeper/rollback Snapshots,ValueStore,RegistryStore,ProfileStore,SafeMode,AuditStore,Alerter
type Snapshots interface {
	Get(ctx context.Context, id string) (*types.Snapshot, error)
	GetByEpoch(ctx context.Context, epoch types.Epoch) (*types.Snapshot, error)
	Create(ctx context.Context, snapshotType types.SnapshotType, epoch types.Epoch) (*types.Snapshot, error)
}

// ValueStore is the live value table, replaced wholesale during a restore.
type ValueStore interface {
	DeleteAll(ctx context.Context) (int64, error)
	BulkInsert(ctx context.Context, rows []types.ValueRecord) error
}

// RegistryStore is the live player registry.
type RegistryStore interface {
	DeleteAll(ctx context.Context) (int64, error)
	BulkInsert(ctx context.Context, rows []types.Player) error
}

// ProfileStore is the live league profile table.
type ProfileStore interface {
	DeleteAll(ctx context.Context) (int64, error)
	BulkInsert(ctx context.Context, rows []types.LeagueProfile) error
}

// SafeMode is the injectable handle on the advisory safe mode flag.
type SafeMode interface {
	Enable(ctx context.Context, reason string) error
	Disable(ctx context.Context) error
	State(ctx context.Context) (*types.SafeModeState, error)
}

// AuditStore persists and reads rollback audit rows, newest first.
type AuditStore interface {
	Insert(ctx context.Context, rec types.RollbackRecord) error
	List(ctx context.Context, limit int) ([]types.RollbackRecord, error)
	Latest(ctx context.Context) (*types.RollbackRecord, error)
}

// Alerter delivers operator alerts. Delivery is someone else's problem,
// this package only emits.
type Alerter interface {
	Emit(ctx context.Context, alert types.Alert) error
}

// Engine is the rollback orchestrator.
type Engine struct {
	Config
	log *logging.Logger

	snapshots Snapshots
	values    ValueStore
	registry  RegistryStore
	profiles  ProfileStore
	safeMode  SafeMode
	audit     AuditStore
	alerter   Alerter

	// single flight, concurrent attempts are rejected not queued
	inFlight atomic.Bool

	now func() time.Time
}

// New returns the rollback engine.
func New(
	log *logging.Logger,
	cfg Config,
	snapshots Snapshots,
	values ValueStore,
	registry RegistryStore,
	profiles ProfileStore,
	safeMode SafeMode,
	audit AuditStore,
	alerter Alerter,
) *Engine {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	return &Engine{
		Config:    cfg,
		log:       log,
		snapshots: snapshots,
		values:    values,
		registry:  registry,
		profiles:  profiles,
		safeMode:  safeMode,
		audit:     audit,
		alerter:   alerter,
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

// ToSnapshot restores live state from the snapshot with the given id. The
// sequence is ordered but not atomic across stores: on a restore phase
// failure the sections already replaced stay replaced, the pre-rollback
// snapshot taken before any mutation is the recovery path, and the audit
// record lists which sections completed. Safe mode is cleared best effort
// on every exit path. Exactly one audit record is written per attempt.
func (e *Engine) ToSnapshot(ctx context.Context, snapshotID, reason, initiator string) (*types.RollbackResult, error) {
	if !e.inFlight.CompareAndSwap(false, true) {
		return nil, ErrRollbackInProgress
	}
	defer e.inFlight.Store(false)

	return e.run(ctx, types.RollbackTypeSnapshot, snapshotID, "", reason, initiator)
}

// ToEpoch resolves the most recent snapshot tagged with the given epoch and
// restores from it.
func (e *Engine) ToEpoch(ctx context.Context, epoch types.Epoch, reason, initiator string) (*types.RollbackResult, error) {
	if err := epoch.Validate(); err != nil {
		return nil, err
	}
	if !e.inFlight.CompareAndSwap(false, true) {
		return nil, ErrRollbackInProgress
	}
	defer e.inFlight.Store(false)

	return e.run(ctx, types.RollbackTypeEpoch, "", epoch, reason, initiator)
}

func (e *Engine) run(ctx context.Context, rollbackType types.RollbackType, snapshotID string, epoch types.Epoch, reason, initiator string) (*types.RollbackResult, error) {
	started := e.now()

	snap, err := e.resolveTarget(ctx, rollbackType, snapshotID, epoch)
	if err != nil {
		// no snapshot, nothing was touched, still an auditable attempt
		result := &types.RollbackResult{
			SnapshotID:   snapshotID,
			TargetEpoch:  epoch,
			Duration:     e.now().Sub(started),
			ErrorMessage: err.Error(),
		}
		e.writeAudit(ctx, rollbackType, result, reason, initiator)
		metrics.RollbackFinished(false)
		return result, err
	}

	result := &types.RollbackResult{
		SnapshotID:  snap.ID,
		TargetEpoch: snap.Epoch,
	}

	e.log.Info("starting rollback",
		logging.String("snapshot", snap.ID),
		logging.String("type", string(snap.Type)),
		logging.String("epoch", string(snap.Epoch)),
		logging.String("initiator", initiator),
		logging.String("reason", reason),
	)

	// safety capture before any mutation, its own failure does not abort
	if pre, err := e.snapshots.Create(ctx, types.SnapshotTypeFull, ""); err != nil {
		e.log.Warn("pre-rollback snapshot failed, continuing without one",
			logging.Error(err),
		)
	} else {
		result.PreRollbackSnapshotID = pre.ID
	}

	if err := e.safeMode.Enable(ctx, reason); err != nil {
		result.Duration = e.now().Sub(started)
		result.ErrorMessage = errors.Wrap(err, "enabling safe mode").Error()
		e.disableSafeMode(ctx)
		e.writeAudit(ctx, rollbackType, result, reason, initiator)
		metrics.RollbackFinished(false)
		return result, errors.Wrap(err, "enabling safe mode")
	}

	restoreErr := e.restoreSections(ctx, snap, result)

	// leaving safe mode stuck on is worse than clearing it over an
	// inconsistent restore, so this always runs and never escalates
	e.disableSafeMode(ctx)

	result.Duration = e.now().Sub(started)
	if restoreErr != nil {
		result.ErrorMessage = restoreErr.Error()
		e.writeAudit(ctx, rollbackType, result, reason, initiator)
		metrics.RollbackFinished(false)
		e.log.Error("rollback failed",
			logging.String("snapshot", snap.ID),
			logging.String("pre_rollback_snapshot", result.PreRollbackSnapshotID),
			logging.Error(restoreErr),
		)
		return result, restoreErr
	}

	result.Success = true
	e.writeAudit(ctx, rollbackType, result, reason, initiator)
	metrics.RollbackFinished(true)
	e.emitAlert(ctx, snap, result)

	e.log.Info("rollback complete",
		logging.String("snapshot", snap.ID),
		logging.Int64("rows_affected", result.RowsAffected),
		logging.Duration("duration", result.Duration),
	)
	return result, nil
}

func (e *Engine) resolveTarget(ctx context.Context, rollbackType types.RollbackType, snapshotID string, epoch types.Epoch) (*types.Snapshot, error) {
	var (
		snap *types.Snapshot
		err  error
	)
	if rollbackType == types.RollbackTypeEpoch {
		snap, err = e.snapshots.GetByEpoch(ctx, epoch)
	} else {
		snap, err = e.snapshots.Get(ctx, snapshotID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "resolving rollback target")
	}
	if snap == nil {
		return nil, ErrSnapshotNotFound
	}
	return snap, nil
}

// restoreSections replaces each section the snapshot covers, in the type's
// fixed order. It stops on the first failure, recording in the result which
// sections finished.
func (e *Engine) restoreSections(ctx context.Context, snap *types.Snapshot, result *types.RollbackResult) error {
	for _, sec := range snap.Type.Sections() {
		rows, err := e.restoreSection(ctx, sec, snap.Payload)
		if err != nil {
			return errors.Wrapf(err, "restoring section %s", sec)
		}
		result.RowsAffected += rows
		result.RestoredSections = append(result.RestoredSections, sec)
		e.log.Info("section restored",
			logging.String("section", string(sec)),
			logging.Int64("rows", rows),
		)
	}
	return nil
}

// restoreSection is a full table replace: delete everything live, insert the
// payload rows. After success the live table equals the payload exactly.
func (e *Engine) restoreSection(ctx context.Context, sec types.Section, payload types.SnapshotPayload) (int64, error) {
	switch sec {
	case types.SectionValues:
		deleted, err := e.values.DeleteAll(ctx)
		if err != nil {
			return 0, err
		}
		if err := e.values.BulkInsert(ctx, payload.Values); err != nil {
			return deleted, err
		}
		return deleted + int64(len(payload.Values)), nil
	case types.SectionRegistry:
		deleted, err := e.registry.DeleteAll(ctx)
		if err != nil {
			return 0, err
		}
		if err := e.registry.BulkInsert(ctx, payload.Players); err != nil {
			return deleted, err
		}
		return deleted + int64(len(payload.Players)), nil
	case types.SectionProfiles:
		deleted, err := e.profiles.DeleteAll(ctx)
		if err != nil {
			return 0, err
		}
		if err := e.profiles.BulkInsert(ctx, payload.Profiles); err != nil {
			return deleted, err
		}
		return deleted + int64(len(payload.Profiles)), nil
	}
	return 0, errors.Errorf("unknown section %q", sec)
}

func (e *Engine) disableSafeMode(ctx context.Context) {
	if err := e.safeMode.Disable(ctx); err != nil {
		e.log.Error("could not disable safe mode, manual intervention needed",
			logging.Error(err),
		)
	}
}

func (e *Engine) writeAudit(ctx context.Context, rollbackType types.RollbackType, result *types.RollbackResult, reason, initiator string) {
	sections := make([]string, 0, len(result.RestoredSections))
	for _, sec := range result.RestoredSections {
		sections = append(sections, string(sec))
	}
	rec := types.RollbackRecord{
		Type:             rollbackType,
		TargetEpoch:      result.TargetEpoch,
		SnapshotID:       result.SnapshotID,
		Initiator:        initiator,
		Reason:           reason,
		RowsAffected:     result.RowsAffected,
		Duration:         result.Duration,
		RestoredSections: sections,
		Success:          result.Success,
		ErrorMessage:     result.ErrorMessage,
		CreatedAt:        e.now(),
	}
	if err := e.audit.Insert(ctx, rec); err != nil {
		e.log.Error("could not write rollback audit record",
			logging.String("snapshot", result.SnapshotID),
			logging.Bool("success", result.Success),
			logging.Error(err),
		)
	}
}

func (e *Engine) emitAlert(ctx context.Context, snap *types.Snapshot, result *types.RollbackResult) {
	alert := types.Alert{
		Severity: types.AlertSeverityCritical,
		Message:  "live state was rolled back from a snapshot",
		Metadata: map[string]string{
			"snapshot_id":   snap.ID,
			"snapshot_type": string(snap.Type),
			"epoch":         string(snap.Epoch),
			"rows_affected": strconv.FormatInt(result.RowsAffected, 10),
			"duration":      result.Duration.String(),
		},
		CreatedAt: e.now(),
	}
	if err := e.alerter.Emit(ctx, alert); err != nil {
		e.log.Warn("could not emit rollback alert", logging.Error(err))
	}
}

// History returns up to limit audit rows, newest first.
func (e *Engine) History(ctx context.Context, limit int) ([]types.RollbackRecord, error) {
	return e.audit.List(ctx, limit)
}

// Latest returns the newest audit row, nil when no rollback ever ran.
func (e *Engine) Latest(ctx context.Context) (*types.RollbackRecord, error) {
	return e.audit.Latest(ctx)
}

// SafeModeState reports the current advisory flag state.
func (e *Engine) SafeModeState(ctx context.Context) (*types.SafeModeState, error) {
	return e.safeMode.State(ctx)
}
