package types

import "time"

// RollbackType records how a rollback target was selected.
type RollbackType string

const (
	RollbackTypeSnapshot RollbackType = "snapshot"
	RollbackTypeEpoch    RollbackType = "epoch"
)

// RollbackRecord is one append-only audit row, written exactly once per
// rollback attempt, success or failure. RestoredSections lists the sections
// fully restored before the attempt ended, so a partial restore can be
// resumed by the operator.
type RollbackRecord struct {
	ID               int64         `db:"id"`
	Type             RollbackType  `db:"rollback_type"`
	TargetEpoch      Epoch         `db:"target_epoch"`
	SnapshotID       string        `db:"snapshot_id"`
	Initiator        string        `db:"initiated_by"`
	Reason           string        `db:"reason"`
	RowsAffected     int64         `db:"rows_affected"`
	Duration         time.Duration `db:"duration"`
	RestoredSections []string      `db:"restored_sections"`
	Success          bool          `db:"success"`
	ErrorMessage     string        `db:"error_message"`
	CreatedAt        time.Time     `db:"created_at"`
}

// RollbackResult is returned to the caller of a rollback attempt. On failure
// PreRollbackSnapshotID, when set, is the recovery path for any sections
// already replaced.
type RollbackResult struct {
	Success               bool
	SnapshotID            string
	PreRollbackSnapshotID string
	TargetEpoch           Epoch
	RowsAffected          int64
	RestoredSections      []Section
	Duration              time.Duration
	ErrorMessage          string
}

// SafeModeState is the singleton advisory write-lock row. It signals other
// callers not to trust reads while a restore is replacing live tables, it
// does not enforce anything itself.
type SafeModeState struct {
	Enabled    bool      `db:"enabled"`
	Reason     string    `db:"reason"`
	EnabledAt  time.Time `db:"enabled_at"`
	DisabledAt time.Time `db:"disabled_at"`
}

// AlertSeverity grades a system alert.
type AlertSeverity string

const (
	AlertSeverityInfo     AlertSeverity = "info"
	AlertSeverityWarning  AlertSeverity = "warning"
	AlertSeverityCritical AlertSeverity = "critical"
)

// Alert is one message for the operator-facing alert sink.
type Alert struct {
	Severity  AlertSeverity     `db:"severity"`
	Message   string            `db:"message"`
	Metadata  map[string]string `db:"metadata"`
	CreatedAt time.Time         `db:"created_at"`
}
