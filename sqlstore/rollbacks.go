package sqlstore

import (
	"context"
	"time"

	"github.com/dynastyops/valuekeeper/metrics"
	"github.com/dynastyops/valuekeeper/types"

	"github.com/georgysavva/scany/pgxscan"
)

// Rollbacks is the append-only rollback audit trail.
type Rollbacks struct {
	*ConnectionSource
}

func NewRollbacks(connectionSource *ConnectionSource) *Rollbacks {
	return &Rollbacks{
		ConnectionSource: connectionSource,
	}
}

// rollbackRow mirrors the table, durations live as nanosecond integers.
type rollbackRow struct {
	ID               int64              `db:"id"`
	Type             types.RollbackType `db:"rollback_type"`
	TargetEpoch      types.Epoch        `db:"target_epoch"`
	SnapshotID       string             `db:"snapshot_id"`
	Initiator        string             `db:"initiated_by"`
	Reason           string             `db:"reason"`
	RowsAffected     int64              `db:"rows_affected"`
	DurationNs       int64              `db:"duration_ns"`
	RestoredSections []string           `db:"restored_sections"`
	Success          bool               `db:"success"`
	ErrorMessage     string             `db:"error_message"`
	CreatedAt        time.Time          `db:"created_at"`
}

func (r rollbackRow) toRecord() types.RollbackRecord {
	return types.RollbackRecord{
		ID:               r.ID,
		Type:             r.Type,
		TargetEpoch:      r.TargetEpoch,
		SnapshotID:       r.SnapshotID,
		Initiator:        r.Initiator,
		Reason:           r.Reason,
		RowsAffected:     r.RowsAffected,
		Duration:         time.Duration(r.DurationNs),
		RestoredSections: r.RestoredSections,
		Success:          r.Success,
		ErrorMessage:     r.ErrorMessage,
		CreatedAt:        r.CreatedAt,
	}
}

const rollbackColumns = `id, rollback_type, target_epoch, snapshot_id, initiated_by, reason,
	rows_affected, duration_ns, restored_sections, success, error_message, created_at`

func (rs *Rollbacks) Insert(ctx context.Context, rec types.RollbackRecord) error {
	defer metrics.StartSQLQuery("Rollbacks", "Insert")()
	_, err := rs.Connection.Exec(ctx, `
		INSERT INTO rollback_audit(rollback_type, target_epoch, snapshot_id, initiated_by, reason,
			rows_affected, duration_ns, restored_sections, success, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`,
		rec.Type, rec.TargetEpoch, rec.SnapshotID, rec.Initiator, rec.Reason,
		rec.RowsAffected, int64(rec.Duration), rec.RestoredSections,
		rec.Success, rec.ErrorMessage, rec.CreatedAt)
	return err
}

// List returns up to limit audit rows, newest first. A limit of zero or
// less means no limit.
func (rs *Rollbacks) List(ctx context.Context, limit int) ([]types.RollbackRecord, error) {
	defer metrics.StartSQLQuery("Rollbacks", "List")()

	var limitArg interface{}
	if limit > 0 {
		limitArg = limit
	}

	rows := []rollbackRow{}
	err := pgxscan.Select(ctx, rs.Connection, &rows, `
		SELECT `+rollbackColumns+`
		FROM rollback_audit
		ORDER BY created_at DESC, id DESC
		LIMIT $1;`, limitArg)
	if err != nil {
		return nil, err
	}

	records := make([]types.RollbackRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toRecord())
	}
	return records, nil
}

// Latest returns the newest audit row, nil when no rollback ever ran.
func (rs *Rollbacks) Latest(ctx context.Context) (*types.RollbackRecord, error) {
	defer metrics.StartSQLQuery("Rollbacks", "Latest")()

	row := rollbackRow{}
	err := pgxscan.Get(ctx, rs.Connection, &row, `
		SELECT `+rollbackColumns+`
		FROM rollback_audit
		ORDER BY created_at DESC, id DESC
		FETCH FIRST ROW ONLY;`)
	if pgxscan.NotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec := row.toRecord()
	return &rec, nil
}
