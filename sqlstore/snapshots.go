package sqlstore

import (
	"context"
	"time"

	"github.com/dynastyops/valuekeeper/metrics"
	"github.com/dynastyops/valuekeeper/types"

	"github.com/georgysavva/scany/pgxscan"
)

// Snapshots persists point in time captures with their payload blobs.
type Snapshots struct {
	*ConnectionSource
}

func NewSnapshots(connectionSource *ConnectionSource) *Snapshots {
	return &Snapshots{
		ConnectionSource: connectionSource,
	}
}

func (ss *Snapshots) Insert(ctx context.Context, snap types.Snapshot) error {
	defer metrics.StartSQLQuery("Snapshots", "Insert")()
	_, err := ss.Connection.Exec(ctx, `
		INSERT INTO snapshots(id, snapshot_type, epoch, payload, stats, size_bytes, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`,
		snap.ID, snap.Type, snap.Epoch, snap.Payload, snap.Stats,
		snap.Size, snap.CreatedAt, snap.ExpiresAt)
	return err
}

func (ss *Snapshots) GetByID(ctx context.Context, id string) (*types.Snapshot, error) {
	defer metrics.StartSQLQuery("Snapshots", "GetByID")()
	snap := types.Snapshot{}
	err := pgxscan.Get(ctx, ss.Connection, &snap, `
		SELECT id, snapshot_type, epoch, payload, stats, size_bytes, created_at, expires_at
		FROM snapshots
		WHERE id=$1;`, id)
	if pgxscan.NotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// GetByEpoch returns the newest snapshot tagged with the epoch, nil when
// there is none.
func (ss *Snapshots) GetByEpoch(ctx context.Context, epoch types.Epoch) (*types.Snapshot, error) {
	defer metrics.StartSQLQuery("Snapshots", "GetByEpoch")()
	snap := types.Snapshot{}
	err := pgxscan.Get(ctx, ss.Connection, &snap, `
		SELECT id, snapshot_type, epoch, payload, stats, size_bytes, created_at, expires_at
		FROM snapshots
		WHERE epoch=$1
		ORDER BY created_at DESC
		FETCH FIRST ROW ONLY;`, epoch)
	if pgxscan.NotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// List returns snapshots newest first, optionally filtered by type. A limit
// of zero or less means no limit.
func (ss *Snapshots) List(ctx context.Context, snapshotType *types.SnapshotType, limit int) ([]types.Snapshot, error) {
	defer metrics.StartSQLQuery("Snapshots", "List")()

	query := `
		SELECT id, snapshot_type, epoch, payload, stats, size_bytes, created_at, expires_at
		FROM snapshots
		WHERE ($1::text IS NULL OR snapshot_type=$1)
		ORDER BY created_at DESC
		LIMIT $2;`

	var limitArg interface{}
	if limit > 0 {
		limitArg = limit
	}

	snaps := []types.Snapshot{}
	err := pgxscan.Select(ctx, ss.Connection, &snaps, query, snapshotType, limitArg)
	return snaps, err
}

func (ss *Snapshots) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	defer metrics.StartSQLQuery("Snapshots", "DeleteByIDs")()
	tag, err := ss.Connection.Exec(ctx, `DELETE FROM snapshots WHERE id=ANY($1);`, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (ss *Snapshots) DeleteExpired(ctx context.Context) (int64, error) {
	defer metrics.StartSQLQuery("Snapshots", "DeleteExpired")()
	tag, err := ss.Connection.Exec(ctx, `DELETE FROM snapshots WHERE expires_at < now();`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type storageStatsRow struct {
	SnapshotType types.SnapshotType `db:"snapshot_type"`
	Count        int                `db:"count"`
	Bytes        int64              `db:"bytes"`
	Oldest       time.Time          `db:"oldest"`
	Newest       time.Time          `db:"newest"`
}

func (ss *Snapshots) StorageStats(ctx context.Context) (*types.StorageStatistics, error) {
	defer metrics.StartSQLQuery("Snapshots", "StorageStats")()

	rows := []storageStatsRow{}
	err := pgxscan.Select(ctx, ss.Connection, &rows, `
		SELECT snapshot_type,
		       count(*) AS count,
		       coalesce(sum(size_bytes), 0)::bigint AS bytes,
		       min(created_at) AS oldest,
		       max(created_at) AS newest
		FROM snapshots
		GROUP BY snapshot_type;`)
	if err != nil {
		return nil, err
	}

	stats := &types.StorageStatistics{
		ByType: map[types.SnapshotType]types.TypeStatistics{},
	}
	for _, row := range rows {
		stats.TotalCount += row.Count
		stats.TotalBytes += row.Bytes
		stats.ByType[row.SnapshotType] = types.TypeStatistics{
			Count:  row.Count,
			Bytes:  row.Bytes,
			Oldest: row.Oldest,
			Newest: row.Newest,
		}
	}
	return stats, nil
}
