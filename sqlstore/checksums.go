package sqlstore

import (
	"context"

	"github.com/dynastyops/valuekeeper/metrics"
	"github.com/dynastyops/valuekeeper/types"

	"github.com/georgysavva/scany/pgxscan"
)

// Checksums stores one digest record per ledger write.
type Checksums struct {
	*ConnectionSource
}

func NewChecksums(connectionSource *ConnectionSource) *Checksums {
	return &Checksums{
		ConnectionSource: connectionSource,
	}
}

func (cs *Checksums) Insert(ctx context.Context, rec types.ChecksumRecord) error {
	defer metrics.StartSQLQuery("Checksums", "Insert")()
	_, err := cs.Connection.Exec(ctx, `
		INSERT INTO value_checksums(kind, epoch, hash, row_count, created_at)
		VALUES ($1, $2, $3, $4, $5);`,
		rec.Kind, rec.Epoch, rec.Hash, rec.RowCount, rec.CreatedAt)
	return err
}

// GetByEpoch returns the values checksum for the epoch, nil when none was
// ever written.
func (cs *Checksums) GetByEpoch(ctx context.Context, epoch types.Epoch) (*types.ChecksumRecord, error) {
	defer metrics.StartSQLQuery("Checksums", "GetByEpoch")()
	rec := types.ChecksumRecord{}
	err := pgxscan.Get(ctx, cs.Connection, &rec, `
		SELECT kind, epoch, hash, row_count, created_at
		FROM value_checksums
		WHERE kind=$1 AND epoch=$2;`, types.ChecksumKindValues, epoch)
	if pgxscan.NotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
