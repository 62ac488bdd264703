package sqlstore

import (
	"context"

	"github.com/dynastyops/valuekeeper/metrics"
	"github.com/dynastyops/valuekeeper/types"

	"github.com/georgysavva/scany/pgxscan"
	"github.com/jackc/pgx/v4"
	"github.com/pkg/errors"
)

// VersionedValues is the append-only epoch history of value rows.
type VersionedValues struct {
	*ConnectionSource
}

func NewVersionedValues(connectionSource *ConnectionSource) *VersionedValues {
	return &VersionedValues{
		ConnectionSource: connectionSource,
	}
}

func (vs *VersionedValues) BulkInsert(ctx context.Context, entries []types.VersionedValueEntry) error {
	if len(entries) == 0 {
		return nil
	}
	defer metrics.StartSQLQuery("VersionedValues", "BulkInsert")()

	_, err := vs.Connection.CopyFrom(
		ctx,
		pgx.Identifier{"versioned_values"},
		[]string{"epoch", "asset_id", "scope", "value", "positional_rank", "overall_rank", "tier", "metadata", "created_at"},
		pgx.CopyFromSlice(len(entries), func(i int) ([]interface{}, error) {
			en := entries[i]
			return []interface{}{
				en.Epoch, en.AssetID, en.Scope, en.Value,
				en.PositionalRank, en.OverallRank, en.Tier, en.Metadata, en.CreatedAt,
			}, nil
		}),
	)
	return errors.Wrap(err, "bulk inserting versioned values")
}

func (vs *VersionedValues) ReadByEpoch(ctx context.Context, epoch types.Epoch) ([]types.VersionedValueEntry, error) {
	defer metrics.StartSQLQuery("VersionedValues", "ReadByEpoch")()
	entries := []types.VersionedValueEntry{}
	err := pgxscan.Select(ctx, vs.Connection, &entries, `
		SELECT epoch, asset_id, scope, value, positional_rank, overall_rank, tier, metadata, created_at
		FROM versioned_values
		WHERE epoch=$1
		ORDER BY asset_id, scope;`, epoch)
	return entries, err
}

// ReadAssetHistory returns one asset's last window epochs, newest first.
func (vs *VersionedValues) ReadAssetHistory(ctx context.Context, assetID string, scope types.Scope, window int) ([]types.VersionedValueEntry, error) {
	defer metrics.StartSQLQuery("VersionedValues", "ReadAssetHistory")()
	entries := []types.VersionedValueEntry{}
	err := pgxscan.Select(ctx, vs.Connection, &entries, `
		SELECT epoch, asset_id, scope, value, positional_rank, overall_rank, tier, metadata, created_at
		FROM versioned_values
		WHERE asset_id=$1 AND scope=$2
		ORDER BY epoch DESC
		LIMIT $3;`, assetID, scope, window)
	return entries, err
}

// ListEpochs returns the most recent distinct epochs, newest first.
func (vs *VersionedValues) ListEpochs(ctx context.Context, limit int) ([]types.Epoch, error) {
	defer metrics.StartSQLQuery("VersionedValues", "ListEpochs")()
	epochs := []types.Epoch{}
	err := pgxscan.Select(ctx, vs.Connection, &epochs, `
		SELECT DISTINCT epoch
		FROM versioned_values
		ORDER BY epoch DESC
		LIMIT $1;`, limit)
	return epochs, err
}

// DeleteBefore removes whole epochs older than the given one, the bulk
// retention path for versioned history.
func (vs *VersionedValues) DeleteBefore(ctx context.Context, epoch types.Epoch) (int64, error) {
	defer metrics.StartSQLQuery("VersionedValues", "DeleteBefore")()
	tag, err := vs.Connection.Exec(ctx, `DELETE FROM versioned_values WHERE epoch < $1;`, epoch)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
