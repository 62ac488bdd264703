package sqlstore

import (
	"context"

	"github.com/dynastyops/valuekeeper/metrics"
	"github.com/dynastyops/valuekeeper/types"

	"github.com/georgysavva/scany/pgxscan"
	"github.com/jackc/pgx/v4"
	"github.com/pkg/errors"
)

// Values is the live computed value table.
type Values struct {
	*ConnectionSource
}

func NewValues(connectionSource *ConnectionSource) *Values {
	return &Values{
		ConnectionSource: connectionSource,
	}
}

func (vs *Values) Upsert(ctx context.Context, row types.ValueRecord) error {
	defer metrics.StartSQLQuery("Values", "Upsert")()
	_, err := vs.Connection.Exec(ctx, `
		INSERT INTO player_values(asset_id, scope, format, value, positional_rank, overall_rank, tier, metadata, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (asset_id, scope)
		DO UPDATE SET format=EXCLUDED.format,
		              value=EXCLUDED.value,
		              positional_rank=EXCLUDED.positional_rank,
		              overall_rank=EXCLUDED.overall_rank,
		              tier=EXCLUDED.tier,
		              metadata=EXCLUDED.metadata,
		              updated_at=EXCLUDED.updated_at;`,
		row.AssetID, row.Scope, row.Format, row.Value,
		row.PositionalRank, row.OverallRank, row.Tier, row.Metadata, row.UpdatedAt)
	return err
}

func (vs *Values) ReadAll(ctx context.Context) ([]types.ValueRecord, error) {
	defer metrics.StartSQLQuery("Values", "ReadAll")()
	rows := []types.ValueRecord{}
	err := pgxscan.Select(ctx, vs.Connection, &rows, `
		SELECT asset_id, scope, format, value, positional_rank, overall_rank, tier, metadata, updated_at
		FROM player_values
		ORDER BY asset_id, scope;`)
	return rows, err
}

// ReadComputed returns only the rows a value has actually been computed for,
// the set the ledger versions.
func (vs *Values) ReadComputed(ctx context.Context) ([]types.ValueRecord, error) {
	defer metrics.StartSQLQuery("Values", "ReadComputed")()
	rows := []types.ValueRecord{}
	err := pgxscan.Select(ctx, vs.Connection, &rows, `
		SELECT asset_id, scope, format, value, positional_rank, overall_rank, tier, metadata, updated_at
		FROM player_values
		WHERE value <> 0 OR overall_rank > 0
		ORDER BY asset_id, scope;`)
	return rows, err
}

func (vs *Values) DeleteAll(ctx context.Context) (int64, error) {
	defer metrics.StartSQLQuery("Values", "DeleteAll")()
	tag, err := vs.Connection.Exec(ctx, `DELETE FROM player_values;`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (vs *Values) BulkInsert(ctx context.Context, rows []types.ValueRecord) error {
	if len(rows) == 0 {
		return nil
	}
	defer metrics.StartSQLQuery("Values", "BulkInsert")()

	_, err := vs.Connection.CopyFrom(
		ctx,
		pgx.Identifier{"player_values"},
		[]string{"asset_id", "scope", "format", "value", "positional_rank", "overall_rank", "tier", "metadata", "updated_at"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]interface{}, error) {
			r := rows[i]
			return []interface{}{
				r.AssetID, r.Scope, r.Format, r.Value,
				r.PositionalRank, r.OverallRank, r.Tier, r.Metadata, r.UpdatedAt,
			}, nil
		}),
	)
	return errors.Wrap(err, "bulk inserting player values")
}
