package sqlstore

import (
	"context"

	"github.com/dynastyops/valuekeeper/metrics"
	"github.com/dynastyops/valuekeeper/types"

	"github.com/georgysavva/scany/pgxscan"
	"github.com/jackc/pgx/v4"
	"github.com/pkg/errors"
)

// Players is the asset registry, players and draft picks.
type Players struct {
	*ConnectionSource
}

func NewPlayers(connectionSource *ConnectionSource) *Players {
	return &Players{
		ConnectionSource: connectionSource,
	}
}

func (ps *Players) Upsert(ctx context.Context, row types.Player) error {
	defer metrics.StartSQLQuery("Players", "Upsert")()
	_, err := ps.Connection.Exec(ctx, `
		INSERT INTO players(asset_id, name, position, team, age, status, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (asset_id)
		DO UPDATE SET name=EXCLUDED.name,
		              position=EXCLUDED.position,
		              team=EXCLUDED.team,
		              age=EXCLUDED.age,
		              status=EXCLUDED.status,
		              metadata=EXCLUDED.metadata;`,
		row.AssetID, row.Name, row.Position, row.Team, row.Age, row.Status, row.Metadata)
	return err
}

func (ps *Players) ReadAll(ctx context.Context) ([]types.Player, error) {
	defer metrics.StartSQLQuery("Players", "ReadAll")()
	rows := []types.Player{}
	err := pgxscan.Select(ctx, ps.Connection, &rows, `
		SELECT asset_id, name, position, team, age, status, metadata
		FROM players
		ORDER BY asset_id;`)
	return rows, err
}

func (ps *Players) DeleteAll(ctx context.Context) (int64, error) {
	defer metrics.StartSQLQuery("Players", "DeleteAll")()
	tag, err := ps.Connection.Exec(ctx, `DELETE FROM players;`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (ps *Players) BulkInsert(ctx context.Context, rows []types.Player) error {
	if len(rows) == 0 {
		return nil
	}
	defer metrics.StartSQLQuery("Players", "BulkInsert")()

	_, err := ps.Connection.CopyFrom(
		ctx,
		pgx.Identifier{"players"},
		[]string{"asset_id", "name", "position", "team", "age", "status", "metadata"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]interface{}, error) {
			r := rows[i]
			return []interface{}{
				r.AssetID, r.Name, r.Position, r.Team, r.Age, r.Status, r.Metadata,
			}, nil
		}),
	)
	return errors.Wrap(err, "bulk inserting players")
}
