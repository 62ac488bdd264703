package sqlstore

import (
	"context"

	"github.com/dynastyops/valuekeeper/metrics"
	"github.com/dynastyops/valuekeeper/types"

	"github.com/georgysavva/scany/pgxscan"
	"github.com/jackc/pgx/v4"
	"github.com/pkg/errors"
)

// Leagues is the imported league profile table.
type Leagues struct {
	*ConnectionSource
}

func NewLeagues(connectionSource *ConnectionSource) *Leagues {
	return &Leagues{
		ConnectionSource: connectionSource,
	}
}

func (ls *Leagues) Upsert(ctx context.Context, row types.LeagueProfile) error {
	defer metrics.StartSQLQuery("Leagues", "Upsert")()
	_, err := ls.Connection.Exec(ctx, `
		INSERT INTO league_profiles(league_id, name, format, scoring, roster)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (league_id)
		DO UPDATE SET name=EXCLUDED.name,
		              format=EXCLUDED.format,
		              scoring=EXCLUDED.scoring,
		              roster=EXCLUDED.roster;`,
		row.LeagueID, row.Name, row.Format, row.Scoring, row.Roster)
	return err
}

func (ls *Leagues) ReadAll(ctx context.Context) ([]types.LeagueProfile, error) {
	defer metrics.StartSQLQuery("Leagues", "ReadAll")()
	rows := []types.LeagueProfile{}
	err := pgxscan.Select(ctx, ls.Connection, &rows, `
		SELECT league_id, name, format, scoring, roster
		FROM league_profiles
		ORDER BY league_id;`)
	return rows, err
}

func (ls *Leagues) DeleteAll(ctx context.Context) (int64, error) {
	defer metrics.StartSQLQuery("Leagues", "DeleteAll")()
	tag, err := ls.Connection.Exec(ctx, `DELETE FROM league_profiles;`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (ls *Leagues) BulkInsert(ctx context.Context, rows []types.LeagueProfile) error {
	if len(rows) == 0 {
		return nil
	}
	defer metrics.StartSQLQuery("Leagues", "BulkInsert")()

	_, err := ls.Connection.CopyFrom(
		ctx,
		pgx.Identifier{"league_profiles"},
		[]string{"league_id", "name", "format", "scoring", "roster"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]interface{}, error) {
			r := rows[i]
			return []interface{}{
				r.LeagueID, r.Name, r.Format, r.Scoring, r.Roster,
			}, nil
		}),
	)
	return errors.Wrap(err, "bulk inserting league profiles")
}
