package sqlstore

import (
	"context"

	"github.com/dynastyops/valuekeeper/metrics"
	"github.com/dynastyops/valuekeeper/types"

	"github.com/georgysavva/scany/pgxscan"
)

// SafeMode holds the singleton advisory flag raised for the duration of a
// restore. The migration seeds the one row, stores only ever update it.
type SafeMode struct {
	*ConnectionSource
}

func NewSafeMode(connectionSource *ConnectionSource) *SafeMode {
	return &SafeMode{
		ConnectionSource: connectionSource,
	}
}

func (sm *SafeMode) Enable(ctx context.Context, reason string) error {
	defer metrics.StartSQLQuery("SafeMode", "Enable")()
	_, err := sm.Connection.Exec(ctx, `
		INSERT INTO safe_mode(id, enabled, reason, enabled_at)
		VALUES (true, true, $1, now())
		ON CONFLICT (id)
		DO UPDATE SET enabled=true, reason=$1, enabled_at=now();`, reason)
	return err
}

func (sm *SafeMode) Disable(ctx context.Context) error {
	defer metrics.StartSQLQuery("SafeMode", "Disable")()
	_, err := sm.Connection.Exec(ctx, `
		INSERT INTO safe_mode(id, enabled, reason, disabled_at)
		VALUES (true, false, '', now())
		ON CONFLICT (id)
		DO UPDATE SET enabled=false, disabled_at=now();`)
	return err
}

func (sm *SafeMode) State(ctx context.Context) (*types.SafeModeState, error) {
	defer metrics.StartSQLQuery("SafeMode", "State")()
	state := types.SafeModeState{}
	err := pgxscan.Get(ctx, sm.Connection, &state, `
		SELECT enabled, reason,
		       coalesce(enabled_at, 'epoch'::timestamptz) AS enabled_at,
		       coalesce(disabled_at, 'epoch'::timestamptz) AS disabled_at
		FROM safe_mode
		WHERE id=true;`)
	if pgxscan.NotFound(err) {
		// the singleton row is seeded by the migration, treat a missing
		// row as disabled
		return &types.SafeModeState{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}
