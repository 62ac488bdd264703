package sqlstore

import (
	"context"

	"github.com/dynastyops/valuekeeper/metrics"
	"github.com/dynastyops/valuekeeper/types"

	"github.com/georgysavva/scany/pgxscan"
)

// Alerts is the operator facing alert sink. Delivery to external channels
// happens elsewhere, this table is the durable record.
type Alerts struct {
	*ConnectionSource
}

func NewAlerts(connectionSource *ConnectionSource) *Alerts {
	return &Alerts{
		ConnectionSource: connectionSource,
	}
}

func (as *Alerts) Emit(ctx context.Context, alert types.Alert) error {
	defer metrics.StartSQLQuery("Alerts", "Emit")()
	_, err := as.Connection.Exec(ctx, `
		INSERT INTO system_alerts(severity, message, metadata, created_at)
		VALUES ($1, $2, $3, $4);`,
		alert.Severity, alert.Message, alert.Metadata, alert.CreatedAt)
	return err
}

// List returns up to limit alerts, newest first.
func (as *Alerts) List(ctx context.Context, limit int) ([]types.Alert, error) {
	defer metrics.StartSQLQuery("Alerts", "List")()

	var limitArg interface{}
	if limit > 0 {
		limitArg = limit
	}

	alerts := []types.Alert{}
	err := pgxscan.Select(ctx, as.Connection, &alerts, `
		SELECT severity, message, metadata, created_at
		FROM system_alerts
		ORDER BY created_at DESC, id DESC
		LIMIT $1;`, limitArg)
	return alerts, err
}
