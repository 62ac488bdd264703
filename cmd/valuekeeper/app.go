package main

import (
	"context"
	"fmt"

	"github.com/dynastyops/valuekeeper/config"
	"github.com/dynastyops/valuekeeper/ledger"
	"github.com/dynastyops/valuekeeper/logging"
	"github.com/dynastyops/valuekeeper/metrics"
	"github.com/dynastyops/valuekeeper/rollback"
	"github.com/dynastyops/valuekeeper/snapshot"
	"github.com/dynastyops/valuekeeper/sqlstore"
	"github.com/dynastyops/valuekeeper/verify"
)

// app wires the engines over the sql stores for one command invocation.
type app struct {
	cfg config.Config
	log *logging.Logger

	conn *sqlstore.ConnectionSource

	values    *sqlstore.Values
	players   *sqlstore.Players
	leagues   *sqlstore.Leagues
	versioned *sqlstore.VersionedValues
	checksums *sqlstore.Checksums
	snapshots *sqlstore.Snapshots
	rollbacks *sqlstore.Rollbacks
	safeMode  *sqlstore.SafeMode
	alerts    *sqlstore.Alerts

	ledger   *ledger.Engine
	snapshot *snapshot.Engine
	verify   *verify.Engine
	rollback *rollback.Engine
}

func newApp(ctx context.Context, rootPath string) (*app, error) {
	cfg, err := config.Read(rootPath)
	if err != nil {
		return nil, fmt.Errorf("couldn't read configuration, run init first: %w", err)
	}

	log := logging.NewLoggerFromConfig(cfg.Logging)

	if err := metrics.Setup(); err != nil {
		return nil, err
	}
	if bool(cfg.Metrics.Enabled) {
		go metrics.Start(cfg.Metrics)
	}

	conn, err := sqlstore.NewConnectionSource(ctx, log, cfg.SQLStore)
	if err != nil {
		log.AtExit()
		return nil, err
	}

	a := &app{
		cfg:  *cfg,
		log:  log,
		conn: conn,

		values:    sqlstore.NewValues(conn),
		players:   sqlstore.NewPlayers(conn),
		leagues:   sqlstore.NewLeagues(conn),
		versioned: sqlstore.NewVersionedValues(conn),
		checksums: sqlstore.NewChecksums(conn),
		snapshots: sqlstore.NewSnapshots(conn),
		rollbacks: sqlstore.NewRollbacks(conn),
		safeMode:  sqlstore.NewSafeMode(conn),
		alerts:    sqlstore.NewAlerts(conn),
	}

	a.ledger = ledger.New(log, cfg.Ledger, a.values, a.versioned, a.checksums)
	a.snapshot = snapshot.New(log, cfg.Snapshot, a.values, a.players, a.leagues, a.snapshots)
	a.verify = verify.New(log, cfg.Verify, a.versioned, a.checksums)
	a.rollback = rollback.New(log, cfg.Rollback,
		a.snapshot, a.values, a.players, a.leagues, a.safeMode, a.rollbacks, a.alerts)

	return a, nil
}

func (a *app) Close() {
	a.conn.Close()
	a.log.AtExit()
}
