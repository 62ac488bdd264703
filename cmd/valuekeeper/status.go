package main

import (
	"context"
	"fmt"

	"github.com/dynastyops/valuekeeper/config"

	"github.com/jessevdk/go-flags"
)

type StatusCmd struct {
	config.HomeFlag

	Epochs int `long:"epochs" default:"10" description:"How many recent epochs to list"`

	ctx context.Context
}

var statusCmd StatusCmd

func (opts *StatusCmd) Execute(_ []string) error {
	app, err := newApp(opts.ctx, opts.RootPath())
	if err != nil {
		return err
	}
	defer app.Close()

	epochs, err := app.versioned.ListEpochs(opts.ctx, opts.Epochs)
	if err != nil {
		return err
	}
	fmt.Printf("recent epochs (%d):\n", len(epochs))
	for _, epoch := range epochs {
		fmt.Printf("  %s\n", epoch)
	}

	stats, err := app.snapshot.StorageStatistics(opts.ctx)
	if err != nil {
		return err
	}
	fmt.Printf("snapshots: %d (%d bytes)\n", stats.TotalCount, stats.TotalBytes)
	for snapshotType, typeStats := range stats.ByType {
		fmt.Printf("  %-10s %3d snapshots, %d bytes, newest %s\n",
			snapshotType, typeStats.Count, typeStats.Bytes,
			typeStats.Newest.Format("2006-01-02 15:04:05"))
	}

	safeMode, err := app.rollback.SafeModeState(opts.ctx)
	if err != nil {
		return err
	}
	if safeMode.Enabled {
		fmt.Printf("safe mode: ENABLED (%s)\n", safeMode.Reason)
	} else {
		fmt.Println("safe mode: disabled")
	}

	latest, err := app.rollback.Latest(opts.ctx)
	if err != nil {
		return err
	}
	if latest == nil {
		fmt.Println("rollbacks: none recorded")
	} else {
		outcome := "FAILED"
		if latest.Success {
			outcome = "succeeded"
		}
		fmt.Printf("last rollback: %s at %s (snapshot %s, %d rows)\n",
			outcome, latest.CreatedAt.Format("2006-01-02 15:04:05"),
			latest.SnapshotID, latest.RowsAffected)
	}

	alerts, err := app.alerts.List(opts.ctx, 5)
	if err != nil {
		return err
	}
	for _, alert := range alerts {
		fmt.Printf("alert [%s] %s: %s\n",
			alert.Severity, alert.CreatedAt.Format("2006-01-02 15:04:05"), alert.Message)
	}
	return nil
}

func Status(ctx context.Context, parser *flags.Parser) error {
	statusCmd = StatusCmd{ctx: ctx}

	short := "Prints the subsystem status"
	long := "Show recent epochs, snapshot storage statistics, the safe mode flag and the latest rollback"

	_, err := parser.AddCommand("status", short, long, &statusCmd)
	return err
}
