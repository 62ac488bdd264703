package main

import (
	"context"
	"fmt"

	"github.com/dynastyops/valuekeeper/config"
	"github.com/dynastyops/valuekeeper/types"

	"github.com/jessevdk/go-flags"
)

type SnapshotCmd struct {
	config.HomeFlag

	Type  string `long:"type" default:"full" description:"Snapshot type: values, registry, profiles or full"`
	Epoch string `long:"epoch" description:"Tag the snapshot with this epoch"`

	ctx context.Context
}

var snapshotCmd SnapshotCmd

func (opts *SnapshotCmd) Execute(_ []string) error {
	snapshotType, err := types.ParseSnapshotType(opts.Type)
	if err != nil {
		return err
	}

	app, err := newApp(opts.ctx, opts.RootPath())
	if err != nil {
		return err
	}
	defer app.Close()

	snap, err := app.snapshot.Create(opts.ctx, snapshotType, types.Epoch(opts.Epoch))
	if err != nil {
		return err
	}

	fmt.Printf("snapshot created: %s\n", snap.ID)
	fmt.Printf("  type:       %s\n", snap.Type)
	if snap.Epoch != "" {
		fmt.Printf("  epoch:      %s\n", snap.Epoch)
	}
	for _, sec := range snap.Type.Sections() {
		fmt.Printf("  %-10s %d rows\n", string(sec)+":", snap.Stats[string(sec)])
	}
	fmt.Printf("  size:       %d bytes\n", snap.Size)
	fmt.Printf("  expires at: %s\n", snap.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
	return nil
}

func Snapshot(ctx context.Context, parser *flags.Parser) error {
	snapshotCmd = SnapshotCmd{ctx: ctx}

	short := "Captures a snapshot of live state"
	long := "Capture the selected sections of live state into a retention bounded snapshot"

	_, err := parser.AddCommand("snapshot", short, long, &snapshotCmd)
	return err
}
