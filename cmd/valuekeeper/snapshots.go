package main

import (
	"context"
	"fmt"

	"github.com/dynastyops/valuekeeper/config"
	"github.com/dynastyops/valuekeeper/types"

	"github.com/jessevdk/go-flags"
)

type SnapshotsCmd struct {
	config.HomeFlag

	Type  string `long:"type" description:"Only list snapshots of this type"`
	Limit int    `long:"limit" default:"20" description:"How many snapshots to list, zero for all"`

	ctx context.Context
}

var snapshotsCmd SnapshotsCmd

func (opts *SnapshotsCmd) Execute(_ []string) error {
	var filter *types.SnapshotType
	if opts.Type != "" {
		t, err := types.ParseSnapshotType(opts.Type)
		if err != nil {
			return err
		}
		filter = &t
	}

	app, err := newApp(opts.ctx, opts.RootPath())
	if err != nil {
		return err
	}
	defer app.Close()

	snaps, err := app.snapshot.List(opts.ctx, filter, opts.Limit)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		fmt.Println("no snapshots stored")
		return nil
	}

	for _, snap := range snaps {
		epoch := string(snap.Epoch)
		if epoch == "" {
			epoch = "-"
		}
		fmt.Printf("%s  %-10s %-16s %10d bytes  created %s  expires %s\n",
			snap.ID, snap.Type, epoch, snap.Size,
			snap.CreatedAt.Format("2006-01-02 15:04:05"),
			snap.ExpiresAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func SnapshotsList(ctx context.Context, parser *flags.Parser) error {
	snapshotsCmd = SnapshotsCmd{ctx: ctx}

	short := "Lists stored snapshots"
	long := "List stored snapshots newest first, optionally filtered by type"

	_, err := parser.AddCommand("snapshots", short, long, &snapshotsCmd)
	return err
}
