package main

import (
	"context"
	"fmt"

	"github.com/dynastyops/valuekeeper/config"
	"github.com/dynastyops/valuekeeper/types"

	"github.com/jessevdk/go-flags"
)

type PruneCmd struct {
	config.HomeFlag

	Type        string `long:"type" description:"Only prune snapshots of this type"`
	BeforeEpoch string `long:"before-epoch" description:"Also drop versioned history older than this epoch"`

	ctx context.Context
}

var pruneCmd PruneCmd

func (opts *PruneCmd) Execute(_ []string) error {
	app, err := newApp(opts.ctx, opts.RootPath())
	if err != nil {
		return err
	}
	defer app.Close()

	snapshotTypes := []types.SnapshotType{
		types.SnapshotTypeValues,
		types.SnapshotTypeRegistry,
		types.SnapshotTypeProfiles,
		types.SnapshotTypeFull,
	}
	if opts.Type != "" {
		t, err := types.ParseSnapshotType(opts.Type)
		if err != nil {
			return err
		}
		snapshotTypes = []types.SnapshotType{t}
	}

	for _, t := range snapshotTypes {
		if err := app.snapshot.CleanupOld(opts.ctx, t); err != nil {
			return fmt.Errorf("pruning %s snapshots: %w", t, err)
		}
	}
	fmt.Println("snapshot retention applied")

	if opts.BeforeEpoch != "" {
		epoch := types.Epoch(opts.BeforeEpoch)
		if err := epoch.Validate(); err != nil {
			return err
		}
		removed, err := app.versioned.DeleteBefore(opts.ctx, epoch)
		if err != nil {
			return fmt.Errorf("pruning versioned history: %w", err)
		}
		fmt.Printf("removed %d versioned rows older than %s\n", removed, epoch)
	}
	return nil
}

func Prune(ctx context.Context, parser *flags.Parser) error {
	pruneCmd = PruneCmd{ctx: ctx}

	short := "Applies retention to snapshots and versioned history"
	long := "Remove expired snapshots, trim each type to its keep count and optionally drop old versioned history"

	_, err := parser.AddCommand("prune", short, long, &pruneCmd)
	return err
}
