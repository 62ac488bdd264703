package main

import (
	"context"
	"fmt"

	"github.com/dynastyops/valuekeeper/config"
	"github.com/dynastyops/valuekeeper/types"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

type RestoreCmd struct {
	config.HomeFlag

	SnapshotID string `long:"snapshot" description:"ID of the snapshot to restore from"`
	Epoch      string `long:"epoch" description:"Restore from the most recent snapshot tagged with this epoch"`
	Reason     string `long:"reason" required:"true" description:"Why this restore is happening, recorded in the audit trail"`
	Initiator  string `long:"initiator" description:"Who triggered the restore"`

	ctx context.Context
}

var restoreCmd RestoreCmd

func (opts *RestoreCmd) Execute(_ []string) error {
	if (opts.SnapshotID == "") == (opts.Epoch == "") {
		return errors.New("exactly one of --snapshot or --epoch must be given")
	}

	app, err := newApp(opts.ctx, opts.RootPath())
	if err != nil {
		return err
	}
	defer app.Close()

	var result *types.RollbackResult
	if opts.SnapshotID != "" {
		result, err = app.rollback.ToSnapshot(opts.ctx, opts.SnapshotID, opts.Reason, opts.Initiator)
	} else {
		result, err = app.rollback.ToEpoch(opts.ctx, types.Epoch(opts.Epoch), opts.Reason, opts.Initiator)
	}

	if result != nil {
		printRollbackResult(result)
	}
	return err
}

func printRollbackResult(result *types.RollbackResult) {
	if result.Success {
		fmt.Println("restore complete")
	} else {
		fmt.Printf("restore FAILED: %s\n", result.ErrorMessage)
	}
	fmt.Printf("  snapshot:      %s\n", result.SnapshotID)
	if result.PreRollbackSnapshotID != "" {
		fmt.Printf("  pre-rollback:  %s\n", result.PreRollbackSnapshotID)
	}
	if result.TargetEpoch != "" {
		fmt.Printf("  target epoch:  %s\n", result.TargetEpoch)
	}
	fmt.Printf("  rows affected: %d\n", result.RowsAffected)
	if len(result.RestoredSections) > 0 {
		fmt.Printf("  restored:     ")
		for _, sec := range result.RestoredSections {
			fmt.Printf(" %s", sec)
		}
		fmt.Println()
	}
	fmt.Printf("  duration:      %s\n", result.Duration)
}

func Restore(ctx context.Context, parser *flags.Parser) error {
	restoreCmd = RestoreCmd{ctx: ctx}

	short := "Restores live state from a snapshot"
	long := "Replace live tables with the contents of a snapshot, taking a full safety snapshot first and recording the attempt in the audit trail"

	_, err := parser.AddCommand("restore", short, long, &restoreCmd)
	return err
}
