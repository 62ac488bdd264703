package main

import (
	"context"
	"fmt"

	"github.com/dynastyops/valuekeeper/config"
	"github.com/dynastyops/valuekeeper/types"

	"github.com/jessevdk/go-flags"
)

type RecordCmd struct {
	config.HomeFlag

	Epoch string `long:"epoch" description:"Record under this epoch instead of generating one"`

	ctx context.Context
}

var recordCmd RecordCmd

func (opts *RecordCmd) Execute(_ []string) error {
	app, err := newApp(opts.ctx, opts.RootPath())
	if err != nil {
		return err
	}
	defer app.Close()

	var epochs []types.Epoch
	if opts.Epoch != "" {
		epochs = append(epochs, types.Epoch(opts.Epoch))
	}

	result, err := app.ledger.Record(opts.ctx, epochs...)
	if err != nil {
		return err
	}
	if result == nil {
		fmt.Println("nothing recorded, no computed values were available")
		return nil
	}

	fmt.Printf("recorded epoch %s\n", result.Epoch)
	fmt.Printf("  rows:     %d\n", result.RowsInserted)
	fmt.Printf("  checksum: %s\n", result.Checksum)
	return nil
}

func Record(ctx context.Context, parser *flags.Parser) error {
	recordCmd = RecordCmd{ctx: ctx}

	short := "Records the current value set as a new epoch"
	long := "Append the current computed value set into versioned history under a new epoch, with a checksum record"

	_, err := parser.AddCommand("record", short, long, &recordCmd)
	return err
}
