package main

import (
	"context"
	"fmt"

	"github.com/dynastyops/valuekeeper/config"
	"github.com/dynastyops/valuekeeper/types"

	"github.com/jessevdk/go-flags"
)

type CompareCmd struct {
	config.HomeFlag

	Top int `long:"top" default:"20" description:"How many of the largest moves to print"`

	Args struct {
		EpochA string `positional-arg-name:"epoch-a" required:"true"`
		EpochB string `positional-arg-name:"epoch-b" required:"true"`
	} `positional-args:"true"`

	ctx context.Context
}

var compareCmd CompareCmd

func (opts *CompareCmd) Execute(_ []string) error {
	app, err := newApp(opts.ctx, opts.RootPath())
	if err != nil {
		return err
	}
	defer app.Close()

	cmp, err := app.verify.CompareEpochs(opts.ctx,
		types.Epoch(opts.Args.EpochA), types.Epoch(opts.Args.EpochB))
	if err != nil {
		return err
	}

	fmt.Printf("comparing %s -> %s\n", cmp.EpochA, cmp.EpochB)
	fmt.Printf("  added:     %d\n", cmp.Added)
	fmt.Printf("  removed:   %d\n", cmp.Removed)
	fmt.Printf("  changed:   %d\n", cmp.Changed)
	fmt.Printf("  unchanged: %d\n", cmp.Unchanged)

	if len(cmp.Changes) == 0 {
		return nil
	}

	top := opts.Top
	if top <= 0 || top > len(cmp.Changes) {
		top = len(cmp.Changes)
	}
	fmt.Println("largest moves:")
	for _, change := range cmp.Changes[:top] {
		delta := change.Change.String()
		if change.Change.IsPositive() {
			delta = "+" + delta
		}
		fmt.Printf("  %-24s %-8s %10s -> %-10s (%s)\n",
			change.AssetID, change.Scope,
			change.OldValue.String(), change.NewValue.String(), delta)
	}
	return nil
}

func Compare(ctx context.Context, parser *flags.Parser) error {
	compareCmd = CompareCmd{ctx: ctx}

	short := "Compares the value sets of two epochs"
	long := "Diff the versioned value sets of two epochs and print the largest moves by absolute change"

	_, err := parser.AddCommand("compare", short, long, &compareCmd)
	return err
}
