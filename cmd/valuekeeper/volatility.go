package main

import (
	"context"
	"fmt"

	"github.com/dynastyops/valuekeeper/config"
	"github.com/dynastyops/valuekeeper/types"

	"github.com/jessevdk/go-flags"
)

type VolatilityCmd struct {
	config.HomeFlag

	Scope  string `long:"scope" default:"dynasty" choice:"dynasty" choice:"redraft" description:"Valuation scope to report on"`
	Window int    `long:"window" description:"How many recent epochs to look at, zero uses the configured default"`

	Args struct {
		AssetID string `positional-arg-name:"asset-id" required:"true"`
	} `positional-args:"true"`

	ctx context.Context
}

var volatilityCmd VolatilityCmd

func (opts *VolatilityCmd) Execute(_ []string) error {
	app, err := newApp(opts.ctx, opts.RootPath())
	if err != nil {
		return err
	}
	defer app.Close()

	report, err := app.verify.Volatility(opts.ctx,
		opts.Args.AssetID, types.Scope(opts.Scope), opts.Window)
	if err != nil {
		return err
	}

	fmt.Printf("volatility for %s (%s)\n", report.AssetID, report.Scope)
	fmt.Printf("  epochs:         %d\n", report.Epochs)
	if report.Epochs < 2 {
		fmt.Println("  not enough history to measure movement")
		return nil
	}
	fmt.Printf("  max rise:       %s\n", report.MaxRise)
	fmt.Printf("  max fall:       %s\n", report.MaxFall)
	fmt.Printf("  mean abs move:  %s\n", report.Volatility)
	return nil
}

func Volatility(ctx context.Context, parser *flags.Parser) error {
	volatilityCmd = VolatilityCmd{ctx: ctx}

	short := "Reports value volatility for one asset"
	long := "Measure the largest rise, largest fall and mean absolute move of one asset's value over recent epochs"

	_, err := parser.AddCommand("volatility", short, long, &volatilityCmd)
	return err
}
