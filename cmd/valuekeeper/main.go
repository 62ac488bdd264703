package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dynastyops/valuekeeper/config"

	"github.com/jessevdk/go-flags"
)

// Subcommand is the signature of a sub command that can be registered.
type Subcommand func(context.Context, *flags.Parser) error

// Register registers one or more subcommands.
func Register(ctx context.Context, parser *flags.Parser, cmds ...Subcommand) error {
	for _, fn := range cmds {
		if err := fn(ctx, parser); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	ctx := context.Background()
	if err := Main(ctx); err != nil {
		os.Exit(1)
	}
}

func Main(ctx context.Context) error {
	parser := flags.NewParser(&config.Empty{}, flags.Default)

	if err := Register(ctx, parser,
		Init,
		Load,
		Record,
		Snapshot,
		SnapshotsList,
		Restore,
		Verify,
		Compare,
		Volatility,
		Prune,
		Status,
		Watch,
	); err != nil {
		fmt.Printf("%+v\n", err)
		return err
	}

	if _, err := parser.Parse(); err != nil {
		if t, ok := err.(*flags.Error); ok && t.Type != flags.ErrHelp {
			parser.WriteHelp(os.Stdout)
		}
		return err
	}
	return nil
}
