package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dynastyops/valuekeeper/config"
	"github.com/dynastyops/valuekeeper/types"

	"github.com/jessevdk/go-flags"
)

type LoadCmd struct {
	config.HomeFlag

	Args struct {
		File string `positional-arg-name:"file" required:"true"`
	} `positional-args:"true"`

	ctx context.Context
}

var loadCmd LoadCmd

// Execute upserts the rows of an exported value set into the live tables.
// The file layout matches the snapshot payload, each section is optional.
func (opts *LoadCmd) Execute(_ []string) error {
	buf, err := os.ReadFile(opts.Args.File)
	if err != nil {
		return err
	}

	var payload types.SnapshotPayload
	if err := json.Unmarshal(buf, &payload); err != nil {
		return fmt.Errorf("decoding %s: %w", opts.Args.File, err)
	}
	if len(payload.Values) == 0 && len(payload.Players) == 0 && len(payload.Profiles) == 0 {
		return fmt.Errorf("%s holds no values, players or profiles", opts.Args.File)
	}

	app, err := newApp(opts.ctx, opts.RootPath())
	if err != nil {
		return err
	}
	defer app.Close()

	now := time.Now()
	for _, row := range payload.Values {
		if row.UpdatedAt.IsZero() {
			row.UpdatedAt = now
		}
		if err := app.values.Upsert(opts.ctx, row); err != nil {
			return fmt.Errorf("upserting value %s/%s: %w", row.AssetID, row.Scope, err)
		}
	}
	for _, row := range payload.Players {
		if err := app.players.Upsert(opts.ctx, row); err != nil {
			return fmt.Errorf("upserting player %s: %w", row.AssetID, err)
		}
	}
	for _, row := range payload.Profiles {
		if err := app.leagues.Upsert(opts.ctx, row); err != nil {
			return fmt.Errorf("upserting league profile %s: %w", row.LeagueID, err)
		}
	}

	fmt.Printf("loaded %d values, %d players, %d league profiles\n",
		len(payload.Values), len(payload.Players), len(payload.Profiles))
	return nil
}

func Load(ctx context.Context, parser *flags.Parser) error {
	loadCmd = LoadCmd{ctx: ctx}

	short := "Loads an exported row set into the live tables"
	long := "Upsert values, players and league profiles from a JSON export into the live tables"

	_, err := parser.AddCommand("load", short, long, &loadCmd)
	return err
}
