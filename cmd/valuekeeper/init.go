package main

import (
	"context"
	"fmt"

	"github.com/dynastyops/valuekeeper/config"
	"github.com/dynastyops/valuekeeper/logging"
	"github.com/dynastyops/valuekeeper/sqlstore"

	"github.com/jessevdk/go-flags"
)

type InitCmd struct {
	config.HomeFlag

	Force bool `short:"f" long:"force" description:"Overwrite an existing configuration"`
	Wipe  bool `long:"wipe" description:"Drop and recreate the database schema"`
}

var initCmd InitCmd

func (opts *InitCmd) Execute(_ []string) error {
	logger := logging.NewLoggerFromConfig(logging.NewDefaultConfig())
	defer logger.AtExit()

	rootPath := opts.RootPath()

	cfg, err := config.Read(rootPath)
	switch {
	case err == nil && !opts.Force:
		// keep the existing file, still run the migrations below
	case err == nil && opts.Force, err != nil:
		defaults := config.NewDefaultConfig()
		if opts.Force {
			_ = config.Remove(rootPath)
		}
		path, werr := config.Write(rootPath, defaults)
		if werr != nil {
			return fmt.Errorf("couldn't save configuration file: %w", werr)
		}
		cfg = &defaults
		logger.Info("configuration generated successfully", logging.String("path", path))
	}

	if opts.Wipe {
		if err := sqlstore.WipeDatabaseAndMigrateSchemaToLatestVersion(logger, cfg.SQLStore); err != nil {
			return fmt.Errorf("couldn't recreate database schema: %w", err)
		}
	} else {
		if err := sqlstore.MigrateToLatestSchema(logger, cfg.SQLStore); err != nil {
			return fmt.Errorf("couldn't migrate database schema: %w", err)
		}
	}

	logger.Info("database schema is up to date")
	return nil
}

func Init(ctx context.Context, parser *flags.Parser) error {
	initCmd = InitCmd{}

	short := "Initializes the value keeper"
	long := "Generate the configuration file and bring the database schema up to date"

	_, err := parser.AddCommand("init", short, long, &initCmd)
	return err
}
