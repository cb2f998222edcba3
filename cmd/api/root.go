package main

import (
	"context"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"recipebook/internal/platform/config"
	"recipebook/internal/platform/database"
	"recipebook/internal/platform/logging"
)

// rootOptions holds global flags for all commands.
type rootOptions struct {
	ConfigPath string
	EnvFile    string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "recipebook",
		Short:         "Recipe book API",
		Long:          "A CRUD API for cooking recipes, their ingredients and recipe search.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "config.yaml", "path to the YAML config file")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "path to the .env file")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newMigrateCommand(opts))

	return cmd
}

// setup loads the configuration, installs the default logger and opens the database.
func setup(ctx context.Context, opts *rootOptions) (*config.Config, *slog.Logger, *sqlx.DB, error) {
	cfg, err := config.Load(opts.ConfigPath, opts.EnvFile)
	if err != nil {
		return nil, nil, nil, err
	}

	logger := logging.SetDefault("recipebook", version, cfg.Log.Level)

	db, err := database.Open(ctx, cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, db, nil
}
