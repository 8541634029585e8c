// main is the entry point of the Campus API application.
//
// COMMANDS:
//
//	campus-api serve   --config=config/local.yaml   run the HTTP server
//	campus-api migrate up|down|reset|status         manage the schema
//
// The config path can also come from the CONFIG_PATH environment variable.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/campus-api/internal/config"
	"github.com/aanand-mishra/campus-api/internal/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// cobra has already printed the error; the exit code is for CI.
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "campus-api",
		Short:        "CRUD API for users and their projects",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to the configuration YAML file")

	// load is shared by the subcommands: config first, then a logger that
	// matches cfg.Env.
	load := func() (*config.Config, *slog.Logger, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, nil, err
		}
		log := logger.New(cfg.Env, os.Stdout)
		slog.SetDefault(log)
		return cfg, log, nil
	}

	root.AddCommand(newServeCmd(load), newMigrateCmd(load))
	return root
}

type loadFunc func() (*config.Config, *slog.Logger, error)

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
