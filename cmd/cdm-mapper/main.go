// Package main provides the CLI entrypoint for cdm-mapper.
//
// cdm-mapper converts clinical source datasets into OMOP CDM tables:
//   - show: prints a rule document in canonical JSON
//   - compile: compiles a rule document into mapping object definitions
//   - list: lists compiled definition sets
//   - run: loads CSV inputs, runs the mapping objects and saves CDM tables
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cdm-mapper/internal/config"
)

type globalFlags struct {
	configFile string
	verbose    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "cdm-mapper",
		Short:         "Map clinical source datasets onto the OMOP common data model",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "YAML configuration file")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "verbose (debug) logging")

	root.AddCommand(
		newShowCmd(),
		newCompileCmd(flags),
		newListCmd(flags),
		newRunCmd(flags),
	)

	return root
}

// setup loads the configuration and builds the logger.
func (g *globalFlags) setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(g.configFile)
	if err != nil {
		return cfg, nil, err
	}

	if g.verbose {
		cfg.Verbose = true
	}

	var logger *zap.Logger
	if cfg.Verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}

	if err != nil {
		return cfg, nil, err
	}

	return cfg, logger, nil
}
