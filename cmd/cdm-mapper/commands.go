package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cdm-mapper/internal/compile"
	"cdm-mapper/internal/config"
	"cdm-mapper/internal/engine"
	"cdm-mapper/internal/rules"
	"cdm-mapper/internal/sink"
	"cdm-mapper/internal/source"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show RULES",
		Short: "Print a rule document as canonical JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := rules.LoadFile(args[0])
			if err != nil {
				return err
			}

			out, err := rules.MarshalJSON(doc)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))

			return err
		},
	}
}

func newCompileCmd(flags *globalFlags) *cobra.Command {
	var (
		name   string
		inputs []string
		dump   bool
	)

	cmd := &cobra.Command{
		Use:   "compile RULES",
		Short: "Compile a rule document into mapping object definitions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := flags.setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			var catalog rules.Catalog
			if len(inputs) > 0 {
				ds, err := source.LoadCSV(inputs, cfg.SourceOptions(logger))
				if err != nil {
					return err
				}

				catalog = ds.Catalog()
			}

			set, err := compileRules(args[0], name, cfg, catalog, logger)
			if err != nil {
				return err
			}

			if dump {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), compile.Dump(set))
			}

			for _, def := range set.Definitions {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d fields\n", def.Name, def.Table, len(def.Bindings))
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "definition set name (default: rule file name)")
	cmd.Flags().StringSliceVarP(&inputs, "inputs", "i", nil, "input CSV files used to check and auto-map source columns")
	cmd.Flags().BoolVar(&dump, "dump", false, "print the compiled definitions")

	return cmd
}

func newListCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List compiled definition sets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := flags.setup()
			if err != nil {
				return err
			}

			names, err := compile.ListSets(cfg.DefinitionsDir)
			if err != nil {
				return err
			}

			for _, name := range names {
				set, err := compile.LoadSet(filepath.Join(cfg.DefinitionsDir, name))
				if err != nil {
					return err
				}

				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d objects\n", set.Name, len(set.Definitions))
			}

			return nil
		},
	}
}

func newRunCmd(flags *globalFlags) *cobra.Command {
	var (
		rulesFile string
		setName   string
		inputDir  string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "run [INPUT.csv...]",
		Short: "Map input CSV files onto CDM tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := flags.setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if output != "" {
				cfg.OutputFolder = output
			}

			ds, err := loadInputs(args, inputDir, cfg, logger)
			if err != nil {
				return err
			}

			set, err := resolveSet(rulesFile, setName, cfg, ds, logger)
			if err != nil {
				return err
			}

			registry := compile.NewRegistry()
			if err := registry.RegisterSet(set); err != nil {
				return err
			}

			return process(cmd.Context(), cfg, ds, registry, logger)
		},
	}

	cmd.Flags().StringVarP(&rulesFile, "rules", "r", "", "rule document to compile and run")
	cmd.Flags().StringVarP(&setName, "name", "n", "", "compiled definition set to run (or name for --rules)")
	cmd.Flags().StringVarP(&inputDir, "input-dir", "d", "", "directory of input CSV files")
	cmd.Flags().StringVarP(&output, "output-folder", "o", "", "output folder for CDM tables")

	return cmd
}

func loadInputs(paths []string, dir string, cfg config.Config, logger *zap.Logger) (*source.Dataset, error) {
	if dir != "" {
		return source.LoadDir(dir, cfg.SourceOptions(logger))
	}

	return source.LoadCSV(paths, cfg.SourceOptions(logger))
}

// resolveSet compiles the rule document when given, reducing the inputs to
// the referenced columns, or loads a previously compiled set.
func resolveSet(
	rulesFile, name string,
	cfg config.Config,
	ds *source.Dataset,
	logger *zap.Logger,
) (*compile.Set, error) {
	if rulesFile == "" {
		if name == "" {
			return nil, errors.New("either --rules or --name is required")
		}

		return compile.LoadSet(filepath.Join(cfg.DefinitionsDir, name))
	}

	doc, err := rules.LoadFile(rulesFile)
	if err != nil {
		return nil, err
	}

	if !cfg.AutoMap {
		ds.Reduce(doc.SourceFields(), doc.Metadata.PersonID).Log(logger)
	}

	return compileDocument(doc, setNameFor(rulesFile, name), cfg, ds.Catalog(), logger)
}

func compileRules(path, name string, cfg config.Config, catalog rules.Catalog, logger *zap.Logger) (*compile.Set, error) {
	doc, err := rules.LoadFile(path)
	if err != nil {
		return nil, err
	}

	return compileDocument(doc, setNameFor(path, name), cfg, catalog, logger)
}

// compileDocument compiles doc and stores the definitions so later runs can
// reuse them by name.
func compileDocument(
	doc *rules.Document,
	name string,
	cfg config.Config,
	catalog rules.Catalog,
	logger *zap.Logger,
) (*compile.Set, error) {
	set, diags, err := compile.Compile(name, doc, cfg.CompileOptions(catalog))
	diags.Log(logger)

	if err != nil {
		return nil, err
	}

	dir := filepath.Join(cfg.DefinitionsDir, name)
	if err := compile.WriteSet(set, dir); err != nil {
		return nil, err
	}

	logger.Info("compiled rules",
		zap.String("set", name), zap.Int("objects", len(set.Definitions)), zap.String("dir", dir))

	return set, nil
}

func setNameFor(path, name string) string {
	if name != "" {
		return name
	}

	base := filepath.Base(path)

	return strings.TrimSuffix(base, filepath.Ext(base))
}

func process(
	ctx context.Context,
	cfg config.Config,
	ds *source.Dataset,
	registry *compile.Registry,
	logger *zap.Logger,
) error {
	e, err := engine.New(ds, registry, cfg.EngineOptions(logger))
	if err != nil {
		return err
	}

	sinks := multiSink{sink.NewCSVDir(cfg.OutputFolder, logger)}

	if cfg.PostgresURL != "" {
		pg, conn, err := sink.ConnectPostgres(ctx, cfg.PostgresURL, cfg.PostgresOptions(logger))
		if err != nil {
			return err
		}
		defer func() { _ = conn.Close(ctx) }()

		sinks = append(sinks, pg)
	}

	summary, err := e.Process(ctx, sinks)
	if err != nil {
		return err
	}

	for _, t := range summary.Tables {
		logger.Info("table written", zap.String("table", t.Table), zap.Int("rows", t.Rows))
	}

	if cfg.MetricsFile != "" {
		return engine.WriteMetrics(cfg.MetricsFile)
	}

	return nil
}
