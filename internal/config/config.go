package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"cdm-mapper/internal/compile"
	"cdm-mapper/internal/engine"
	"cdm-mapper/internal/rules"
	"cdm-mapper/internal/sink"
	"cdm-mapper/internal/source"
)

// Config is the run configuration.
type Config struct {
	OutputFolder   string `yaml:"output_folder"`
	DefinitionsDir string `yaml:"definitions_dir"`

	SkipFields              []string `yaml:"skip_fields"`
	MaskPersonID            bool     `yaml:"mask_person_id"`
	AutoMap                 bool     `yaml:"auto_map"`
	AutoMapThreshold        float64  `yaml:"auto_map_threshold"`
	ForceSourceValueMapping bool     `yaml:"force_source_value_mapping"`

	TrimSuffix bool `yaml:"trim_suffix"`
	StripName  int  `yaml:"strip_name"`
	ChunkSize  int  `yaml:"chunk_size"`
	MaxChunks  int  `yaml:"max_chunks"`

	Parallelism       int  `yaml:"parallelism"`
	RaiseFormatErrors bool `yaml:"raise_format_errors"`

	PostgresURL      string `yaml:"postgres_url"`
	PostgresSchema   string `yaml:"postgres_schema"`
	PostgresTruncate bool   `yaml:"postgres_truncate"`

	MetricsFile string `yaml:"metrics_file"`
	Verbose     bool   `yaml:"verbose"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		OutputFolder:     "output_data",
		DefinitionsDir:   "definitions",
		MaskPersonID:     true,
		AutoMap:          true,
		AutoMapThreshold: compile.DefaultAutoMapThreshold,
		Parallelism:      1,
	}
}

// Load reads a YAML configuration file over the defaults. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "reading config")
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config %s", path)
	}

	return cfg, cfg.Validate()
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch {
	case c.ChunkSize < 0:
		return errors.Newf("chunk_size must be >= 0, got %d", c.ChunkSize)
	case c.MaxChunks < 0:
		return errors.Newf("max_chunks must be >= 0, got %d", c.MaxChunks)
	case c.StripName < 0:
		return errors.Newf("strip_name must be >= 0, got %d", c.StripName)
	case c.Parallelism < 1:
		return errors.Newf("parallelism must be >= 1, got %d", c.Parallelism)
	case c.AutoMapThreshold < 0 || c.AutoMapThreshold > 1:
		return errors.Newf("auto_map_threshold must be within [0, 1], got %g", c.AutoMapThreshold)
	}

	return nil
}

// CompileOptions returns the rule compiler options. catalog may be nil.
func (c Config) CompileOptions(catalog rules.Catalog) compile.Options {
	return compile.Options{
		Catalog:             catalog,
		Skip:                c.SkipFields,
		OverrideTermMapping: c.ForceSourceValueMapping,
		AutoMap:             c.AutoMap,
		AutoMapThreshold:    c.AutoMapThreshold,
	}
}

// SourceOptions returns the input loader options.
func (c Config) SourceOptions(logger *zap.Logger) source.Options {
	return source.Options{
		TrimSuffix: c.TrimSuffix,
		StripName:  c.StripName,
		Logger:     logger,
	}
}

// EngineOptions returns the engine options.
func (c Config) EngineOptions(logger *zap.Logger) engine.Options {
	opts := engine.DefaultOptions()
	opts.Logger = logger
	opts.MaskPersonID = c.MaskPersonID
	opts.AutoMap = c.AutoMap
	opts.Parallelism = c.Parallelism
	opts.ChunkSize = c.ChunkSize
	opts.MaxChunks = c.MaxChunks
	opts.RaiseFormatErrors = c.RaiseFormatErrors

	return opts
}

// PostgresOptions returns the database sink options.
func (c Config) PostgresOptions(logger *zap.Logger) sink.PostgresOptions {
	return sink.PostgresOptions{
		Schema:   c.PostgresSchema,
		Truncate: c.PostgresTruncate,
		Logger:   logger,
	}
}
