package engine

import (
	"context"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"cdm-mapper/internal/compile"
	"cdm-mapper/internal/frame"
	"cdm-mapper/internal/source"
)

// ErrNoInputs is returned when the engine is created without input tables.
var ErrNoInputs = source.ErrNoInputs

// Sink persists finalized tables. The first column of f is the row key.
type Sink interface {
	Write(ctx context.Context, table string, f *frame.Frame) error
}

// Engine executes the registered definitions against one input dataset.
type Engine struct {
	inputs   *source.Dataset
	registry *compile.Registry
	opts     Options
	logger   *zap.Logger
}

// New creates an engine and indexes the inputs by the person identifier
// columns declared by the registered sets. Indexing problems are logged and
// leave the affected table unindexed.
func New(inputs *source.Dataset, registry *compile.Registry, opts Options) (*Engine, error) {
	if inputs.Len() == 0 {
		return nil, errors.WithHint(ErrNoInputs, "load at least one input table before running")
	}

	if registry == nil {
		return nil, errors.New("engine needs a definition registry")
	}

	opts.setDefaults()

	e := &Engine{
		inputs:   inputs,
		registry: registry,
		opts:     opts,
		logger:   opts.Logger,
	}

	inputs.SetIndexing(registry.PersonIDs()).Log(e.logger)
	e.logger.Info("loaded inputs", zap.Strings("tables", inputs.Names()), zap.Int("max_rows", inputs.Rows()))

	for _, table := range registry.Tables() {
		if !slices.Contains(opts.Model.Order(), table) {
			e.logger.Warn("definitions for a table outside the CDM model are ignored", zap.String("table", table))
		}
	}

	return e, nil
}

// Inputs returns the engine's dataset.
func (e *Engine) Inputs() *source.Dataset {
	return e.inputs
}

// NewRun starts a run with a fresh masker.
func (e *Engine) NewRun() *Run {
	id := uuid.New().String()

	return &Run{
		ID:     id,
		engine: e,
		masker: NewMasker(),
		logger: e.logger.With(zap.String("run_id", id)),
	}
}

// TableSummary describes one written table.
type TableSummary struct {
	Table string
	Rows  int
}

// Summary describes a finished run.
type Summary struct {
	RunID   string
	Tables  []TableSummary
	Persons int
}

// Process runs every CDM table in model order and writes each non-empty
// result to sink. A nil sink only computes the tables.
func (e *Engine) Process(ctx context.Context, sink Sink) (*Summary, error) {
	run := e.NewRun()
	summary := &Summary{RunID: run.ID}

	for _, table := range e.opts.Model.Order() {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		f, err := run.RunTable(ctx, table)
		if err != nil {
			return summary, errors.Wrapf(err, "table %s", table)
		}

		if f == nil || f.Empty() {
			continue
		}

		if sink != nil {
			if err := sink.Write(ctx, table, f); err != nil {
				return summary, errors.Wrapf(err, "writing %s", table)
			}
		}

		summary.Tables = append(summary.Tables, TableSummary{Table: table, Rows: f.Len()})
	}

	summary.Persons = run.Masker().Len()
	run.logger.Info("run finished",
		zap.Int("tables", len(summary.Tables)), zap.Int("persons", summary.Persons))

	return summary, nil
}
