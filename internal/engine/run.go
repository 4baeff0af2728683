package engine

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cdm-mapper/internal/compile"
	"cdm-mapper/internal/diagnostic"
	"cdm-mapper/internal/frame"
	"cdm-mapper/internal/mapper"
	"cdm-mapper/internal/source"
)

// Run is one pipeline invocation. It owns the masker, so identifiers are
// masked consistently across all tables of the run and never beyond it.
type Run struct {
	ID string

	engine *Engine
	masker *Masker
	logger *zap.Logger
}

// Masker returns the run's masker.
func (r *Run) Masker() *Masker {
	return r.masker
}

type execResult struct {
	frame *frame.Frame
	diags *diagnostic.Diagnostics
}

// RunTable produces one destination table. It returns nil when the table
// has no mapping objects or all of them produced zero rows.
func (r *Run) RunTable(ctx context.Context, table string) (*frame.Frame, error) {
	opts := r.engine.opts
	logger := r.logger.With(zap.String("table", table))
	start := time.Now()

	schema, err := opts.Model.Table(table)
	if err != nil {
		return nil, err
	}

	defs := r.engine.registry.ForTable(table)
	logger.Info("discovered mapping objects", zap.Int("objects", len(defs)))

	if len(defs) == 0 {
		return nil, nil
	}

	objects := make([]*mapper.Object, len(defs))
	for i, def := range defs {
		objects[i] = mapper.New(def, opts.Operations)

		if ce := logger.Check(zap.DebugLevel, "mapping object definition"); ce != nil {
			ce.Write(zap.String("object", def.Name), zap.String("definition", compile.Dump(def)))
		}
	}

	results, err := r.execute(ctx, objects)
	if err != nil {
		return nil, err
	}

	parts := make([]*frame.Frame, 0, len(objects))
	for i, obj := range objects {
		chunks := make([]*frame.Frame, len(results[i]))
		for k, res := range results[i] {
			res.diags.Log(logger)
			chunks[k] = res.frame
		}

		out := frame.Concat(chunks...)
		objectsExecuted.WithLabelValues(table).Inc()
		logger.Info("finished mapping object",
			zap.String("object", obj.Name()), zap.Int("index", i), zap.Int("rows", out.Len()))

		if out.Len() == 0 {
			objectsEmpty.WithLabelValues(table).Inc()
			logger.Warn("mapping object produced no rows", zap.String("object", obj.Name()))

			continue
		}

		parts = append(parts, out)
	}

	if len(parts) == 0 {
		logger.Warn("no mapping object produced rows; table omitted")
		return nil, nil
	}

	merged := frame.Concat(parts...)
	logger.Info("merged mapping objects", zap.Int("objects", len(parts)), zap.Int("rows", merged.Len()))

	if opts.MaskPersonID {
		if err := r.masker.Mask(merged); err != nil {
			return nil, errors.Wrap(err, "masking person_id")
		}
	}

	if opts.AutoMap {
		filled, err := schema.Derive(merged, opts.Operations)
		if err != nil {
			return nil, err
		}

		if len(filled) > 0 {
			logger.Info("derived columns", zap.Strings("columns", filled))
		}
	}

	if dropped := schema.Extraneous(merged); len(dropped) > 0 {
		logger.Warn("dropping columns outside the CDM table", zap.Strings("columns", dropped))
	}

	final, err := schema.Finalize(merged)
	if err != nil {
		return nil, err
	}

	formatted, err := schema.Format(final, opts.Types, opts.RaiseFormatErrors)
	if formatted != nil {
		formatted.Diagnostics.Log(logger)

		for _, rep := range formatted.Reports {
			for reason, n := range rep.Nulled {
				valuesLost.WithLabelValues(table, rep.Column, reason.String()).Add(float64(n))
			}
		}
	}

	if err != nil {
		return nil, err
	}

	rowsProduced.WithLabelValues(table).Add(float64(formatted.Frame.Len()))
	tableDuration.WithLabelValues(table).Observe(time.Since(start).Seconds())

	return formatted.Frame, nil
}

// execute runs every object on every chunk of its primary table.
// results[i][k] is the output of object i on chunk k, independent of
// completion order.
func (r *Run) execute(ctx context.Context, objects []*mapper.Object) ([][]execResult, error) {
	opts := r.engine.opts

	chunks := make([][]*source.Chunk, len(objects))
	results := make([][]execResult, len(objects))

	for i, obj := range objects {
		chunks[i] = r.engine.inputs.Chunks(obj.Definition().PrimaryTable(), opts.ChunkSize, opts.MaxChunks)
		results[i] = make([]execResult, len(chunks[i]))
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallelism)

	for i, obj := range objects {
		for k, chunk := range chunks[i] {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}

				return runObject(obj, chunk, &results[i][k])
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func runObject(obj *mapper.Object, chunk *source.Chunk, res *execResult) error {
	f, diags, err := obj.Execute(chunk)
	if err != nil {
		return errors.Wrapf(err, "executing %s", obj.Name())
	}

	res.frame = f
	res.diags = diags

	return nil
}
