package engine

import (
	"go.uber.org/zap"

	"cdm-mapper/internal/cdm"
	"cdm-mapper/internal/coerce"
	"cdm-mapper/internal/ops"
)

// Options configures an Engine.
type Options struct {
	Logger     *zap.Logger
	Model      *cdm.Model
	Types      *coerce.Registry
	Operations *ops.Registry

	// MaskPersonID replaces person identifiers with 1..k.
	MaskPersonID bool
	// AutoMap fills derived columns such as year_of_birth.
	AutoMap bool
	// Parallelism is the number of objects executed concurrently.
	Parallelism int
	// ChunkSize splits inputs into row chunks; 0 disables chunking.
	ChunkSize int
	// MaxChunks caps the number of chunks processed; 0 means all.
	MaxChunks int
	// RaiseFormatErrors turns format warnings into a failed table.
	RaiseFormatErrors bool
}

// DefaultOptions returns the options used by the command line.
func DefaultOptions() Options {
	return Options{
		MaskPersonID: true,
		AutoMap:      true,
		Parallelism:  1,
	}
}

func (o *Options) setDefaults() {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}

	if o.Model == nil {
		o.Model = cdm.Default()
	}

	if o.Types == nil {
		o.Types = coerce.Default()
	}

	if o.Operations == nil {
		o.Operations = ops.Default()
	}

	if o.Parallelism < 1 {
		o.Parallelism = 1
	}
}
