package coerce

//go:generate go tool stringer -type=NullReason -trimprefix=Reason -output=nullreason_string.go

// NullReason tags why a coerced cell is null (or empty for text types).
type NullReason int

const (
	// ReasonNone means the value was coerced successfully.
	ReasonNone NullReason = iota
	// ReasonMissing means the input cell was already null.
	ReasonMissing
	// ReasonUnparsable means the input could not be parsed as the target type.
	ReasonUnparsable
	// ReasonOutOfRange means the input parsed but does not fit the target type.
	ReasonOutOfRange
)

// Result is the outcome of coercing one cell.
type Result struct {
	Value  any
	Reason NullReason
}

// Lost reports whether a non-null input was degraded by coercion.
func (r Result) Lost() bool {
	return r.Reason == ReasonUnparsable || r.Reason == ReasonOutOfRange
}

func ok(v any) Result {
	return Result{Value: v}
}

func null(reason NullReason) Result {
	return Result{Reason: reason}
}
