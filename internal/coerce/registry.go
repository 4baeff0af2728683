package coerce

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrUnknownType is returned when a type name has no coercion function.
var ErrUnknownType = errors.New("unknown CDM column type")

// Registry is an ordered mapping from type name to coercion function.
// Type names are case-insensitive. Besides exact names, a registry knows
// sized families such as VARCHAR(N) and resolves any N on demand.
type Registry struct {
	names    []string
	funcs    map[string]Func
	families map[string]func(n int) Func
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		funcs:    make(map[string]Func),
		families: make(map[string]func(n int) Func),
	}
}

// Default returns a registry with the CDM column types.
func Default() *Registry {
	r := NewRegistry()
	r.Register("INTEGER", Integer)
	r.Register("FLOAT", Float)
	r.Register("VARCHAR(60)", String(60))
	r.Register("VARCHAR(50)", String(50))
	r.Register("VARCHAR(20)", String(20))
	r.Register("VARCHAR(10)", String(10))
	r.Register("VARCHAR", String(0))
	r.Register("STRING(50)", String(50))
	r.Register("DATETIME", DateTime)
	r.Register("DATE", Date)
	r.RegisterFamily("VARCHAR", String)
	r.RegisterFamily("STRING", String)

	return r
}

// Register adds or replaces the coercion for an exact type name. A new name
// is appended to the registry order; a replaced name keeps its position.
func (r *Registry) Register(name string, fn Func) {
	key := canonical(name)
	if _, exists := r.funcs[key]; !exists {
		r.names = append(r.names, key)
	}

	r.funcs[key] = fn
}

// RegisterFamily adds a sized type family, e.g. "VARCHAR" for VARCHAR(N).
func (r *Registry) RegisterFamily(base string, fn func(n int) Func) {
	r.families[canonical(base)] = fn
}

// Names returns the exact type names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)

	return out
}

// Has returns true if the registry can resolve the type name.
func (r *Registry) Has(name string) bool {
	_, err := r.Lookup(name)
	return err == nil
}

// Lookup resolves a type name to its coercion function.
func (r *Registry) Lookup(name string) (Func, error) {
	key := canonical(name)
	if fn, ok := r.funcs[key]; ok {
		return fn, nil
	}

	base, n, sized := splitSized(key)
	if sized {
		if family, ok := r.families[base]; ok {
			return family(n), nil
		}
	}

	return nil, errors.Wrapf(ErrUnknownType, "%q", name)
}

// CoerceValue coerces a single cell.
func (r *Registry) CoerceValue(typeName string, v any) (Result, error) {
	fn, err := r.Lookup(typeName)
	if err != nil {
		return Result{}, err
	}

	return fn(v), nil
}

// Coerce coerces a whole column and reports what was degraded. The input
// slice is not modified.
func (r *Registry) Coerce(typeName string, column []any) ([]any, Report, error) {
	fn, err := r.Lookup(typeName)
	if err != nil {
		return nil, Report{}, err
	}

	report := Report{Type: canonical(typeName), Total: len(column)}
	out := make([]any, len(column))

	for i, v := range column {
		res := fn(v)
		out[i] = res.Value
		report.add(res.Reason)
	}

	return out, report, nil
}

// Report summarizes a column coercion.
type Report struct {
	Type   string
	Total  int
	Nulled map[NullReason]int
}

func (rep *Report) add(reason NullReason) {
	if reason == ReasonNone {
		return
	}

	if rep.Nulled == nil {
		rep.Nulled = make(map[NullReason]int)
	}

	rep.Nulled[reason]++
}

// Lost returns how many non-null inputs were degraded.
func (rep Report) Lost() int {
	return rep.Nulled[ReasonUnparsable] + rep.Nulled[ReasonOutOfRange]
}

func canonical(name string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), " ", ""))
}

// splitSized splits "VARCHAR(50)" into ("VARCHAR", 50).
func splitSized(name string) (string, int, bool) {
	open := strings.IndexByte(name, '(')
	if open <= 0 || !strings.HasSuffix(name, ")") {
		return "", 0, false
	}

	n, err := strconv.Atoi(name[open+1 : len(name)-1])
	if err != nil || n <= 0 {
		return "", 0, false
	}

	return name[:open], n, true
}
