package ops

import (
	"slices"
	"strings"

	"cdm-mapper/internal/coerce"
	"cdm-mapper/internal/common"
)

// Func transforms a column. It must return a slice of the same length and
// must not modify its input.
type Func func(values []any) []any

// Registry holds operations by name, plus aliases.
type Registry struct {
	ops     map[string]Func
	aliases map[string]string
}

// NewRegistry creates an empty operation registry.
func NewRegistry() *Registry {
	return &Registry{
		ops:     make(map[string]Func),
		aliases: make(map[string]string),
	}
}

// Default returns a registry with the built-in operations.
func Default() *Registry {
	r := NewRegistry()
	r.Add("get_year", dateComponent(func(y, _, _ int) int { return y }))
	r.Add("get_month", dateComponent(func(_, m, _ int) int { return m }))
	r.Add("get_day", dateComponent(func(_, _, d int) int { return d }))
	r.Add("get_datetime", cellwise(func(v any) any { return coerce.DateTime(v).Value }))
	r.Add("get_date", cellwise(func(v any) any { return coerce.Date(v).Value }))
	r.Add("lower", text(strings.ToLower))
	r.Add("upper", text(strings.ToUpper))
	r.Add("strip", text(strings.TrimSpace))

	r.Alias("extract year", "get_year")
	r.Alias("extract month", "get_month")
	r.Alias("extract day", "get_day")
	r.Alias("get datetime", "get_datetime")
	r.Alias("get date", "get_date")

	return r
}

// Add adds or replaces an operation.
func (r *Registry) Add(name string, fn Func) {
	r.ops[normalize(name)] = fn
}

// Alias makes alias resolve to the operation registered as name.
func (r *Registry) Alias(alias, name string) {
	r.aliases[normalize(alias)] = normalize(name)
}

// Get returns an operation by name or alias, or nil if not found.
func (r *Registry) Get(name string) Func {
	key := normalize(name)
	if target, ok := r.aliases[key]; ok {
		key = target
	}

	return r.ops[key]
}

// Has returns true if an operation with the given name or alias exists.
func (r *Registry) Has(name string) bool {
	return r.Get(name) != nil
}

// Names returns all operation names (without aliases), sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// MakeScalar returns a column of n copies of v. It implements the scalar
// form of a term mapping.
func MakeScalar(n int, v any) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = v
	}

	return out
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func cellwise(fn func(any) any) Func {
	return func(values []any) []any {
		out := make([]any, len(values))
		for i, v := range values {
			if common.IsNull(v) {
				continue
			}

			out[i] = fn(v)
		}

		return out
	}
}

func dateComponent(pick func(y, m, d int) int) Func {
	return cellwise(func(v any) any {
		t, reason := coerce.ParseTime(v)
		if reason != coerce.ReasonNone {
			return nil
		}

		return int64(pick(t.Year(), int(t.Month()), t.Day()))
	})
}

func text(fn func(string) string) Func {
	return cellwise(func(v any) any {
		return fn(common.Format(v))
	})
}
