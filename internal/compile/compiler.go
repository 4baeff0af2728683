package compile

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"cdm-mapper/internal/cdm"
	"cdm-mapper/internal/diagnostic"
	"cdm-mapper/internal/match"
	"cdm-mapper/internal/ops"
	"cdm-mapper/internal/rules"
)

var (
	// ErrMalformedRule is returned when a destination field has no source
	// table or source field.
	ErrMalformedRule = errors.New("malformed rule document")
	// ErrUnknownOperation is returned when a rule names an operation that
	// is not registered.
	ErrUnknownOperation = errors.New("unknown operation")
)

// DefaultAutoMapThreshold only accepts names equal after normalization.
const DefaultAutoMapThreshold = 1.0

// Schema lists the columns of destination tables.
type Schema interface {
	Columns(table string) ([]string, bool)
}

// Options configures Compile.
type Options struct {
	// Operations resolves operation names; defaults to ops.Default().
	Operations rules.OperationSet
	// Schema lists destination columns; defaults to cdm.Default().
	Schema Schema
	// Catalog lists the loaded source columns. When set, fields whose
	// source is not loaded are skipped and auto-mapping becomes possible.
	Catalog rules.Catalog

	// Skip lists destination fields to leave out, either "field" for every
	// table or "table.field".
	Skip []string
	// OverrideTermMapping drops all term maps so source values are kept.
	OverrideTermMapping bool
	// AutoMap binds unmapped destination columns to equally named source
	// columns of the group's primary source table. Requires Catalog.
	AutoMap bool
	// AutoMapThreshold is the minimum name score for auto-mapping.
	AutoMapThreshold float64
}

type compiler struct {
	name  string
	opts  Options
	skip  map[string]bool
	diags *diagnostic.Diagnostics
}

// Compile compiles a rule document into a named Set. Missing bindings and
// unknown operations fail the whole compile; everything else is reported
// through the returned diagnostics.
func Compile(name string, doc *rules.Document, opts Options) (*Set, *diagnostic.Diagnostics, error) {
	if opts.Operations == nil {
		opts.Operations = ops.Default()
	}

	if opts.Schema == nil {
		opts.Schema = cdm.Default()
	}

	if opts.AutoMapThreshold <= 0 {
		opts.AutoMapThreshold = DefaultAutoMapThreshold
	}

	diags := rules.Validate(doc, opts.Catalog, opts.Operations)
	if diags.HasErrors() {
		return nil, diags, compileError(name, diags)
	}

	c := &compiler{name: name, opts: opts, skip: make(map[string]bool), diags: diags}
	for _, s := range opts.Skip {
		c.skip[strings.ToLower(strings.TrimSpace(s))] = true
	}

	set := &Set{Name: name, PersonIDs: lowerMap(doc.Metadata.PersonID)}

	for _, table := range doc.Tables() {
		columns, known := opts.Schema.Columns(table)
		if !known {
			diags.AddWarning("unknown_destination_table",
				fmt.Sprintf("%q is not a CDM table; its definitions will not be run", table), table, "")
		}

		for i, group := range doc.CDM[table] {
			def := c.group(table, i, group, columns, known)
			if def == nil {
				continue
			}

			def.PersonIDs = maps.Clone(set.PersonIDs)
			set.Definitions = append(set.Definitions, def)
		}
	}

	return set, diags, nil
}

func (c *compiler) group(table string, index int, group rules.RuleGroup, columns []string, known bool) *Definition {
	def := &Definition{
		Name:  DefinitionName(table, index),
		Set:   c.name,
		Table: table,
		Index: index,
	}

	for _, field := range group.Fields() {
		rule := group[field]

		if c.skipped(table, field) {
			c.diags.AddInfo("field_skipped", "field skipped by configuration", def.Name, field)
			continue
		}

		if c.opts.Catalog != nil && !c.opts.Catalog.Has(rule.SourceTable, rule.SourceField) {
			continue
		}

		if known && !slices.Contains(columns, field) {
			c.diags.AddWarning("unknown_destination_field",
				fmt.Sprintf("%q is not a column of %s and will be dropped", field, table), def.Name, field)
		}

		def.Bindings = append(def.Bindings, Binding{
			Field:       field,
			SourceTable: strings.ToLower(rule.SourceTable),
			SourceField: rule.SourceField,
		})

		for _, op := range rule.Operations {
			def.Operations = append(def.Operations, Step{Field: field, Operation: op})
		}

		if !rule.HasTermMapping() {
			continue
		}

		if c.opts.OverrideTermMapping {
			c.diags.AddInfo("term_mapping_overridden", "term mapping dropped, source values kept", def.Name, field)
			continue
		}

		def.TermMaps = append(def.TermMaps, TermMap{Field: field, Mapping: *rule.TermMapping})
	}

	if len(def.Bindings) == 0 {
		c.diags.AddInfo("empty_definition", "no bindings left; no mapping object created", def.Name, "")
		return nil
	}

	if c.opts.AutoMap && c.opts.Catalog != nil && known {
		c.autoMap(def, columns)
	}

	return def
}

// autoMap binds unmapped destination columns to the best matching column of
// the definition's primary source table.
func (c *compiler) autoMap(def *Definition, columns []string) {
	primary := def.PrimaryTable()
	sources := c.opts.Catalog[primary]
	bound := def.Fields()
	added := false

	for _, col := range columns {
		if slices.Contains(bound, col) || c.skipped(def.Table, col) {
			continue
		}

		best, ok := match.RankCandidates(col, sources).Best(c.opts.AutoMapThreshold)
		if !ok {
			continue
		}

		def.Bindings = append(def.Bindings, Binding{
			Field:       col,
			SourceTable: primary,
			SourceField: best.Source,
			Auto:        true,
		})
		added = true

		c.diags.AddInfo("auto_mapped",
			fmt.Sprintf("bound to %s.%s (score %.2f)", primary, best.Source, best.Score), def.Name, col)
	}

	if added {
		slices.SortStableFunc(def.Bindings, func(a, b Binding) int { return strings.Compare(a.Field, b.Field) })
	}
}

func (c *compiler) skipped(table, field string) bool {
	field = strings.ToLower(field)
	return c.skip[field] || c.skip[strings.ToLower(table)+"."+field]
}

func compileError(name string, diags *diagnostic.Diagnostics) error {
	sentinel := ErrUnknownOperation
	for _, d := range diags.Errors {
		if d.Code != "unknown_operation" {
			sentinel = ErrMalformedRule
			break
		}
	}

	return errors.Mark(errors.Wrapf(diags.Error(), "compiling %q", name), sentinel)
}

func lowerMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = strings.ToLower(v)
	}

	return out
}
