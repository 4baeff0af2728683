package compile

import (
	"fmt"
	"maps"

	"cdm-mapper/internal/rules"
)

// Binding reads a destination field from a source column.
type Binding struct {
	Field       string `yaml:"field"`
	SourceTable string `yaml:"source_table"`
	SourceField string `yaml:"source_field"`
	// Auto is set when the binding was found by name matching rather than
	// declared in the rule document.
	Auto bool `yaml:"auto,omitempty"`
}

// Step applies a named operation to a field.
type Step struct {
	Field     string `yaml:"field"`
	Operation string `yaml:"operation"`
}

// TermMap remaps the values of a field.
type TermMap struct {
	Field   string            `yaml:"field"`
	Mapping rules.TermMapping `yaml:"term_mapping"`
}

// Definition is a compiled rule group for one destination table.
type Definition struct {
	Name  string `yaml:"name"`
	Set   string `yaml:"set,omitempty"`
	Table string `yaml:"table"`
	Index int    `yaml:"index"`

	Bindings   []Binding `yaml:"bindings"`
	Operations []Step    `yaml:"operations,omitempty"`
	TermMaps   []TermMap `yaml:"term_maps,omitempty"`

	// PersonIDs maps a lower-cased source table to its person identifier
	// column.
	PersonIDs map[string]string `yaml:"person_ids,omitempty"`
}

// DefinitionName returns the conventional name of rule group index of table.
func DefinitionName(table string, index int) string {
	return fmt.Sprintf("%s_%d", table, index)
}

// Key identifies the definition in a Registry.
func (d *Definition) Key() string {
	if d.Set == "" {
		return d.Name
	}

	return d.Set + "." + d.Name
}

// Fields returns the bound destination fields in binding order.
func (d *Definition) Fields() []string {
	fields := make([]string, len(d.Bindings))
	for i, b := range d.Bindings {
		fields[i] = b.Field
	}

	return fields
}

// PrimaryTable returns the source table used by most bindings. Ties go to
// the table of the first binding.
func (d *Definition) PrimaryTable() string {
	counts := make(map[string]int)
	for _, b := range d.Bindings {
		counts[b.SourceTable]++
	}

	primary := ""
	for _, b := range d.Bindings {
		if counts[b.SourceTable] > counts[primary] {
			primary = b.SourceTable
		}
	}

	return primary
}

// Clone returns a deep copy of the definition.
func (d *Definition) Clone() *Definition {
	out := *d
	out.Bindings = append([]Binding(nil), d.Bindings...)
	out.Operations = append([]Step(nil), d.Operations...)
	out.TermMaps = append([]TermMap(nil), d.TermMaps...)
	out.PersonIDs = maps.Clone(d.PersonIDs)

	return &out
}

// Set is the result of compiling one rule document.
type Set struct {
	Name        string
	PersonIDs   map[string]string
	Definitions []*Definition
}

// ForTable returns the definitions of a destination table in rule group
// order.
func (s *Set) ForTable(table string) []*Definition {
	var out []*Definition
	for _, d := range s.Definitions {
		if d.Table == table {
			out = append(out, d)
		}
	}

	return out
}
