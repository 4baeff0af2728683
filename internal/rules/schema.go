package rules

import (
	"slices"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"cdm-mapper/internal/common"
)

// Document represents the root of a rule document.
type Document struct {
	// Metadata holds dataset-level information.
	Metadata Metadata `yaml:"metadata"`

	// CDM maps a destination table name to its ordered rule groups.
	CDM map[string][]RuleGroup `yaml:"cdm"`
}

// Metadata describes the dataset a rule document was written for.
type Metadata struct {
	// Dataset is an optional human-readable dataset name.
	Dataset string `yaml:"dataset,omitempty"`

	// DateCreated is copied verbatim from the document, if present.
	DateCreated string `yaml:"date_created,omitempty"`

	// PersonID maps a source table to the column holding the person
	// identifier in that table.
	PersonID map[string]string `yaml:"person_id,omitempty"`
}

// RuleGroup maps destination field names to the source they are read from.
// One rule group becomes one mapping object.
type RuleGroup map[string]FieldRule

// Fields returns the destination field names in lexicographic order.
func (g RuleGroup) Fields() []string {
	fields := make([]string, 0, len(g))
	for f := range g {
		fields = append(fields, f)
	}

	slices.Sort(fields)

	return fields
}

// FieldRule says where one destination field gets its value.
type FieldRule struct {
	// SourceTable is the source table (input) name.
	SourceTable string `yaml:"source_table"`

	// SourceField is the column within SourceTable.
	SourceField string `yaml:"source_field"`

	// Operations are applied to the bound column in order.
	Operations StringArray `yaml:"operations,omitempty"`

	// TermMapping optionally remaps values. Nil means no term mapping.
	TermMapping *TermMapping `yaml:"term_mapping,omitempty"`
}

// HasTermMapping returns true if the rule carries a non-empty term mapping.
func (r FieldRule) HasTermMapping() bool {
	return r.TermMapping != nil && !r.TermMapping.IsEmpty()
}

// Tables returns the destination table names in lexicographic order.
func (d *Document) Tables() []string {
	tables := make([]string, 0, len(d.CDM))
	for t := range d.CDM {
		tables = append(tables, t)
	}

	slices.Sort(tables)

	return tables
}

// SourceFields returns, per source table, the sorted distinct source
// fields the document references. Loaders use it to read only what the
// rules need.
func (d *Document) SourceFields() map[string][]string {
	out := make(map[string][]string)

	for _, groups := range d.CDM {
		for _, g := range groups {
			for _, rule := range g {
				if rule.SourceTable == "" || rule.SourceField == "" {
					continue
				}

				if !slices.Contains(out[rule.SourceTable], rule.SourceField) {
					out[rule.SourceTable] = append(out[rule.SourceTable], rule.SourceField)
				}
			}
		}
	}

	for _, fields := range out {
		slices.Sort(fields)
	}

	return out
}

// TermMapping is either a value lookup or a scalar override.
type TermMapping struct {
	// Lookup maps the canonical string form of a source value to the
	// destination value. Used when Scalar is not set.
	Lookup map[string]any

	// Scalar is the forced value when IsScalar is true.
	Scalar any

	// IsScalar selects the scalar form.
	IsScalar bool
}

// NewLookup creates a lookup term mapping.
func NewLookup(lookup map[string]any) *TermMapping {
	return &TermMapping{Lookup: lookup}
}

// NewScalar creates a scalar term mapping.
func NewScalar(v any) *TermMapping {
	return &TermMapping{Scalar: v, IsScalar: true}
}

// IsEmpty returns true for an empty lookup.
func (t *TermMapping) IsEmpty() bool {
	return !t.IsScalar && len(t.Lookup) == 0
}

// Map returns the destination value for a source value. Null and unmapped
// values map to nil.
func (t *TermMapping) Map(v any) any {
	if t.IsScalar {
		return t.Scalar
	}

	key, ok := common.Key(v)
	if !ok {
		return nil
	}

	return t.Lookup[key]
}

// UnmarshalYAML implements yaml.Unmarshaler. A mapping becomes a lookup,
// any scalar a forced value.
func (t *TermMapping) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		var lookup map[string]any
		if err := node.Decode(&lookup); err != nil {
			return err
		}

		*t = TermMapping{Lookup: lookup}

		return nil

	case yaml.ScalarNode:
		var scalar any
		if err := node.Decode(&scalar); err != nil {
			return err
		}

		*t = TermMapping{Scalar: scalar, IsScalar: true}

		return nil

	default:
		return errors.Newf("term_mapping must be an object or a scalar, got %v", node.Kind)
	}
}

// MarshalYAML implements yaml.Marshaler.
func (t TermMapping) MarshalYAML() (any, error) {
	if t.IsScalar {
		return t.Scalar, nil
	}

	return t.Lookup, nil
}

// StringArray is a string slice that can be unmarshaled from a single
// string or a list.
type StringArray []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StringArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var single string
		if err := node.Decode(&single); err != nil {
			return err
		}

		if single != "" {
			*s = StringArray{single}
		} else {
			*s = StringArray{}
		}

		return nil

	case yaml.SequenceNode:
		var multi []string
		if err := node.Decode(&multi); err != nil {
			return err
		}

		*s = multi

		return nil

	default:
		return errors.Newf("expected string or list of strings, got %v", node.Kind)
	}
}
