package cdm

import (
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"cdm-mapper/internal/common"
)

// ErrUnknownTable is returned when a destination table is not part of the
// model.
var ErrUnknownTable = errors.New("unknown CDM table")

// Column type names, resolved through the coerce registry.
const (
	Integer   = "INTEGER"
	Float     = "FLOAT"
	Date      = "DATE"
	DateTime  = "DATETIME"
	Varchar10 = "VARCHAR(10)"
	Varchar20 = "VARCHAR(20)"
	Varchar50 = "VARCHAR(50)"
	Varchar60 = "VARCHAR(60)"
)

// Column is a destination column.
type Column struct {
	Name          string
	Type          string
	Required      bool
	AutoIncrement bool
}

// Derived fills Field from From by applying Operation when Field is
// missing or entirely null.
type Derived struct {
	Field     string
	From      string
	Operation string
}

// Table is a destination table definition.
type Table struct {
	Name    string
	Columns []Column
	Derived []Derived
}

// ColumnNames returns the column names in output order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}

	return names
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	i := slices.IndexFunc(t.Columns, func(c Column) bool { return c.Name == name })
	if i < 0 {
		return Column{}, false
	}

	return t.Columns[i], true
}

// Key returns the first column, used as the row key by sinks.
func (t *Table) Key() string {
	first, _ := common.First(t.Columns)
	return first.Name
}

// Model is an ordered set of destination tables.
type Model struct {
	tables []*Table
}

// NewModel creates a model processing tables in the given order.
func NewModel(tables ...*Table) *Model {
	return &Model{tables: tables}
}

// Default returns the model with the five supported OMOP tables, in
// pipeline order.
func Default() *Model {
	return NewModel(Person(), ConditionOccurrence(), VisitOccurrence(), Measurement(), Observation())
}

// Order returns the table names in processing order.
func (m *Model) Order() []string {
	names := make([]string, len(m.tables))
	for i, t := range m.tables {
		names[i] = t.Name
	}

	return names
}

// Table returns a table by name. Names are case-insensitive.
func (m *Model) Table(name string) (*Table, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, t := range m.tables {
		if t.Name == key {
			return t, nil
		}
	}

	return nil, errors.Wrapf(ErrUnknownTable, "%q", name)
}

// Columns returns the column names of a table, or false if the table is
// not part of the model.
func (m *Model) Columns(table string) ([]string, bool) {
	t, err := m.Table(table)
	if err != nil {
		return nil, false
	}

	return t.ColumnNames(), true
}
