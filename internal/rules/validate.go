package rules

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"cdm-mapper/internal/diagnostic"
)

// Catalog lists the loaded source tables and their columns.
type Catalog map[string][]string

// Has reports whether table is loaded and, if field is not empty, whether
// it has that column. Catalog keys are lower-case.
func (c Catalog) Has(table, field string) bool {
	cols, ok := c[strings.ToLower(table)]
	if !ok {
		return false
	}

	return field == "" || slices.Contains(cols, field)
}

// OperationSet is anything that can tell whether an operation exists.
type OperationSet interface {
	Has(name string) bool
}

// Validate checks a rule document. Missing bindings and unknown operations
// are errors; with a non-nil catalog, fields whose source is not loaded are
// warnings. Diagnostics are emitted in table, group, field order.
func Validate(doc *Document, catalog Catalog, operations OperationSet) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if doc == nil {
		res.AddError("document_is_nil", "rule document is nil", "", "")
		return res
	}

	for _, table := range slices.Sorted(maps.Keys(doc.Metadata.PersonID)) {
		idField := doc.Metadata.PersonID[table]
		if catalog != nil && !catalog.Has(table, "") {
			res.AddInfo("person_id_table_not_loaded",
				fmt.Sprintf("person_id declared for %q which is not loaded", table), table, idField)
		}
	}

	for _, table := range doc.Tables() {
		for i, group := range doc.CDM[table] {
			groupName := fmt.Sprintf("%s_%d", table, i)
			if len(group) == 0 {
				res.AddInfo("empty_rule_group", "rule group has no fields", groupName, "")
				continue
			}

			for _, field := range group.Fields() {
				validateFieldRule(res, groupName, field, group[field], catalog, operations)
			}
		}
	}

	return res
}

func validateFieldRule(
	res *diagnostic.Diagnostics,
	groupName, field string,
	rule FieldRule,
	catalog Catalog,
	operations OperationSet,
) {
	if rule.SourceTable == "" {
		res.AddError("missing_source_table", "source_table is empty", groupName, field)
	}

	if rule.SourceField == "" {
		res.AddError("missing_source_field", "source_field is empty", groupName, field)
	}

	if operations != nil {
		for _, op := range rule.Operations {
			if !operations.Has(op) {
				res.AddError("unknown_operation", fmt.Sprintf("operation %q is not registered", op), groupName, field)
			}
		}
	}

	if catalog == nil || rule.SourceTable == "" || rule.SourceField == "" {
		return
	}

	if !catalog.Has(rule.SourceTable, "") {
		res.AddWarning("source_table_not_loaded",
			fmt.Sprintf("source table %q is not loaded; field skipped", rule.SourceTable), groupName, field)

		return
	}

	if !catalog.Has(rule.SourceTable, rule.SourceField) {
		res.AddWarning("source_field_not_found",
			fmt.Sprintf("column %q not found in %q; field skipped", rule.SourceField, rule.SourceTable),
			groupName, field)
	}
}
