// Package rules provides the Rule Document schema, parsing and structural
// validation.
//
// A rule document states, per CDM destination table, an ordered list of
// rule groups. Each group maps destination fields to the source column
// that supplies them:
//
//	{
//	  "metadata": {"person_id": {"demo": "subject_id"}},
//	  "cdm": {
//	    "person": [
//	      {
//	        "person_id": {"source_table": "demo", "source_field": "subject_id"},
//	        "gender_concept_id": {
//	          "source_table": "demo",
//	          "source_field": "sex",
//	          "operations": null,
//	          "term_mapping": {"M": 8507, "F": 8532}
//	        }
//	      }
//	    ]
//	  }
//	}
//
// JSON is the canonical format; YAML documents with the same shape are
// accepted too.
//
// # Term mapping
//
// "term_mapping" is polymorphic:
//   - an object is a value-to-value lookup (unmapped values become null)
//   - any scalar forces every value of the field to that scalar
//   - null or {} means no term mapping
//
// # Validation
//
// A field without source_table or source_field makes the document
// malformed. When a Catalog of loaded inputs is supplied, fields whose
// source table or column is not loaded are reported as warnings: they are
// skipped, not fatal.
package rules
