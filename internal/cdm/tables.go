package cdm

func key(name string) Column {
	return Column{Name: name, Type: Integer, Required: true, AutoIncrement: true}
}

func required(name, typ string) Column {
	return Column{Name: name, Type: typ, Required: true}
}

func optional(name, typ string) Column {
	return Column{Name: name, Type: typ}
}

// Person is the OMOP person table. person_id is supplied by the rules and
// masked, so it is not auto-incremented.
func Person() *Table {
	return &Table{
		Name: "person",
		Columns: []Column{
			required("person_id", Integer),
			required("gender_concept_id", Integer),
			required("year_of_birth", Integer),
			optional("month_of_birth", Integer),
			optional("day_of_birth", Integer),
			optional("birth_datetime", DateTime),
			required("race_concept_id", Integer),
			required("ethnicity_concept_id", Integer),
			optional("location_id", Integer),
			optional("provider_id", Integer),
			optional("care_site_id", Integer),
			optional("person_source_value", Varchar50),
			optional("gender_source_value", Varchar50),
			optional("gender_source_concept_id", Integer),
			optional("race_source_value", Varchar50),
			optional("race_source_concept_id", Integer),
			optional("ethnicity_source_value", Varchar50),
			optional("ethnicity_source_concept_id", Integer),
		},
		Derived: []Derived{
			{Field: "year_of_birth", From: "birth_datetime", Operation: "get_year"},
			{Field: "month_of_birth", From: "birth_datetime", Operation: "get_month"},
			{Field: "day_of_birth", From: "birth_datetime", Operation: "get_day"},
		},
	}
}

// ConditionOccurrence is the OMOP condition_occurrence table.
func ConditionOccurrence() *Table {
	return &Table{
		Name: "condition_occurrence",
		Columns: []Column{
			key("condition_occurrence_id"),
			required("person_id", Integer),
			required("condition_concept_id", Integer),
			required("condition_start_date", Date),
			optional("condition_start_datetime", DateTime),
			optional("condition_end_date", Date),
			optional("condition_end_datetime", DateTime),
			required("condition_type_concept_id", Integer),
			optional("stop_reason", Varchar20),
			optional("provider_id", Integer),
			optional("visit_occurrence_id", Integer),
			optional("condition_source_value", Varchar50),
			optional("condition_source_concept_id", Integer),
			optional("condition_status_source_value", Varchar50),
			optional("condition_status_concept_id", Integer),
		},
		Derived: []Derived{
			dateOf("condition_start"),
			dateOf("condition_end"),
		},
	}
}

// VisitOccurrence is the OMOP visit_occurrence table.
func VisitOccurrence() *Table {
	return &Table{
		Name: "visit_occurrence",
		Columns: []Column{
			key("visit_occurrence_id"),
			required("person_id", Integer),
			required("visit_concept_id", Integer),
			required("visit_start_date", Date),
			optional("visit_start_datetime", DateTime),
			required("visit_end_date", Date),
			optional("visit_end_datetime", DateTime),
			required("visit_type_concept_id", Integer),
			optional("provider_id", Integer),
			optional("care_site_id", Integer),
			optional("visit_source_value", Varchar50),
			optional("visit_source_concept_id", Integer),
			optional("admitting_source_concept_id", Integer),
			optional("admitting_source_value", Varchar50),
			optional("discharge_to_concept_id", Integer),
			optional("discharge_to_source_value", Varchar50),
			optional("preceding_visit_occurrence_id", Integer),
		},
		Derived: []Derived{
			dateOf("visit_start"),
			dateOf("visit_end"),
		},
	}
}

// Measurement is the OMOP measurement table.
func Measurement() *Table {
	return &Table{
		Name: "measurement",
		Columns: []Column{
			key("measurement_id"),
			required("person_id", Integer),
			required("measurement_concept_id", Integer),
			required("measurement_date", Date),
			optional("measurement_datetime", DateTime),
			required("measurement_type_concept_id", Integer),
			optional("operator_concept_id", Integer),
			optional("value_as_number", Float),
			optional("value_as_concept_id", Integer),
			optional("unit_concept_id", Integer),
			optional("range_low", Float),
			optional("range_high", Float),
			optional("provider_id", Integer),
			optional("visit_occurrence_id", Integer),
			optional("measurement_source_value", Varchar50),
			optional("measurement_source_concept_id", Integer),
			optional("unit_source_value", Varchar50),
			optional("value_source_value", Varchar50),
		},
		Derived: []Derived{dateOf("measurement")},
	}
}

// Observation is the OMOP observation table.
func Observation() *Table {
	return &Table{
		Name: "observation",
		Columns: []Column{
			key("observation_id"),
			required("person_id", Integer),
			required("observation_concept_id", Integer),
			required("observation_date", Date),
			optional("observation_datetime", DateTime),
			required("observation_type_concept_id", Integer),
			optional("value_as_number", Float),
			optional("value_as_string", Varchar60),
			optional("value_as_concept_id", Integer),
			optional("qualifier_concept_id", Integer),
			optional("unit_concept_id", Integer),
			optional("provider_id", Integer),
			optional("visit_occurrence_id", Integer),
			optional("observation_source_value", Varchar50),
			optional("observation_source_concept_id", Integer),
			optional("unit_source_value", Varchar50),
			optional("qualifier_source_value", Varchar50),
		},
		Derived: []Derived{dateOf("observation")},
	}
}

// dateOf derives prefix_date from prefix_datetime.
func dateOf(prefix string) Derived {
	return Derived{Field: prefix + "_date", From: prefix + "_datetime", Operation: "get_date"}
}
