package cdm

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"cdm-mapper/internal/coerce"
	"cdm-mapper/internal/diagnostic"
	"cdm-mapper/internal/frame"
)

// ErrFormat is returned by Format when raising is enabled and a column lost
// values during coercion or a required column has null values.
var ErrFormat = errors.New("CDM format validation failed")

// ColumnReport is the coercion report of one output column.
type ColumnReport struct {
	Column string
	coerce.Report
}

// FormatResult is the outcome of Format.
type FormatResult struct {
	Frame       *frame.Frame
	Reports     []ColumnReport
	Diagnostics *diagnostic.Diagnostics
}

// Format coerces every column of f that belongs to the table to its
// declared type. Losses are recorded as warnings; they only become an
// ErrFormat error when raise is set. Columns outside the table are copied
// unchanged.
func (t *Table) Format(f *frame.Frame, types *coerce.Registry, raise bool) (*FormatResult, error) {
	res := &FormatResult{
		Frame:       frame.New(),
		Diagnostics: &diagnostic.Diagnostics{},
	}

	for _, name := range f.Columns() {
		col, _ := f.Column(name)

		c, ok := t.Column(name)
		if !ok {
			if err := res.Frame.SetColumn(name, col); err != nil {
				return nil, err
			}

			continue
		}

		coerced, report, err := types.Coerce(c.Type, col)
		if err != nil {
			return nil, errors.Wrapf(err, "column %s.%s", t.Name, name)
		}

		if err := res.Frame.SetColumn(name, coerced); err != nil {
			return nil, err
		}

		res.Reports = append(res.Reports, ColumnReport{Column: name, Report: report})
		t.check(res.Diagnostics, c, report)
	}

	if raise && res.Diagnostics.HasWarnings() {
		return res, errors.Wrapf(ErrFormat, "table %s: %d problems", t.Name, len(res.Diagnostics.Warnings))
	}

	return res, nil
}

func (t *Table) check(diags *diagnostic.Diagnostics, c Column, report coerce.Report) {
	if lost := report.Lost(); lost > 0 {
		diags.AddWarning("coercion_loss",
			fmt.Sprintf("%d of %d values could not be coerced to %s (%d unparsable, %d out of range)",
				lost, report.Total, c.Type,
				report.Nulled[coerce.ReasonUnparsable], report.Nulled[coerce.ReasonOutOfRange]),
			t.Name, c.Name)
	}

	if !c.Required {
		return
	}

	if nulls := report.Nulled[coerce.ReasonMissing] + report.Lost(); nulls > 0 {
		diags.AddWarning("required_value_null",
			fmt.Sprintf("%d of %d values of a required column are null", nulls, report.Total),
			t.Name, c.Name)
	}
}
