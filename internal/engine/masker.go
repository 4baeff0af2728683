package engine

import (
	"cdm-mapper/internal/common"
	"cdm-mapper/internal/frame"
)

// PersonIDColumn is the destination column holding person identifiers.
const PersonIDColumn = "person_id"

// Masker maps original person identifiers to 1..k in first-seen order. It
// is built from the first frame it masks and reused unchanged afterwards.
// Identifiers compare by their canonical string form.
type Masker struct {
	ids   map[string]int64
	built bool
}

// NewMasker creates an unbuilt masker.
func NewMasker() *Masker {
	return &Masker{ids: make(map[string]int64)}
}

// Built reports whether the masker has been built.
func (m *Masker) Built() bool {
	return m.built
}

// Len returns the number of distinct identifiers.
func (m *Masker) Len() int {
	return len(m.ids)
}

// Lookup returns the masked identifier of an original one.
func (m *Masker) Lookup(id any) (int64, bool) {
	key, ok := common.Key(id)
	if !ok {
		return 0, false
	}

	masked, ok := m.ids[key]

	return masked, ok
}

// Mask replaces the person_id column of f in place. Frames without the
// column are left unchanged. Identifiers unknown to a built masker become
// null.
func (m *Masker) Mask(f *frame.Frame) error {
	col, ok := f.Column(PersonIDColumn)
	if !ok {
		return nil
	}

	if !m.built {
		m.build(col)
	}

	masked := make([]any, len(col))
	for i, v := range col {
		if id, ok := m.Lookup(v); ok {
			masked[i] = id
		}
	}

	return f.SetColumn(PersonIDColumn, masked)
}

func (m *Masker) build(col []any) {
	for _, v := range col {
		key, ok := common.Key(v)
		if !ok {
			continue
		}

		if _, seen := m.ids[key]; !seen {
			m.ids[key] = int64(len(m.ids) + 1)
		}
	}

	m.built = true
}
