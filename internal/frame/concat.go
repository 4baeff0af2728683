package frame

// Concat appends frames row-wise. The result's columns are the union of all
// input columns in first-seen order; cells of columns a frame lacks are
// null. Nil and zero-row frames contribute nothing but their columns.
// The result carries no index.
func Concat(frames ...*Frame) *Frame {
	out := New()

	for _, f := range frames {
		if f == nil {
			continue
		}

		for _, c := range f.columns {
			if out.HasColumn(c) {
				continue
			}

			out.columns = append(out.columns, c)
			out.data[c] = make([]any, out.nrows)
		}

		for _, c := range out.columns {
			col, ok := f.data[c]
			if !ok {
				col = make([]any, f.nrows)
			}

			out.data[c] = append(out.data[c], col...)
		}

		out.nrows += f.nrows
	}

	return out
}
