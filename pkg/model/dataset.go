// pkg/model/dataset.go
package model

import (
	"strings"

	"github.com/feedbackops/cleanse/pkg/converter"
)

// Row is one record of a dataset. Index is the row's position in the source
// it was extracted from; it survives row drops so that audit records keep
// pointing at the original row.
type Row struct {
	Index  int
	Values map[string]interface{}
}

// Dataset is a tabular structure with ordered, named columns and
// heterogeneous cell types. Cells may hold strings, numbers, times or nil.
type Dataset struct {
	Columns []string
	Rows    []Row

	nextIndex int
}

// NewDataset creates an empty dataset with the given column order.
func NewDataset(columns []string) *Dataset {
	return &Dataset{Columns: append([]string(nil), columns...)}
}

// AppendRow adds a row and assigns it the next source index.
func (d *Dataset) AppendRow(values map[string]interface{}) {
	d.Rows = append(d.Rows, Row{Index: d.nextIndex, Values: values})
	d.nextIndex++
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// Empty reports whether the dataset holds no rows.
func (d *Dataset) Empty() bool {
	return d == nil || len(d.Rows) == 0
}

// Clone returns a deep copy of the dataset, preserving row indices.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		Columns:   append([]string(nil), d.Columns...),
		Rows:      make([]Row, len(d.Rows)),
		nextIndex: d.nextIndex,
	}
	for i, row := range d.Rows {
		values := make(map[string]interface{}, len(row.Values))
		for k, v := range row.Values {
			values[k] = v
		}
		out.Rows[i] = Row{Index: row.Index, Values: values}
	}
	return out
}

// Merge appends all rows of other to this dataset, assigning fresh indices
// and extending the column set with any columns not yet present.
func (d *Dataset) Merge(other *Dataset) {
	if other.Empty() {
		return
	}
	for _, col := range other.Columns {
		if !d.HasColumn(col) {
			d.Columns = append(d.Columns, col)
		}
	}
	for _, row := range other.Rows {
		values := make(map[string]interface{}, len(row.Values))
		for k, v := range row.Values {
			values[k] = v
		}
		d.AppendRow(values)
	}
}

// HasColumn reports whether the named column exists (case-insensitive).
func (d *Dataset) HasColumn(name string) bool {
	for _, col := range d.Columns {
		if strings.EqualFold(col, name) {
			return true
		}
	}
	return false
}

// IsMissing reports whether a cell value counts as missing: nil, or a string
// that is empty after trimming whitespace.
func IsMissing(v interface{}) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// IsNumericColumn reports whether the column has at least one non-missing
// value and every non-missing value converts cleanly to a float.
func (d *Dataset) IsNumericColumn(name string) bool {
	seen := false
	for _, row := range d.Rows {
		v, ok := row.Values[name]
		if !ok || IsMissing(v) {
			continue
		}
		if _, err := converter.ToFloat(v); err != nil {
			return false
		}
		seen = true
	}
	return seen
}

// NumericValues returns the float values of all non-missing cells in the
// column, with the positions of the rows they came from.
func (d *Dataset) NumericValues(name string) (values []float64, positions []int) {
	for i, row := range d.Rows {
		v, ok := row.Values[name]
		if !ok || IsMissing(v) {
			continue
		}
		f, err := converter.ToFloat(v)
		if err != nil {
			continue
		}
		values = append(values, f)
		positions = append(positions, i)
	}
	return values, positions
}

// Fingerprint returns a canonical representation of the row over the given
// column order, used for exact-duplicate detection. Missing cells collapse
// to an empty field so that two rows differing only in nil-vs-blank compare
// equal.
func (r Row) Fingerprint(columns []string) string {
	var b strings.Builder
	for i, col := range columns {
		if i > 0 {
			b.WriteByte(0x1f)
		}
		v := r.Values[col]
		if IsMissing(v) {
			continue
		}
		b.WriteString(converter.ToString(v))
	}
	return b.String()
}
