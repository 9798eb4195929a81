package analysis

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrRaggedRow is returned when a row's length differs from the column count.
	ErrRaggedRow = errors.New("row length does not match column count")
	// ErrUnresolvedDate marks a date column without a converter.
	ErrUnresolvedDate = errors.New("date column has no converter")
)

// ColumnValidity summarizes how many values of a typed column converted.
type ColumnValidity struct {
	Column     string  `json:"column"`
	Kind       ColType `json:"kind"`
	Converted  int     `json:"converted"`
	Failed     int     `json:"failed"`
	FirstError string  `json:"firstError,omitempty"`
}

// OK reports whether every non-blank value converted.
func (v ColumnValidity) OK() bool { return v.Failed == 0 }

// Result is the reformatted dataset.
type Result struct {
	Columns  []Column         `json:"newCols"`
	Rows     []Row            `json:"newRows"`
	Validity []ColumnValidity `json:"validity"`
}

// Column returns the column with the given dataIndex or title.
func (r *Result) Column(name string) (Column, bool) {
	for _, c := range r.Columns {
		if c.DataIndex == name {
			return c, true
		}
	}
	for _, c := range r.Columns {
		if c.Title == name {
			return c, true
		}
	}
	return Column{}, false
}

// Failures returns the validity entries that recorded at least one failure.
func (r *Result) Failures() []ColumnValidity {
	var out []ColumnValidity
	for _, v := range r.Validity {
		if !v.OK() {
			out = append(out, v)
		}
	}
	return out
}

// ReFormatData classifies columns over a bounded sample and converts every row.
// Rows must already be rectangular; see parser.Sanitize.
func ReFormatData(rows [][]any, columns []string, opt Options) (*Result, error) {
	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, fmt.Errorf("row %d has %d values, want %d: %w", i, len(r), len(columns), ErrRaggedRow)
		}
	}
	return ApplyColumns(rows, ClassifyColumns(columns, rows, opt), opt)
}

// ApplyColumns converts rows with previously classified columns. The input is
// not modified; a synthetic index column is always appended to the result.
func ApplyColumns(rows [][]any, cols []Column, opt Options) (*Result, error) {
	for _, c := range cols {
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}
	log := opt.logger()
	validity := make([]ColumnValidity, len(cols))
	for j, c := range cols {
		validity[j] = ColumnValidity{Column: c.DataIndex, Kind: c.ColType}
	}
	out := make([]Row, 0, len(rows))
	for i, r := range rows {
		if len(r) != len(cols) {
			return nil, fmt.Errorf("row %d has %d values, want %d: %w", i, len(r), len(cols), ErrRaggedRow)
		}
		row := make(Row, len(cols)+3)
		unix := make(map[string]any)
		for j, c := range cols {
			v, ts, err := convertCell(c, r[j])
			row[c.DataIndex] = v
			if c.IsDate {
				unix[c.DataIndex] = ts
			}
			if c.ColType == ColString || isBlank(r[j]) {
				continue
			}
			if err != nil {
				validity[j].Failed++
				if validity[j].FirstError == "" {
					validity[j].FirstError = err.Error()
				}
				log.Debug("value conversion failed", "column", c.DataIndex, "row", i, "error", err)
				continue
			}
			validity[j].Converted++
		}
		row[KeyField] = strconv.Itoa(i)
		row[IndexField] = i
		row[UnixField] = unix
		out = append(out, row)
	}

	res := &Result{
		Columns: append(append(make([]Column, 0, len(cols)+1), cols...), IndexColumn()),
		Rows:    out,
	}
	for _, v := range validity {
		if v.Kind != ColString {
			res.Validity = append(res.Validity, v)
		}
	}
	return res, nil
}

// convertCell returns the stored value and, for date columns, the value placed
// in unixDateValues (unix seconds, or the raw value when conversion failed).
func convertCell(c Column, raw any) (v any, ts any, err error) {
	if isBlank(raw) {
		return nil, nil, nil
	}
	switch c.ColType {
	case ColDate:
		sec, err := c.DateToUnix(raw)
		if err != nil {
			return raw, raw, err
		}
		return raw, sec, nil
	case ColInteger:
		d, ok := ParseNumber(raw)
		if !ok || !d.IsInteger() {
			return nil, nil, fmt.Errorf("%q is not an integer", valueString(raw))
		}
		if !fitsInt64(d) {
			return nil, nil, fmt.Errorf("%q is out of int64 range", valueString(raw))
		}
		return d.IntPart(), nil, nil
	case ColDecimal:
		d, ok := ParseNumber(raw)
		if !ok {
			return nil, nil, fmt.Errorf("%q is not a number", valueString(raw))
		}
		return d.InexactFloat64(), nil, nil
	default:
		return valueString(raw), nil, nil
	}
}
