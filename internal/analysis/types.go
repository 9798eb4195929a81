package analysis

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ColType is the storage type decided for a column.
type ColType string

const (
	ColString  ColType = "string"
	ColDate    ColType = "date"
	ColInteger ColType = "integer"
	ColDecimal ColType = "decimal"
)

// VariableType is the statistical role of a column.
type VariableType string

const (
	Quantitative VariableType = "quantitative"
	Categorical  VariableType = "categorical"
)

// DateType is the granularity of a date column.
type DateType string

const (
	DateYear     DateType = "year"
	DateMonth    DateType = "month"
	DateWeek     DateType = "week"
	DateDay      DateType = "date"
	DateDateTime DateType = "datetime"
)

// DateConverter maps one raw cell of a date column to unix seconds.
type DateConverter func(v any) (int64, error)

// Column describes a classified column. Values are built once per
// classification pass and treated as read-only afterwards.
type Column struct {
	Title        string        `json:"title"`
	DataIndex    string        `json:"dataIndex"`
	ColType      ColType       `json:"colType"`
	VariableType VariableType  `json:"variableType"`
	Numeric      bool          `json:"numeric"`
	IsDate       bool          `json:"isDate"`
	DateType     DateType      `json:"dateType,omitempty"`
	ParseFormat  string        `json:"parseFormat,omitempty"`
	DateToUnix   DateConverter `json:"-"`
	Synthetic    bool          `json:"synthetic,omitempty"`
}

// Validate checks that a date column carries its converter.
func (c Column) Validate() error {
	if c.IsDate && c.DateToUnix == nil {
		return fmt.Errorf("%w: %s", ErrUnresolvedDate, c.Title)
	}
	return nil
}

// Reserved row keys added by the reformatter.
const (
	KeyField   = "key"
	IndexField = "index"
	UnixField  = "unixDateValues"
)

// Row is one reformatted record keyed by column dataIndex.
type Row map[string]any

// Unix returns the converted timestamp of a date column, if conversion succeeded.
func (r Row) Unix(col string) (int64, bool) {
	m, ok := r[UnixField].(map[string]any)
	if !ok {
		return 0, false
	}
	ts, ok := m[col].(int64)
	return ts, ok
}

// Float returns the numeric value under key.
func (r Row) Float(key string) (float64, bool) {
	return toFloat(r[key])
}

func (r Row) clone() Row {
	out := make(Row, len(r)+4)
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Options controls classification, reformatting and reporting.
type Options struct {
	// SampleSize bounds the rows inspected per column during classification; 0 means all rows.
	SampleSize int
	// SampleRows determines how many example rows to include in the report.
	SampleRows int
	// GroupBy computes per-group summaries for the given column names.
	GroupBy []string
	// Correlations computes Pearson correlations among numeric columns.
	Correlations bool
	// Outlier detection via robust Z-score (MAD). If Outliers is true, counts |z|>threshold.
	Outliers         bool
	OutlierThreshold float64
	Logger           *slog.Logger
}

// DefaultOptions returns reasonable defaults for dataset analysis.
func DefaultOptions() Options {
	return Options{
		SampleSize:       500,
		SampleRows:       5,
		Outliers:         true,
		OutlierThreshold: 3.5,
	}
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	}
	return false
}

func valueString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	}
	return fmt.Sprint(v)
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	}
	d, ok := ParseNumber(v)
	if !ok {
		return 0, false
	}
	return d.InexactFloat64(), true
}
