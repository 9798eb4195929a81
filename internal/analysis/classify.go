package analysis

import (
	"strconv"
	"strings"
)

// ClassifyColumns decides a Column for every name in columns by inspecting a
// bounded prefix of rows (opt.SampleSize, 0 means every row). Inference is
// probabilistic: values past the sample do not influence the decision.
func ClassifyColumns(columns []string, rows [][]any, opt Options) []Column {
	sample := rows
	if opt.SampleSize > 0 && len(sample) > opt.SampleSize {
		sample = sample[:opt.SampleSize]
	}
	log := opt.logger()
	seen := map[string]int{}
	out := make([]Column, 0, len(columns))
	for i, name := range columns {
		col := InferColumn(i, name, sample)
		col.DataIndex = uniqueKey(name, seen)
		log.Debug("classified column", "column", name, "dataIndex", col.DataIndex,
			"colType", col.ColType, "dateType", col.DateType, "parseFormat", col.ParseFormat)
		out = append(out, col)
	}
	return out
}

// InferColumn classifies column idx from sample rows. Date detection runs
// first on the first non-blank value, then numeric detection over every
// non-blank value; anything else is a categorical string column.
func InferColumn(idx int, name string, sample [][]any) Column {
	col := Column{Title: name, DataIndex: name, ColType: ColString, VariableType: Categorical}
	first, ok := firstValue(sample, idx)
	if !ok {
		return col
	}
	if info := CheckIfDate(first, idx, name, sample); info.IsDate {
		col.ColType = ColDate
		col.IsDate = true
		col.DateType = info.DateType
		col.ParseFormat = info.ParseFormat
		col.DateToUnix = info.DateToUnix
		return col
	}
	integer := true
	for _, r := range sample {
		if idx >= len(r) || isBlank(r[idx]) {
			continue
		}
		d, ok := ParseNumber(r[idx])
		if !ok {
			return col
		}
		if !fitsInt64(d) || isPercent(r[idx]) {
			integer = false
		}
	}
	col.Numeric = true
	col.VariableType = Quantitative
	col.ColType = ColDecimal
	if integer {
		col.ColType = ColInteger
	}
	return col
}

// IndexColumn is the synthetic column appended by the reformatter.
func IndexColumn() Column {
	return Column{
		Title:        IndexField,
		DataIndex:    IndexField,
		ColType:      ColInteger,
		VariableType: Quantitative,
		Numeric:      true,
		Synthetic:    true,
	}
}

func firstValue(rows [][]any, idx int) (any, bool) {
	for _, r := range rows {
		if idx < len(r) && !isBlank(r[idx]) {
			return r[idx], true
		}
	}
	return nil, false
}

func isPercent(v any) bool {
	s, ok := v.(string)
	return ok && strings.HasSuffix(strings.TrimSpace(s), "%")
}

var reservedKeys = map[string]bool{KeyField: true, IndexField: true, UnixField: true}

// uniqueKey returns a dataIndex for name that collides neither with an
// earlier column nor with a reserved row key.
func uniqueKey(name string, seen map[string]int) string {
	key := name
	if !reservedKeys[key] && seen[key] == 0 {
		seen[key] = 1
		return key
	}
	for n := 2; ; n++ {
		key = name + "_" + strconv.Itoa(n)
		if seen[key] == 0 && !reservedKeys[key] {
			seen[key] = 1
			seen[name]++
			return key
		}
	}
}
