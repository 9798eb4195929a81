package analysis

import "fmt"

// Fields added to each long-format row.
const (
	LabelField       = "label"
	ValueField       = "value"
	SeriesField      = "series"
	FacetIndexField  = "naive_index_within_facet"
	seriesSeparator  = " - "
	noFacetPartition = "\x00"
)

// ConvertWideToLong emits one row per (row, y) pair, row-major: a copy of the
// source row plus label (the y column), value (row[y]), series and a running
// index per (facet value, x value). No rows are deduplicated.
func ConvertWideToLong(rows []Row, x string, ys []string, colorBy, facet string) []Row {
	out := make([]Row, 0, len(rows)*len(ys))
	counters := map[string]int{}
	for _, r := range rows {
		part := noFacetPartition
		if facet != "" {
			part = fmt.Sprint(r[facet])
		}
		ck := part + "\x1f" + fmt.Sprint(r[x])
		for _, y := range ys {
			lr := r.clone()
			lr[LabelField] = y
			lr[ValueField] = r[y]
			lr[SeriesField] = seriesName(r, y, colorBy, len(ys) > 1)
			lr[FacetIndexField] = counters[ck]
			counters[ck]++
			out = append(out, lr)
		}
	}
	return out
}

func seriesName(r Row, label, colorBy string, multi bool) string {
	if colorBy == "" || colorBy == LabelField {
		return label
	}
	c := valueString(r[colorBy])
	if multi {
		return c + seriesSeparator + label
	}
	return c
}
