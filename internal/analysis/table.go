package analysis

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/plotloom-cli/internal/parser"
)

// Report is a markdown-friendly analysis of a tabular dataset.
type Report struct {
	Name      string
	Rows      int
	Processed int
	Sampled   int
	Cols      []ColumnSummary
	Samples   [][]string
	Warnings  []string
	Groups    []GroupResult
	Corr      *CorrMatrix
}

// ColumnSummary captures inferred type and statistics per column.
type ColumnSummary struct {
	Name        string
	Kind        string // numeric|datetime|categorical|text|unknown
	ColType     ColType
	DateType    DateType
	ParseFormat string
	Unit        string
	NonNull     int
	Missing     int
	Unique      int
	// Numeric stats
	Min  float64
	Max  float64
	Mean float64
	Std  float64
	// Date range
	First, Last time.Time
	// Outliers (robust Z via MAD)
	OutliersCount    int
	OutliersMaxAbsZ  float64
	OutlierThreshold float64
	// Categorical top values
	TopValues    []CategoryCount
	ExampleTexts []string
}

type CategoryCount struct {
	Value string
	Count int
}

// GroupResult captures aggregated metrics per group key.
type GroupResult struct {
	Key     string
	Size    int
	Metrics map[string]NumSummary // by column name
}

type NumSummary struct {
	Count          int
	Min, Max, Mean float64
}

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]
}

// AnalyzeFile loads path through the parser registry and analyzes it.
func AnalyzeFile(path string, popt parser.Options, opt Options) (*Report, error) {
	t, err := parser.LoadFile(path, popt)
	if err != nil {
		return nil, err
	}
	return AnalyzeTable(t, opt)
}

// AnalyzeTable classifies and reformats t, then summarizes every column.
func AnalyzeTable(t *parser.Table, opt Options) (*Report, error) {
	rep := &Report{Name: t.Name, Rows: t.TotalRows, Processed: len(t.Rows)}
	if rep.Rows < rep.Processed {
		rep.Rows = rep.Processed
	}
	if len(t.Columns) == 0 {
		return rep, nil
	}
	res, err := ReFormatData(t.Rows, t.Columns, opt)
	if err != nil {
		return nil, fmt.Errorf("reformat %s: %w", t.Name, err)
	}
	rep.Sampled = len(t.Rows)
	if opt.SampleSize > 0 && rep.Sampled > opt.SampleSize {
		rep.Sampled = opt.SampleSize
	}

	sampleRows := opt.SampleRows
	if sampleRows <= 0 {
		sampleRows = 5
	}
	for i := 0; i < len(t.Rows) && i < sampleRows; i++ {
		row := make([]string, len(t.Rows[i]))
		for j, v := range t.Rows[i] {
			row[j] = valueString(v)
		}
		rep.Samples = append(rep.Samples, row)
	}

	cols := res.Columns[:len(t.Columns)]
	var numCols []Column
	for _, c := range cols {
		s, vals := summarize(c, res.Rows, opt)
		if vals != nil {
			numCols = append(numCols, c)
		}
		rep.Cols = append(rep.Cols, s)
	}

	if len(opt.GroupBy) > 0 {
		rep.Groups = groupSummaries(res, opt.GroupBy, numCols)
	}
	if opt.Correlations && len(numCols) >= 2 {
		rep.Corr = correlations(res.Rows, numCols)
	}

	if rep.Processed < rep.Rows {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("processed only %d/%d rows due to MaxRows", rep.Processed, rep.Rows))
	}
	if t.Dropped > 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("dropped %d rows whose length did not match the header", t.Dropped))
	}
	if rep.Sampled < rep.Processed {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("column types inferred from the first %d rows", rep.Sampled))
	}
	for _, v := range res.Failures() {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%s: %d value(s) failed %s conversion (first: %s)", v.Column, v.Failed, v.Kind, v.FirstError))
	}
	return rep, nil
}

// summarize returns the column summary and, for numeric columns, its values.
func summarize(c Column, rows []Row, opt Options) (ColumnSummary, []float64) {
	name, unit := splitUnits(c.Title)
	s := ColumnSummary{Name: name, Unit: unit, ColType: c.ColType, DateType: c.DateType, ParseFormat: c.ParseFormat}
	cats := map[string]int{}
	var vals []float64
	for _, r := range rows {
		v := r[c.DataIndex]
		if v == nil {
			s.Missing++
			continue
		}
		s.NonNull++
		switch {
		case c.Numeric:
			if f, ok := toFloat(v); ok {
				vals = append(vals, f)
			}
		case c.IsDate:
			if ts, ok := r.Unix(c.DataIndex); ok {
				tm := time.Unix(ts, 0).UTC()
				if s.First.IsZero() || tm.Before(s.First) {
					s.First = tm
				}
				if s.Last.IsZero() || tm.After(s.Last) {
					s.Last = tm
				}
			}
		default:
			str := valueString(v)
			if len(cats) <= 10000 && len(str) <= 64 {
				cats[str]++
			}
			if len(s.ExampleTexts) < 3 {
				s.ExampleTexts = append(s.ExampleTexts, str)
			}
		}
	}

	switch {
	case c.Numeric && len(vals) > 0:
		s.Kind = "numeric"
		s.Min, s.Max, s.Mean = minOf(vals), maxOf(vals), stat.Mean(vals, nil)
		if len(vals) > 1 {
			s.Std = stat.StdDev(vals, nil)
		}
		if opt.Outliers && len(vals) >= 8 {
			s.OutliersCount, s.OutliersMaxAbsZ, s.OutlierThreshold = robustOutliers(vals, opt.OutlierThreshold)
		}
		return s, vals
	case c.IsDate:
		s.Kind = "datetime"
	case len(cats) > 0:
		s.Kind = "categorical"
		s.TopValues, s.Unique = topValues(cats, 8), len(cats)
		s.ExampleTexts = nil
	case s.NonNull > 0:
		s.Kind = "text"
	default:
		s.Kind = "unknown"
	}
	return s, nil
}

func robustOutliers(vals []float64, thr float64) (count int, maxAbsZ, threshold float64) {
	if thr <= 0 {
		thr = 3.5
	}
	med, mad := medianMAD(vals)
	if mad > 0 {
		for _, v := range vals {
			az := math.Abs(0.6745 * (v - med) / mad)
			if az > thr {
				count++
			}
			if az > maxAbsZ {
				maxAbsZ = az
			}
		}
	}
	return count, maxAbsZ, thr
}

func topValues(cats map[string]int, n int) []CategoryCount {
	tops := make([]CategoryCount, 0, len(cats))
	for k, v := range cats {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if len(tops) > n {
		tops = tops[:n]
	}
	return tops
}

func groupSummaries(res *Result, groupBy []string, numCols []Column) []GroupResult {
	var keys []GroupKey
	for _, name := range groupBy {
		if c, ok := lookupColumn(res.Columns, name); ok {
			keys = append(keys, GroupKey{Name: splitName(c.Title), Column: c.DataIndex})
		}
	}
	if len(keys) == 0 {
		return nil
	}
	var out []GroupResult
	for _, g := range GroupRows(res.Rows, keys) {
		parts := make([]string, len(g.Names))
		for i, n := range g.Names {
			parts[i] = fmt.Sprintf("%s=%s", n, safeVal(valueString(g.Key[n])))
		}
		gr := GroupResult{Key: strings.Join(parts, " | "), Size: len(g.Entries), Metrics: map[string]NumSummary{}}
		for _, c := range numCols {
			var vals []float64
			for _, r := range g.Entries {
				if f, ok := r.Float(c.DataIndex); ok {
					vals = append(vals, f)
				}
			}
			if len(vals) == 0 {
				continue
			}
			gr.Metrics[splitName(c.Title)] = NumSummary{Count: len(vals), Min: minOf(vals), Max: maxOf(vals), Mean: mean(vals)}
		}
		out = append(out, gr)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Size == out[j].Size {
			return out[i].Key < out[j].Key
		}
		return out[i].Size > out[j].Size
	})
	if len(out) > 20 {
		out = out[:20]
	}
	return out
}

func lookupColumn(cols []Column, name string) (Column, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, c := range cols {
		if strings.ToLower(c.DataIndex) == name || strings.ToLower(c.Title) == name || strings.ToLower(splitName(c.Title)) == name {
			return c, true
		}
	}
	return Column{}, false
}

func correlations(rows []Row, numCols []Column) *CorrMatrix {
	n := len(numCols)
	data := make([][]float64, n)
	have := make([][]bool, n)
	for a, c := range numCols {
		data[a] = make([]float64, len(rows))
		have[a] = make([]bool, len(rows))
		for i, r := range rows {
			data[a][i], have[a][i] = r.Float(c.DataIndex)
		}
	}
	m := &CorrMatrix{Columns: make([]string, n), Values: make([][]float64, n)}
	for a := range numCols {
		m.Columns[a] = splitName(numCols[a].Title)
		m.Values[a] = make([]float64, n)
	}
	for a := 0; a < n; a++ {
		m.Values[a][a] = 1
		for b := a + 1; b < n; b++ {
			r, _ := pearson(data[a], data[b], func(i int) bool { return have[a][i] && have[b][i] })
			m.Values[a][b], m.Values[b][a] = r, r
		}
	}
	return m
}

// Markdown renders a compact report suitable for standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		fmt.Fprintf(&b, "File: %s\n", r.Name)
	}
	if r.Rows > 0 {
		if r.Processed > 0 && r.Processed < r.Rows {
			fmt.Fprintf(&b, "Rows: ~%d (processed %d)\n", r.Rows, r.Processed)
		} else {
			fmt.Fprintf(&b, "Rows: %d\n", r.Rows)
		}
	}
	fmt.Fprintf(&b, "Columns: %d\n\n", len(r.Cols))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		name := safeName(c.Name)
		if c.Unit != "" {
			name = fmt.Sprintf("%s [%s]", name, c.Unit)
		}
		fmt.Fprintf(&b, "- %s: %s (non-null %d, missing %.1f%%)", name, c.Kind, c.NonNull, missPct)
		switch c.Kind {
		case "numeric":
			fmt.Fprintf(&b, ", %s: min %.4g, max %.4g, mean %.4g, std %.4g", c.ColType, c.Min, c.Max, c.Mean, c.Std)
			if c.OutlierThreshold > 0 {
				fmt.Fprintf(&b, "; outliers: %d above |z|>%.1f", c.OutliersCount, c.OutlierThreshold)
				if c.OutliersMaxAbsZ > 0 {
					fmt.Fprintf(&b, " (max |z|≈%.2f)", c.OutliersMaxAbsZ)
				}
			}
		case "datetime":
			fmt.Fprintf(&b, ", %s as %s", c.DateType, c.ParseFormat)
			if !c.First.IsZero() {
				fmt.Fprintf(&b, "; range %s to %s", c.First.Format(time.RFC3339), c.Last.Format(time.RFC3339))
			}
		case "categorical":
			if len(c.TopValues) > 0 {
				b.WriteString(", top: ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					fmt.Fprintf(&b, "%s(%d)", safeVal(kv.Value), kv.Count)
				}
				if c.Unique > len(c.TopValues) {
					fmt.Fprintf(&b, "; unique=%d", c.Unique)
				}
			}
		case "text":
			if len(c.ExampleTexts) > 0 {
				b.WriteString(", e.g., ")
				for i, ex := range c.ExampleTexts {
					if i > 0 {
						b.WriteString(" | ")
					}
					b.WriteString(safeVal(ex))
				}
			}
		}
		b.WriteString("\n")
	}
	if len(r.Groups) > 0 {
		b.WriteString("\n[GROUP-BY SUMMARY]\n")
		for _, g := range r.Groups {
			fmt.Fprintf(&b, "- %s (n=%d)\n", g.Key, g.Size)
			keys := make([]string, 0, len(g.Metrics))
			for k := range g.Metrics {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys[:min(6, len(keys))] {
				m := g.Metrics[k]
				fmt.Fprintf(&b, "  • %s: mean %.4g (min %.4g, max %.4g)\n", k, m.Mean, m.Min, m.Max)
			}
		}
	}
	if r.Corr != nil && len(r.Corr.Columns) >= 2 {
		b.WriteString("\n[CORRELATIONS]\n")
		type pr struct {
			A, B string
			R    float64
		}
		var pairs []pr
		n := len(r.Corr.Columns)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				pairs = append(pairs, pr{A: r.Corr.Columns[i], B: r.Corr.Columns[j], R: r.Corr.Values[i][j]})
			}
		}
		sort.Slice(pairs, func(i, j int) bool {
			ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
			if ai == aj {
				return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
			}
			return ai > aj
		})
		for _, p := range pairs[:min(10, len(pairs))] {
			fmt.Fprintf(&b, "- %s ~ %s: r=%.3f\n", p.A, p.B, p.R)
		}
	}
	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n| ")
		for i, c := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(c.Name))
		}
		b.WriteString(" |\n| ")
		for i := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range r.Samples {
			b.WriteString("| ")
			for i := range r.Cols {
				if i > 0 {
					b.WriteString(" | ")
				}
				val := ""
				if i < len(row) {
					val = row[i]
				}
				if len(val) > 80 {
					val = val[:77] + "..."
				}
				b.WriteString(safeVal(val))
			}
			b.WriteString(" |\n")
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

var unitPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(.*)\s*\(([^)]+)\)\s*$`),  // Alpha (%)
	regexp.MustCompile(`^(.*)\s*\[([^\]]+)\]\s*$`), // Mass [mg/L]
	regexp.MustCompile(`^(.*?)[_\s-]+(mg/L|g/L|ug/L|°[CF]|%|ppm|ppb)$`),
}

// splitUnits separates a trailing unit from a column title.
func splitUnits(name string) (clean string, unit string) {
	s := strings.TrimSpace(name)
	for _, p := range unitPatterns {
		if m := p.FindStringSubmatch(s); len(m) >= 3 {
			base, u := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
			if base != "" && u != "" {
				return base, u
			}
		}
	}
	return s, ""
}

func splitName(title string) string {
	n, _ := splitUnits(title)
	return n
}
