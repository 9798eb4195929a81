package chart

import (
	"fmt"
	"sort"
	"time"

	"github.com/KaramelBytes/plotloom-cli/internal/analysis"
)

// TimeField carries a date x value as epoch milliseconds for utc scales.
const TimeField = "unixMs"

// Box plot fields produced per x category.
const (
	fieldQ1    = "q1"
	fieldQ2    = "q2"
	fieldQ3    = "q3"
	fieldLower = "lower"
	fieldUpper = "upper"
)

// Build assembles the chart document for sel over a reformatted dataset.
// Bar and line charts plot the long pivot of sel.Y; scatter and histogram plot
// the wide rows; box plots summarize sel.Y per x category. Build keeps no state.
func Build(res *analysis.Result, sel Selection, opt Options) (*Spec, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	opt = opt.withDefaults()
	b := &builder{res: res, sel: sel, opt: opt}
	if err := b.resolve(); err != nil {
		return nil, err
	}
	spec := &Spec{Type: sel.Type, Width: opt.Width, Height: opt.Height}
	var err error
	switch {
	case sel.Type.longFormat():
		err = b.long(spec)
	case sel.Type == Scatter:
		err = b.scatter(spec)
	case sel.Type == Histogram:
		err = b.histogram(spec)
	case sel.Type == Boxplot:
		err = b.boxplot(spec)
	}
	if err != nil {
		return nil, err
	}
	if sel.Facet != "" {
		spec.Facet = &Facet{Column: b.facet.DataIndex, Label: b.facet.Title}
	}
	opt.Logger.Debug("chart built", "type", sel.Type, "x", sel.X, "y", sel.Y, "marks", len(spec.Marks))
	return spec, nil
}

type builder struct {
	res   *analysis.Result
	sel   Selection
	opt   Options
	x     analysis.Column
	ys    []analysis.Column
	color analysis.Column
	facet analysis.Column
}

func (b *builder) column(name string) (analysis.Column, error) {
	c, ok := b.res.Column(name)
	if !ok {
		return analysis.Column{}, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}
	return c, nil
}

func (b *builder) resolve() error {
	var err error
	if b.sel.X != "" {
		if b.x, err = b.column(b.sel.X); err != nil {
			return err
		}
	}
	for _, y := range b.sel.Y {
		c, err := b.column(y)
		if err != nil {
			return err
		}
		b.ys = append(b.ys, c)
	}
	if b.sel.Color != "" {
		if b.color, err = b.column(b.sel.Color); err != nil {
			return err
		}
	}
	if b.sel.Facet != "" {
		if b.facet, err = b.column(b.sel.Facet); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) yNames() []string {
	out := make([]string, len(b.ys))
	for i, c := range b.ys {
		out[i] = c.DataIndex
	}
	return out
}

func (b *builder) colorScale(multi bool) *Color {
	if b.sel.Color == "" && !multi {
		return nil
	}
	c := &Color{Legend: true, Scheme: b.opt.ColorScheme}
	// Long-format marks color by the string series field.
	if b.sel.Color != "" && b.color.Numeric && !multi && !b.sel.Type.longFormat() {
		c.Type = "linear"
	}
	return c
}

func (b *builder) withFacet(ch map[string]string) map[string]string {
	if b.sel.Facet != "" {
		ch["fy"] = b.facet.DataIndex
	}
	return ch
}

func (b *builder) bucketed() bool {
	return b.sel.Bucket != analysis.BucketNone && b.x.IsDate
}

func (b *builder) aggregated() bool {
	return b.sel.Aggregation != "" && b.sel.Aggregation != analysis.AggRaw
}

// long builds bar and line charts from the wide-to-long pivot.
func (b *builder) long(spec *Spec) error {
	xScale, err := scaleFor(b.x, b.sel.Type)
	if err != nil {
		return err
	}
	for _, y := range b.ys {
		if _, err := valueScale(y); err != nil {
			return err
		}
	}
	yScale := &Scale{Label: b.ys[0].Title, Type: "linear", Grid: true}
	if len(b.ys) > 1 {
		yScale.Label = analysis.ValueField
	}

	data := analysis.ConvertWideToLong(b.res.Rows, b.x.DataIndex, b.yNames(), b.color.DataIndex, b.facet.DataIndex)
	if b.aggregated() || b.bucketed() {
		if data, err = b.aggregateLong(data); err != nil {
			return err
		}
		if b.bucketed() && b.sel.Type == Bar {
			xScale.TickFormat = ""
		}
	}

	multi := len(b.ys) > 1
	ch := b.withFacet(map[string]string{"x": b.x.DataIndex, "y": analysis.ValueField})
	if b.sel.Color != "" || multi {
		ch["z"] = analysis.SeriesField
	}

	switch b.sel.Type {
	case Bar:
		if ch["z"] != "" {
			ch["fill"] = analysis.SeriesField
		}
		spec.Marks = append(spec.Marks, Mark{Mark: "barY", Data: data, Channels: ch})
	case Line:
		if b.x.IsDate {
			data = withTime(data, b.x.DataIndex, b.sel.Bucket)
			ch["x"] = TimeField
			sortByTime(data)
		}
		if ch["z"] != "" {
			ch["stroke"] = analysis.SeriesField
		}
		spec.Marks = append(spec.Marks, Mark{Mark: "lineY", Data: data, Channels: ch})
	}
	spec.Marks = append(spec.Marks, Mark{Mark: "ruleY", Options: map[string]any{"y": []float64{0}}})
	spec.X, spec.Y = xScale, yScale
	spec.Color = b.colorScale(multi)
	return nil
}

// aggregateLong reduces pivoted rows per (x, series, facet).
func (b *builder) aggregateLong(long []analysis.Row) ([]analysis.Row, error) {
	keys := []analysis.GroupKey{{Name: b.x.DataIndex, Column: b.x.DataIndex}, {Name: analysis.SeriesField, Column: analysis.SeriesField}}
	if b.bucketed() {
		keys[0].Bucket = b.sel.Bucket
	}
	if b.sel.Facet != "" {
		keys = append(keys, analysis.GroupKey{Name: b.facet.DataIndex, Column: b.facet.DataIndex})
	}
	agg := b.sel.Aggregation
	if agg == "" || agg == analysis.AggRaw {
		agg = analysis.AggSum
	}
	groups, err := analysis.Aggregate(long, analysis.AggregateOptions{
		GroupBy: keys,
		Value:   analysis.ColumnValue(analysis.ValueField),
		Type:    agg,
	})
	if err != nil {
		return nil, err
	}
	out := make([]analysis.Row, 0, len(groups))
	for _, g := range groups {
		r := analysis.Row{analysis.ValueField: g.Value}
		for k, v := range g.Key {
			r[k] = v
		}
		if b.x.IsDate {
			r[analysis.UnixField] = g.Entries[0][analysis.UnixField]
		}
		out = append(out, r)
	}
	return out, nil
}

// withTime adds TimeField (epoch ms) to copies of rows with a converted date x.
func withTime(rows []analysis.Row, x string, bucket analysis.TimeBucket) []analysis.Row {
	out := make([]analysis.Row, 0, len(rows))
	for _, r := range rows {
		c := make(analysis.Row, len(r)+1)
		for k, v := range r {
			c[k] = v
		}
		if ts, ok := r.Unix(x); ok {
			c[TimeField] = bucket.Truncate(time.Unix(ts, 0)).UnixMilli()
		}
		out = append(out, c)
	}
	return out
}

func sortByTime(rows []analysis.Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, aok := rows[i][TimeField].(int64)
		b, bok := rows[j][TimeField].(int64)
		if aok != bok {
			return aok
		}
		return a < b
	})
}

func (b *builder) scatter(spec *Spec) error {
	xScale, err := scaleFor(b.x, Scatter)
	if err != nil {
		return err
	}
	yScale, err := valueScale(b.ys[0])
	if err != nil {
		return err
	}
	data := b.res.Rows
	ch := b.withFacet(map[string]string{"x": b.x.DataIndex, "y": b.ys[0].DataIndex})
	if b.x.IsDate {
		data = withTime(data, b.x.DataIndex, analysis.BucketNone)
		ch["x"] = TimeField
	}
	if b.sel.Color != "" {
		ch["fill"] = b.color.DataIndex
	}
	spec.Marks = []Mark{{Mark: "dot", Data: data, Channels: ch}}
	spec.X, spec.Y = xScale, yScale
	spec.Color = b.colorScale(false)
	return nil
}

func (b *builder) histogram(spec *Spec) error {
	if !b.x.Numeric && !b.x.IsDate {
		return fmt.Errorf("%w: %q for binned column %s", ErrUnsupportedColumnType, b.x.ColType, b.x.Title)
	}
	xScale, err := scaleFor(b.x, Histogram)
	if err != nil {
		return err
	}
	data := b.res.Rows
	ch := b.withFacet(map[string]string{"x": b.x.DataIndex})
	if b.x.IsDate {
		data = withTime(data, b.x.DataIndex, analysis.BucketNone)
		ch["x"] = TimeField
	}
	if b.sel.Color != "" {
		ch["fill"] = b.color.DataIndex
	}
	spec.Marks = []Mark{
		{Mark: "rectY", Data: data, Channels: ch, Options: map[string]any{"binX": map[string]string{"y": "count"}, "thresholds": "auto"}},
		{Mark: "ruleY", Options: map[string]any{"y": []float64{0}}},
	}
	spec.X = xScale
	spec.Y = &Scale{Label: "count", Type: "linear", Grid: true}
	spec.Color = b.colorScale(false)
	return nil
}

// boxplot draws whiskers (clamped to 1.5 IQR), a Q1-Q3 box and a median tick.
func (b *builder) boxplot(spec *Spec) error {
	yScale, err := valueScale(b.ys[0])
	if err != nil {
		return err
	}
	var keys []analysis.GroupKey
	xField := "group"
	if b.sel.X != "" {
		if spec.X, err = scaleFor(b.x, Boxplot); err != nil {
			return err
		}
		xField = b.x.DataIndex
		keys = append(keys, analysis.GroupKey{Name: xField, Column: b.x.DataIndex, Bucket: b.sel.Bucket})
		if b.bucketed() {
			spec.X.TickFormat = ""
		}
	} else {
		spec.X = &Scale{Type: "band"}
	}
	if b.sel.Facet != "" {
		keys = append(keys, analysis.GroupKey{Name: b.facet.DataIndex, Column: b.facet.DataIndex})
	}
	groups, err := analysis.Aggregate(b.res.Rows, analysis.AggregateOptions{
		GroupBy:     keys,
		Value:       analysis.ColumnValue(b.ys[0].DataIndex),
		Type:        analysis.AggMedian,
		ReturnStats: true,
	})
	if err != nil {
		return err
	}
	data := make([]analysis.Row, 0, len(groups))
	for _, g := range groups {
		st := g.Stats
		r := analysis.Row{
			fieldQ1:    st.Q1,
			fieldQ2:    st.Q2,
			fieldQ3:    st.Q3,
			fieldLower: max(st.Min, st.Q1-1.5*st.IQR),
			fieldUpper: min(st.Max, st.Q3+1.5*st.IQR),
			"count":    st.Count,
		}
		if b.sel.X == "" {
			r[xField] = b.ys[0].Title
		}
		for k, v := range g.Key {
			r[k] = v
		}
		data = append(data, r)
	}
	ch := func(m map[string]string) map[string]string {
		m["x"] = xField
		return b.withFacet(m)
	}
	spec.Marks = []Mark{
		{Mark: "ruleX", Data: data, Channels: ch(map[string]string{"y1": fieldLower, "y2": fieldUpper})},
		{Mark: "barY", Data: data, Channels: ch(map[string]string{"y1": fieldQ1, "y2": fieldQ3}), Options: map[string]any{"fillOpacity": 0.6}},
		{Mark: "tickY", Data: data, Channels: ch(map[string]string{"y": fieldQ2}), Options: map[string]any{"strokeWidth": 2}},
	}
	spec.Y = yScale
	return nil
}
