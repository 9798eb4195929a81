package chart

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/plotloom-cli/internal/analysis"
)

func fixture(t *testing.T) *analysis.Result {
	t.Helper()
	res, err := analysis.ReFormatData([][]any{
		{"2023-01-01", "east", "10", "4"},
		{"2023-01-15", "west", "20", "6"},
		{"2023-02-01", "east", "5", "2"},
		{"2023-02-10", "east", "7", "3"},
	}, []string{"date", "region", "sales", "cost"}, analysis.DefaultOptions())
	require.NoError(t, err)
	return res
}

func build(t *testing.T, sel Selection) *Spec {
	t.Helper()
	spec, err := Build(fixture(t), sel, Options{})
	require.NoError(t, err)
	return spec
}

func TestBuildBarSingleMeasure(t *testing.T) {
	spec := build(t, Selection{Type: Bar, X: "region", Y: []string{"sales"}})

	assert.Equal(t, Bar, spec.Type)
	assert.Equal(t, 640, spec.Width)
	assert.Equal(t, 400, spec.Height)
	require.Len(t, spec.Marks, 2)
	bar := spec.Marks[0]
	assert.Equal(t, "barY", bar.Mark)
	assert.Len(t, bar.Data, 4)
	assert.Equal(t, map[string]string{"x": "region", "y": "value"}, bar.Channels)
	assert.Equal(t, "ruleY", spec.Marks[1].Mark)

	assert.Equal(t, &Scale{Label: "region", Type: "band"}, spec.X)
	assert.Equal(t, "sales", spec.Y.Label)
	assert.Equal(t, "linear", spec.Y.Type)
	assert.Nil(t, spec.Color)
}

func TestBuildBarAggregatesLongRows(t *testing.T) {
	spec := build(t, Selection{Type: Bar, X: "region", Y: []string{"sales", "cost"}, Aggregation: analysis.AggSum})

	data := spec.Marks[0].Data
	require.Len(t, data, 4)
	want := []struct {
		region, series string
		value          float64
	}{
		{"east", "sales", 22}, {"east", "cost", 9}, {"west", "sales", 20}, {"west", "cost", 6},
	}
	for i, w := range want {
		assert.Equal(t, w.region, data[i]["region"])
		assert.Equal(t, w.series, data[i][analysis.SeriesField])
		assert.Equal(t, w.value, data[i][analysis.ValueField])
	}
	assert.Equal(t, analysis.SeriesField, spec.Marks[0].Channels["fill"])
	assert.Equal(t, "value", spec.Y.Label)
	require.NotNil(t, spec.Color)
	assert.True(t, spec.Color.Legend)
	assert.Equal(t, "tableau10", spec.Color.Scheme)
}

func TestBuildBarDateAxis(t *testing.T) {
	plain := build(t, Selection{Type: Bar, X: "date", Y: []string{"sales"}})
	assert.Equal(t, "band", plain.X.Type)
	assert.Equal(t, "%Y-%m-%d", plain.X.TickFormat)

	monthly := build(t, Selection{Type: Bar, X: "date", Y: []string{"sales"}, Aggregation: analysis.AggSum, Bucket: analysis.BucketMonth})
	assert.Empty(t, monthly.X.TickFormat)
	data := monthly.Marks[0].Data
	require.Len(t, data, 2)
	assert.Equal(t, "2023-01", data[0]["date"])
	assert.Equal(t, 30.0, data[0][analysis.ValueField])
	assert.Equal(t, "2023-02", data[1]["date"])
	assert.Equal(t, 12.0, data[1][analysis.ValueField])
}

func TestBuildLineUsesTimeField(t *testing.T) {
	spec := build(t, Selection{Type: Line, X: "date", Y: []string{"sales"}})
	assert.Equal(t, "utc", spec.X.Type)
	line := spec.Marks[0]
	assert.Equal(t, "lineY", line.Mark)
	assert.Equal(t, TimeField, line.Channels["x"])
	require.Len(t, line.Data, 4)
	assert.Equal(t, int64(1672531200000), line.Data[0][TimeField])

	monthly := build(t, Selection{Type: Line, X: "date", Y: []string{"sales"}, Bucket: analysis.BucketMonth, Aggregation: analysis.AggMean})
	data := monthly.Marks[0].Data
	require.Len(t, data, 2)
	assert.Equal(t, int64(1672531200000), data[0][TimeField])
	assert.Equal(t, int64(1675209600000), data[1][TimeField])
	assert.Equal(t, 15.0, data[0][analysis.ValueField])
	assert.Equal(t, 6.0, data[1][analysis.ValueField])
}

func TestBuildScatter(t *testing.T) {
	spec := build(t, Selection{Type: Scatter, X: "cost", Y: []string{"sales"}, Color: "region"})
	dot := spec.Marks[0]
	assert.Equal(t, "dot", dot.Mark)
	assert.Len(t, dot.Data, 4)
	assert.Equal(t, map[string]string{"x": "cost", "y": "sales", "fill": "region"}, dot.Channels)
	assert.Equal(t, "linear", spec.X.Type)
	require.NotNil(t, spec.Color)
	assert.Empty(t, spec.Color.Type)
}

func TestBuildNumericColorScale(t *testing.T) {
	bar := build(t, Selection{Type: Bar, X: "region", Y: []string{"sales"}, Color: "cost"})
	assert.Equal(t, analysis.SeriesField, bar.Marks[0].Channels["fill"])
	require.NotNil(t, bar.Color)
	assert.Empty(t, bar.Color.Type)

	dots := build(t, Selection{Type: Scatter, X: "cost", Y: []string{"sales"}, Color: "cost"})
	require.NotNil(t, dots.Color)
	assert.Equal(t, "linear", dots.Color.Type)
}

func TestBuildHistogram(t *testing.T) {
	spec := build(t, Selection{Type: Histogram, X: "sales"})
	rect := spec.Marks[0]
	assert.Equal(t, "rectY", rect.Mark)
	assert.Equal(t, map[string]string{"y": "count"}, rect.Options["binX"])
	assert.Equal(t, "count", spec.Y.Label)

	_, err := Build(fixture(t), Selection{Type: Histogram, X: "region"}, Options{})
	assert.ErrorIs(t, err, ErrUnsupportedColumnType)
}

func TestBuildBoxplot(t *testing.T) {
	spec := build(t, Selection{Type: Boxplot, X: "region", Y: []string{"sales"}})
	require.Len(t, spec.Marks, 3)
	assert.Equal(t, []string{"ruleX", "barY", "tickY"}, []string{spec.Marks[0].Mark, spec.Marks[1].Mark, spec.Marks[2].Mark})

	data := spec.Marks[1].Data
	require.Len(t, data, 2)
	east := data[0]
	assert.Equal(t, "east", east["region"])
	assert.InDelta(t, 6.0, east[fieldQ1], 1e-9)
	assert.InDelta(t, 7.0, east[fieldQ2], 1e-9)
	assert.InDelta(t, 8.5, east[fieldQ3], 1e-9)
	assert.InDelta(t, 5.0, east[fieldLower], 1e-9)
	assert.InDelta(t, 10.0, east[fieldUpper], 1e-9)
	assert.Equal(t, 3, east["count"])

	whole := build(t, Selection{Type: Boxplot, Y: []string{"sales"}})
	require.Len(t, whole.Marks[0].Data, 1)
	assert.Equal(t, "sales", whole.Marks[0].Data[0]["group"])
}

func TestBuildFacet(t *testing.T) {
	spec := build(t, Selection{Type: Bar, X: "date", Y: []string{"sales"}, Facet: "region"})
	require.NotNil(t, spec.Facet)
	assert.Equal(t, "region", spec.Facet.Column)
	assert.Equal(t, "region", spec.Marks[0].Channels["fy"])
}

func TestBuildErrors(t *testing.T) {
	res := fixture(t)
	cases := []struct {
		name string
		sel  Selection
		want error
	}{
		{"unknown x", Selection{Type: Bar, X: "nope", Y: []string{"sales"}}, ErrUnknownColumn},
		{"unknown y", Selection{Type: Line, X: "date", Y: []string{"nope"}}, ErrUnknownColumn},
		{"string measure", Selection{Type: Bar, X: "date", Y: []string{"region"}}, ErrUnsupportedColumnType},
		{"unknown type", Selection{Type: "pie", X: "date", Y: []string{"sales"}}, ErrUnknownChartType},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Build(res, c.sel, Options{})
			assert.ErrorIs(t, err, c.want)
		})
	}

	_, err := Build(res, Selection{Type: Bar, Y: []string{"sales"}}, Options{})
	assert.Error(t, err)
}

func TestScaleForUnsupportedType(t *testing.T) {
	_, err := scaleFor(analysis.Column{Title: "blob", ColType: "binary"}, Line)
	assert.ErrorIs(t, err, ErrUnsupportedColumnType)
	assert.Contains(t, err.Error(), "unsupported column type")

	s, err := scaleFor(analysis.Column{Title: "when", ColType: analysis.ColDate, DateType: analysis.DateMonth}, Bar)
	require.NoError(t, err)
	assert.Equal(t, "%b %Y", s.TickFormat)
}

func TestSpecJSON(t *testing.T) {
	spec, err := Build(fixture(t), Selection{Type: Bar, X: "region", Y: []string{"sales"}}, Options{Width: 800, Height: 300, ColorScheme: "set2"})
	require.NoError(t, err)
	b, err := json.Marshal(spec)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Equal(t, "bar", doc["type"])
	assert.Equal(t, 800.0, doc["width"])
	assert.Equal(t, 300.0, doc["height"])
	assert.Len(t, doc["marks"], 2)
	assert.NotContains(t, doc, "color")
}
