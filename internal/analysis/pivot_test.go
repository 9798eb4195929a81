package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertWideToLong(t *testing.T) {
	rows := []Row{
		{"x": "a", "y1": 1.0, "y2": 2.0},
		{"x": "b", "y1": 3.0, "y2": 4.0},
	}
	long := ConvertWideToLong(rows, "x", []string{"y1", "y2"}, "", "")
	require.Len(t, long, 2*len(rows))

	wantLabels := []string{"y1", "y2", "y1", "y2"}
	wantValues := []float64{1, 2, 3, 4}
	wantX := []string{"a", "a", "b", "b"}
	for i, r := range long {
		assert.Equal(t, wantLabels[i], r[LabelField])
		assert.Equal(t, wantValues[i], r[ValueField])
		assert.Equal(t, r[r[LabelField].(string)], r[ValueField])
		assert.Equal(t, wantX[i], r["x"])
		assert.Equal(t, wantLabels[i], r[SeriesField])
	}
	assert.Equal(t, 0, long[0][FacetIndexField])
	assert.Equal(t, 1, long[1][FacetIndexField])
	assert.Equal(t, 0, long[2][FacetIndexField])

	assert.NotContains(t, rows[0], LabelField)
}

func TestConvertWideToLongRunningIndexPerFacet(t *testing.T) {
	rows := []Row{
		{"x": "jan", "f": "north", "y": 1.0},
		{"x": "jan", "f": "south", "y": 2.0},
		{"x": "jan", "f": "north", "y": 3.0},
	}
	long := ConvertWideToLong(rows, "x", []string{"y"}, "", "f")
	require.Len(t, long, 3)
	assert.Equal(t, 0, long[0][FacetIndexField])
	assert.Equal(t, 0, long[1][FacetIndexField])
	assert.Equal(t, 1, long[2][FacetIndexField])

	noFacet := ConvertWideToLong(rows, "x", []string{"y"}, "", "")
	assert.Equal(t, 2, noFacet[2][FacetIndexField])
}

func TestConvertWideToLongSeries(t *testing.T) {
	rows := []Row{{"x": 1, "region": "east", "a": 1.0, "b": 2.0}}

	multi := ConvertWideToLong(rows, "x", []string{"a", "b"}, "region", "")
	assert.Equal(t, "east - a", multi[0][SeriesField])
	assert.Equal(t, "east - b", multi[1][SeriesField])

	single := ConvertWideToLong(rows, "x", []string{"a"}, "region", "")
	assert.Equal(t, "east", single[0][SeriesField])
}

func TestConvertWideToLongBlankColor(t *testing.T) {
	rows := []Row{{"x": 1, "region": nil, "a": 1.0}}
	long := ConvertWideToLong(rows, "x", []string{"a"}, "region", "")
	assert.Equal(t, "", long[0][SeriesField])
}

func TestConvertWideToLongEmpty(t *testing.T) {
	assert.Empty(t, ConvertWideToLong(nil, "x", []string{"a"}, "", ""))
	assert.Empty(t, ConvertWideToLong([]Row{{"x": 1}}, "x", nil, "", ""))
}
