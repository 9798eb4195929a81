package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KaramelBytes/plotloom-cli/internal/analysis"
)

func apply(s Selection, actions ...Action) Selection {
	for _, a := range actions {
		s = Reduce(s, a)
	}
	return s
}

func TestReduceBuildsSelection(t *testing.T) {
	s := apply(Selection{},
		SetType{Type: Bar},
		SetX{Column: "date"},
		AddY{Column: "sales"},
		AddY{Column: "cost"},
		AddY{Column: "sales"},
		SetColor{Column: "region"},
		SetFacet{Column: "store"},
		SetAggregation{Type: analysis.AggSum},
		SetBucket{Bucket: analysis.BucketMonth},
	)
	assert.Equal(t, Selection{
		Type:        Bar,
		X:           "date",
		Y:           []string{"sales", "cost"},
		Color:       "region",
		Facet:       "store",
		Aggregation: analysis.AggSum,
		Bucket:      analysis.BucketMonth,
	}, s)
	assert.NoError(t, s.Validate())
}

func TestReduceDoesNotModifyInput(t *testing.T) {
	before := Selection{Type: Line, X: "date", Y: []string{"a", "b"}}
	after := Reduce(before, RemoveY{Column: "a"})
	assert.Equal(t, []string{"b"}, after.Y)
	assert.Equal(t, []string{"a", "b"}, before.Y)
}

func TestReduceSingleMeasureFamilies(t *testing.T) {
	s := Selection{Type: Bar, X: "x", Y: []string{"a", "b"}}

	scatter := Reduce(s, SetType{Type: Scatter})
	assert.Equal(t, []string{"a"}, scatter.Y)
	assert.Equal(t, []string{"c"}, Reduce(scatter, AddY{Column: "c"}).Y)

	hist := Reduce(s, SetType{Type: Histogram})
	assert.Empty(t, hist.Y)
	assert.NoError(t, hist.Validate())
}

func TestReduceSetYAndReset(t *testing.T) {
	s := apply(Selection{Type: Line, X: "x", Y: []string{"a"}}, SetY{Columns: []string{"b", "c", "b", ""}})
	assert.Equal(t, []string{"b", "c"}, s.Y)

	assert.Equal(t, Selection{}, Reduce(s, Reset{}))
	assert.Equal(t, s, Reduce(s, nil))
}

func TestSelectionValidate(t *testing.T) {
	assert.ErrorIs(t, Selection{Type: "pie", X: "x", Y: []string{"y"}}.Validate(), ErrUnknownChartType)
	assert.Error(t, Selection{Type: Line, Y: []string{"y"}}.Validate())
	assert.Error(t, Selection{Type: Line, X: "x"}.Validate())
	assert.NoError(t, Selection{Type: Boxplot, Y: []string{"y"}}.Validate())
}

func TestParseType(t *testing.T) {
	typ, err := ParseType(" Line ")
	assert.NoError(t, err)
	assert.Equal(t, Line, typ)
	_, err = ParseType("donut")
	assert.ErrorIs(t, err, ErrUnknownChartType)
}
