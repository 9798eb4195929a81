package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	st := Describe([]float64{4, 1, 3, 2})
	assert.Equal(t, 4, st.Count)
	assert.Equal(t, 10.0, st.Sum)
	assert.Equal(t, 2.5, st.Mean)
	assert.Equal(t, 2.5, st.Median)
	assert.InDelta(t, 1.75, st.Q1, 1e-9)
	assert.InDelta(t, 3.25, st.Q3, 1e-9)
	assert.InDelta(t, 1.5, st.IQR, 1e-9)
	assert.Equal(t, 1.0, st.Min)
	assert.Equal(t, 4.0, st.Max)

	assert.Equal(t, Stats{}, Describe(nil))
}

func TestQuantileInterpolates(t *testing.T) {
	sorted := []float64{10, 20, 30, 40, 50}
	assert.Equal(t, 10.0, quantile(sorted, 0))
	assert.Equal(t, 30.0, quantile(sorted, 0.5))
	assert.Equal(t, 50.0, quantile(sorted, 1))
	assert.InDelta(t, 15.0, quantile(sorted, 0.125), 1e-9)
	assert.Equal(t, 0.0, quantile(nil, 0.5))
}

func TestMedianMAD(t *testing.T) {
	med, mad := medianMAD([]float64{1, 1, 2, 2, 4, 6, 9})
	assert.Equal(t, 2.0, med)
	assert.Equal(t, 1.0, mad)
}

func TestPearson(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	y := []float64{2, 4, 6, 100}
	all := func(int) bool { return true }
	firstThree := func(i int) bool { return i < 3 }

	r, ok := pearson(x, y, firstThree)
	assert.True(t, ok)
	assert.InDelta(t, 1.0, r, 1e-9)

	_, ok = pearson(x, []float64{5, 5, 5, 5}, all)
	assert.False(t, ok)

	_, ok = pearson(x, y, func(i int) bool { return i == 0 })
	assert.False(t, ok)
}
