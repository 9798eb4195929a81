package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats are descriptive statistics over the raw values of one group.
type Stats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Mode   float64 `json:"mode"`
	Max    float64 `json:"max"`
	Min    float64 `json:"min"`
	Sum    float64 `json:"sum"`
	Count  int     `json:"count"`
	Q1     float64 `json:"q1"`
	Q2     float64 `json:"q2"`
	Q3     float64 `json:"q3"`
	IQR    float64 `json:"iqr"`
}

// Describe computes Stats for vals. Quartiles use linear interpolation
// between closest ranks. An empty input yields the zero Stats.
func Describe(vals []float64) Stats {
	if len(vals) == 0 {
		return Stats{}
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	mode, _ := stat.Mode(sorted, nil)
	s := Stats{
		Mean:  stat.Mean(sorted, nil),
		Mode:  mode,
		Max:   floats.Max(sorted),
		Min:   floats.Min(sorted),
		Sum:   floats.Sum(vals),
		Count: len(vals),
		Q1:    quantile(sorted, 0.25),
		Q2:    quantile(sorted, 0.5),
		Q3:    quantile(sorted, 0.75),
	}
	s.Median = s.Q2
	s.IQR = s.Q3 - s.Q1
	return s
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	return stat.Mean(vals, nil)
}

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	return quantile(sorted, 0.5)
}

func sum(vals []float64) float64 { return floats.Sum(vals) }

func minOf(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	return floats.Min(vals)
}

func maxOf(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	return floats.Max(vals)
}

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// pearson returns the correlation of the pairwise-complete values of x and y.
// ok is false when fewer than two pairs exist or either side has no variance.
func pearson(x, y []float64, present func(i int) bool) (r float64, ok bool) {
	var xs, ys []float64
	for i := range x {
		if present(i) {
			xs = append(xs, x[i])
			ys = append(ys, y[i])
		}
	}
	if len(xs) < 2 {
		return 0, false
	}
	r = stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	return math.Max(-1, math.Min(1, r)), true
}
