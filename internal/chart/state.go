package chart

import (
	"errors"
	"slices"

	"github.com/KaramelBytes/plotloom-cli/internal/analysis"
)

// Selection is the user's chart configuration. It is changed only through Reduce.
type Selection struct {
	Type        Type                     `json:"type"`
	X           string                   `json:"x,omitempty"`
	Y           []string                 `json:"y,omitempty"`
	Color       string                   `json:"color,omitempty"`
	Facet       string                   `json:"facet,omitempty"`
	Aggregation analysis.AggregationType `json:"aggregation,omitempty"`
	Bucket      analysis.TimeBucket      `json:"bucket,omitempty"`
}

// Action is one typed change to a Selection.
type Action interface {
	apply(Selection) Selection
}

type (
	SetType        struct{ Type Type }
	SetX           struct{ Column string }
	SetY           struct{ Columns []string }
	AddY           struct{ Column string }
	RemoveY        struct{ Column string }
	SetColor       struct{ Column string }
	SetFacet       struct{ Column string }
	SetAggregation struct{ Type analysis.AggregationType }
	SetBucket      struct{ Bucket analysis.TimeBucket }
	Reset          struct{}
)

// Reduce returns the selection that results from applying a to s. s is not modified.
func Reduce(s Selection, a Action) Selection {
	s.Y = slices.Clone(s.Y)
	if a == nil {
		return s
	}
	return a.apply(s)
}

// singleMeasure reports whether the family plots exactly one y column.
func singleMeasure(t Type) bool { return t == Scatter || t == Boxplot }

func (a SetType) apply(s Selection) Selection {
	s.Type = a.Type
	if singleMeasure(a.Type) && len(s.Y) > 1 {
		s.Y = s.Y[:1]
	}
	if a.Type == Histogram {
		s.Y = nil
	}
	return s
}

func (a SetX) apply(s Selection) Selection {
	s.X = a.Column
	return s
}

func (a SetY) apply(s Selection) Selection {
	s.Y = nil
	for _, c := range a.Columns {
		s = AddY{Column: c}.apply(s)
	}
	return s
}

func (a AddY) apply(s Selection) Selection {
	if a.Column == "" || slices.Contains(s.Y, a.Column) {
		return s
	}
	if singleMeasure(s.Type) {
		s.Y = []string{a.Column}
		return s
	}
	s.Y = append(s.Y, a.Column)
	return s
}

func (a RemoveY) apply(s Selection) Selection {
	s.Y = slices.DeleteFunc(s.Y, func(c string) bool { return c == a.Column })
	return s
}

func (a SetColor) apply(s Selection) Selection {
	s.Color = a.Column
	return s
}

func (a SetFacet) apply(s Selection) Selection {
	s.Facet = a.Column
	return s
}

func (a SetAggregation) apply(s Selection) Selection {
	s.Aggregation = a.Type
	return s
}

func (a SetBucket) apply(s Selection) Selection {
	s.Bucket = a.Bucket
	return s
}

func (Reset) apply(Selection) Selection { return Selection{} }

// Validate checks that the selection names everything its family needs.
func (s Selection) Validate() error {
	if _, err := ParseType(string(s.Type)); err != nil {
		return err
	}
	if s.X == "" && s.Type != Boxplot {
		return errors.New("x column is required")
	}
	if s.Type != Histogram && len(s.Y) == 0 {
		return errors.New("at least one y column is required")
	}
	return nil
}
