package chart

import (
	"fmt"

	"github.com/KaramelBytes/plotloom-cli/internal/analysis"
)

// dateTickFormats are d3-time-format strings per date granularity.
var dateTickFormats = map[analysis.DateType]string{
	analysis.DateYear:     "%Y",
	analysis.DateMonth:    "%b %Y",
	analysis.DateWeek:     "%G-W%V",
	analysis.DateDay:      "%Y-%m-%d",
	analysis.DateDateTime: "%Y-%m-%d %H:%M",
}

// scaleFor picks the positional scale of col for a chart family. Bars place
// every x value in its own band, so dates become bands with a date tick format.
func scaleFor(col analysis.Column, t Type) (*Scale, error) {
	s := &Scale{Label: col.Title}
	switch col.ColType {
	case analysis.ColInteger, analysis.ColDecimal:
		s.Type = "linear"
		if t == Bar {
			s.Type = "band"
		}
	case analysis.ColDate:
		if t == Bar || t == Boxplot {
			s.Type = "band"
			s.TickFormat = dateTickFormats[col.DateType]
		} else {
			s.Type = "utc"
		}
	case analysis.ColString:
		s.Type = "point"
		if t == Bar || t == Boxplot {
			s.Type = "band"
		}
	default:
		return nil, fmt.Errorf("%w: %q for column %s", ErrUnsupportedColumnType, col.ColType, col.Title)
	}
	return s, nil
}

// valueScale is the scale of a measured (y) column; only numbers qualify.
func valueScale(col analysis.Column) (*Scale, error) {
	if !col.Numeric {
		return nil, fmt.Errorf("%w: %q for measure %s", ErrUnsupportedColumnType, col.ColType, col.Title)
	}
	return &Scale{Label: col.Title, Type: "linear", Grid: true}, nil
}
