package chart

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/KaramelBytes/plotloom-cli/internal/analysis"
)

var (
	// ErrUnsupportedColumnType is returned when no scale fits a column type.
	ErrUnsupportedColumnType = errors.New("unsupported column type")
	// ErrUnknownChartType is returned for a chart family that is not built in.
	ErrUnknownChartType = errors.New("unknown chart type")
	// ErrUnknownColumn is returned when a selection names a missing column.
	ErrUnknownColumn = errors.New("unknown column")
)

// Type is a chart family.
type Type string

const (
	Bar       Type = "bar"
	Line      Type = "line"
	Scatter   Type = "scatter"
	Histogram Type = "histogram"
	Boxplot   Type = "boxplot"
)

// Types lists the supported chart families.
var Types = []Type{Bar, Line, Scatter, Histogram, Boxplot}

// ParseType validates a chart family name.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Types {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownChartType, s)
}

// longFormat reports whether the family plots the wide-to-long pivot.
func (t Type) longFormat() bool { return t == Bar || t == Line }

// Scale configures one positional axis.
type Scale struct {
	Label      string `json:"label,omitempty"`
	Type       string `json:"type"`
	TickFormat string `json:"tickFormat,omitempty"`
	Grid       bool   `json:"grid,omitempty"`
}

// Color configures the color scale.
type Color struct {
	Legend bool   `json:"legend"`
	Scheme string `json:"scheme,omitempty"`
	Type   string `json:"type,omitempty"`
}

// Facet partitions the chart into panels by a column.
type Facet struct {
	Column string `json:"column"`
	Label  string `json:"label,omitempty"`
}

// Mark is one layer of the chart with its own data and channel mapping.
type Mark struct {
	Mark     string            `json:"mark"`
	Data     []analysis.Row    `json:"data,omitempty"`
	Channels map[string]string `json:"channels,omitempty"`
	Options  map[string]any    `json:"options,omitempty"`
}

// Spec is a declarative chart document for an Observable Plot style renderer.
type Spec struct {
	Type   Type   `json:"type"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	X      *Scale `json:"x,omitempty"`
	Y      *Scale `json:"y,omitempty"`
	Color  *Color `json:"color,omitempty"`
	Facet  *Facet `json:"facet,omitempty"`
	Marks  []Mark `json:"marks"`
}

// Options holds presentation defaults.
type Options struct {
	Width       int
	Height      int
	ColorScheme string
	Logger      *slog.Logger
}

// DefaultOptions returns the stock chart size and palette.
func DefaultOptions() Options {
	return Options{Width: 640, Height: 400, ColorScheme: "tableau10"}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.ColorScheme == "" {
		o.ColorScheme = d.ColorScheme
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}
