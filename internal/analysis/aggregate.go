package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownAggregation is returned for an aggregation type that is not built
// in and comes without a custom Reducer.
var ErrUnknownAggregation = errors.New("unknown aggregation")

// AggregationType selects how grouped values are reduced.
type AggregationType string

const (
	AggMean   AggregationType = "mean"
	AggMedian AggregationType = "median"
	AggMax    AggregationType = "max"
	AggMin    AggregationType = "min"
	AggSum    AggregationType = "sum"
	AggRaw    AggregationType = "raw"
)

// ParseAggregationType normalizes user input. Unknown names are returned as
// is so that they can be paired with a custom Reducer.
func ParseAggregationType(s string) AggregationType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "raw", "none":
		return AggRaw
	case "mean", "avg", "average":
		return AggMean
	case "median":
		return AggMedian
	case "max":
		return AggMax
	case "min":
		return AggMin
	case "sum", "total":
		return AggSum
	}
	return AggregationType(strings.ToLower(strings.TrimSpace(s)))
}

// TimeBucket truncates a date key to a calendar period.
type TimeBucket string

const (
	BucketNone  TimeBucket = ""
	BucketYear  TimeBucket = "year"
	BucketMonth TimeBucket = "month"
	BucketWeek  TimeBucket = "week"
	BucketDay   TimeBucket = "day"
)

// ParseTimeBucket validates a bucket name.
func ParseTimeBucket(s string) (TimeBucket, error) {
	switch b := TimeBucket(strings.ToLower(strings.TrimSpace(s))); b {
	case BucketNone, BucketYear, BucketMonth, BucketWeek, BucketDay:
		return b, nil
	}
	return BucketNone, fmt.Errorf("unknown time bucket %q (want year, month, week or day)", s)
}

// Format renders t (UTC) as the bucket label.
func (b TimeBucket) Format(t time.Time) string {
	t = t.UTC()
	switch b {
	case BucketYear:
		return t.Format("2006")
	case BucketMonth:
		return t.Format("2006-01")
	case BucketWeek:
		y, w := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", y, w)
	default:
		return t.Format("2006-01-02")
	}
}

// Truncate returns the UTC start of the bucket containing t.
func (b TimeBucket) Truncate(t time.Time) time.Time {
	t = t.UTC()
	switch b {
	case BucketYear:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	case BucketMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case BucketWeek:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return day.AddDate(0, 0, -((int(day.Weekday()) + 6) % 7))
	case BucketDay:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	return t
}

// GroupKey is one named grouping dimension.
type GroupKey struct {
	// Name is the key under which the value appears in the Group.
	Name   string
	Column string
	// Bucket truncates a date column via its unixDateValues entry.
	Bucket TimeBucket
}

// Reducer collapses grouped values to one number.
type Reducer func([]float64) float64

// ValueAccessor extracts the value to aggregate from a row.
type ValueAccessor func(Row) (float64, bool)

// ColumnValue reads a numeric column; blanks and non-numbers are skipped.
func ColumnValue(name string) ValueAccessor {
	return func(r Row) (float64, bool) { return r.Float(name) }
}

// AggregateOptions configures Aggregate.
type AggregateOptions struct {
	GroupBy     []GroupKey
	Value       ValueAccessor
	Type        AggregationType
	Reducer     Reducer
	ReturnStats bool
}

// Group is one combination of key values with its reduced value.
type Group struct {
	Names   []string       `json:"-"`
	Key     map[string]any `json:"-"`
	Value   any            `json:"value"`
	Raw     []float64      `json:"-"`
	Entries []Row          `json:"dataEntries"`
	Stats   *Stats         `json:"stats,omitempty"`
}

// Float returns Value as a number when it was reduced to one.
func (g Group) Float() (float64, bool) {
	f, ok := g.Value.(float64)
	return f, ok
}

// MarshalJSON flattens the group keys into the object, in GroupBy order.
func (g Group) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	write := func(k string, v any) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		kb, _ := json.Marshal(k)
		vb, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
		return nil
	}
	for _, n := range g.Names {
		if err := write(n, g.Key[n]); err != nil {
			return nil, err
		}
	}
	if err := write("value", g.Value); err != nil {
		return nil, err
	}
	entries := g.Entries
	if entries == nil {
		entries = []Row{}
	}
	if err := write("dataEntries", entries); err != nil {
		return nil, err
	}
	if g.Stats != nil {
		if err := write("stats", g.Stats); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Aggregate groups rows by every combination of opt.GroupBy values (in order
// of first appearance) and reduces opt.Value per group.
func Aggregate(rows []Row, opt AggregateOptions) ([]Group, error) {
	reduce, err := reducerFor(opt.Type, opt.Reducer)
	if err != nil {
		return nil, err
	}
	value := opt.Value
	if value == nil {
		value = func(Row) (float64, bool) { return 0, false }
	}
	groups := GroupRows(rows, opt.GroupBy)
	for i := range groups {
		g := &groups[i]
		for _, r := range g.Entries {
			if v, ok := value(r); ok {
				g.Raw = append(g.Raw, v)
			}
		}
		if g.Raw == nil {
			g.Raw = []float64{}
		}
		if reduce == nil {
			g.Value = g.Raw
		} else if len(g.Raw) == 0 {
			g.Value = 0.0
		} else {
			g.Value = reduce(g.Raw)
		}
		if opt.ReturnStats {
			st := Describe(g.Raw)
			g.Stats = &st
		}
	}
	return groups, nil
}

// GroupRows partitions rows by the given keys without reducing them.
func GroupRows(rows []Row, keys []GroupKey) []Group {
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.Name
		if names[i] == "" {
			names[i] = k.Column
		}
	}
	var out []Group
	index := map[string]int{}
	for _, r := range rows {
		key := make(map[string]any, len(keys))
		parts := make([]string, len(keys))
		for i, k := range keys {
			v := keyValue(r, k)
			key[names[i]] = v
			parts[i] = fmt.Sprintf("%T:%v", v, v)
		}
		id := strings.Join(parts, "\x1f")
		pos, ok := index[id]
		if !ok {
			pos = len(out)
			index[id] = pos
			out = append(out, Group{Names: names, Key: key})
		}
		out[pos].Entries = append(out[pos].Entries, r)
	}
	return out
}

func keyValue(r Row, k GroupKey) any {
	if k.Bucket == BucketNone {
		return r[k.Column]
	}
	ts, ok := r.Unix(k.Column)
	if !ok {
		return r[k.Column]
	}
	return k.Bucket.Format(time.Unix(ts, 0))
}

func reducerFor(t AggregationType, custom Reducer) (Reducer, error) {
	switch t {
	case "":
		return custom, nil
	case AggRaw:
		return nil, nil
	case AggMean:
		return mean, nil
	case AggMedian:
		return median, nil
	case AggMax:
		return maxOf, nil
	case AggMin:
		return minOf, nil
	case AggSum:
		return sum, nil
	}
	if custom == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAggregation, string(t))
	}
	return custom, nil
}
