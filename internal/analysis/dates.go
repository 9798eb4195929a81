package analysis

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/araddon/dateparse"
)

// DateInfo is the outcome of sniffing one column for dates.
type DateInfo struct {
	IsDate      bool
	DateType    DateType
	ParseFormat string
	DateToUnix  DateConverter
}

// ParseError reports a cell that a date converter could not handle.
type ParseError struct {
	Value  any
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q as %s: %v", valueString(e.Value), e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var errNotInRange = errors.New("value out of range")

type dateFormat struct {
	name   string // dayjs-style token string reported as ParseFormat
	layout string
	kind   DateType
}

// Candidate formats in priority order. Each format appears once; the
// MM/DD vs DD/MM ambiguity is settled by how many column values each parses.
var dateFormats = []dateFormat{
	{"YYYY-MM-DDTHH:mm:ssZ", time.RFC3339, DateDateTime},
	{"YYYY-MM-DDTHH:mm:ss", "2006-01-02T15:04:05", DateDateTime},
	{"YYYY-MM-DD HH:mm:ss", "2006-01-02 15:04:05", DateDateTime},
	{"YYYY-MM-DD HH:mm", "2006-01-02 15:04", DateDateTime},
	{"MM/DD/YYYY HH:mm:ss", "01/02/2006 15:04:05", DateDateTime},
	{"DD/MM/YYYY HH:mm:ss", "02/01/2006 15:04:05", DateDateTime},
	{"YYYY-MM-DD", "2006-01-02", DateDay},
	{"YYYY/MM/DD", "2006/01/02", DateDay},
	{"MM/DD/YYYY", "01/02/2006", DateDay},
	{"DD/MM/YYYY", "02/01/2006", DateDay},
	{"M/D/YYYY", "1/2/2006", DateDay},
	{"D/M/YYYY", "2/1/2006", DateDay},
	{"DD-MM-YYYY", "02-01-2006", DateDay},
	{"MMM D, YYYY", "Jan 2, 2006", DateDay},
	{"D MMM YYYY", "2 Jan 2006", DateDay},
	{"YYYY-MM", "2006-01", DateMonth},
	{"MMM YYYY", "Jan 2006", DateMonth},
	{"MMMM YYYY", "January 2006", DateMonth},
}

const isoWeekFormat = "GGGG-[W]WW"

var isoWeekRe = regexp.MustCompile(`^(\d{4})-?W(\d{1,2})$`)

// CheckIfDate decides whether the column holding sample is a date column.
// rows supplies the column values (colIdx) used to confirm a candidate format;
// callers pass a bounded sample. Fixed formats are tried first, then the
// column name is used as a hint: "year", "month" and "week" must appear as
// whole words, "date", "time" and "day" anywhere in the name.
func CheckIfDate(sample any, colIdx int, colName string, rows [][]any) DateInfo {
	values := columnValues(rows, colIdx)
	s := valueString(sample)
	if s == "" {
		return DateInfo{}
	}
	if len(values) == 0 {
		values = []string{s}
	}
	if _, isText := sample.(string); isText {
		if info, ok := matchLayouts(s, values); ok {
			return info
		}
		if info, ok := matchISOWeek(s, values); ok {
			return info
		}
	}
	return matchByName(s, strings.ToLower(colName), values)
}

// UnixOrRaw converts v with conv, returning the raw value when conversion fails.
func UnixOrRaw(conv DateConverter, v any) any {
	if conv == nil {
		return v
	}
	ts, err := conv(v)
	if err != nil {
		return v
	}
	return ts
}

func columnValues(rows [][]any, colIdx int) []string {
	var out []string
	for _, r := range rows {
		if colIdx < 0 || colIdx >= len(r) || isBlank(r[colIdx]) {
			continue
		}
		out = append(out, valueString(r[colIdx]))
	}
	return out
}

// majority reports whether ok values make up more than half of total.
func majority(ok, total int) bool { return total > 0 && ok*2 > total }

func matchLayouts(s string, values []string) (DateInfo, bool) {
	best, bestCount := -1, 0
	for i, f := range dateFormats {
		if _, err := time.Parse(f.layout, s); err != nil {
			continue
		}
		n := 0
		for _, v := range values {
			if _, err := time.Parse(f.layout, v); err == nil {
				n++
			}
		}
		if n > bestCount {
			best, bestCount = i, n
		}
	}
	if best < 0 || !majority(bestCount, len(values)) {
		return DateInfo{}, false
	}
	f := dateFormats[best]
	return DateInfo{IsDate: true, DateType: f.kind, ParseFormat: f.name, DateToUnix: layoutConverter(f)}, true
}

func matchISOWeek(s string, values []string) (DateInfo, bool) {
	if _, err := parseISOWeek(s); err != nil {
		return DateInfo{}, false
	}
	n := 0
	for _, v := range values {
		if _, err := parseISOWeek(v); err == nil {
			n++
		}
	}
	if !majority(n, len(values)) {
		return DateInfo{}, false
	}
	conv := func(v any) (int64, error) {
		t, err := parseISOWeek(valueString(v))
		if err != nil {
			return 0, &ParseError{Value: v, Format: isoWeekFormat, Err: err}
		}
		return t.Unix(), nil
	}
	return DateInfo{IsDate: true, DateType: DateWeek, ParseFormat: isoWeekFormat, DateToUnix: conv}, true
}

// hasWord reports whether word appears in name as a whole token; tokens are
// split on anything that is not a letter or digit.
func hasWord(name, word string) bool {
	for _, tok := range strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if tok == word {
			return true
		}
	}
	return false
}

func matchByName(s, name string, values []string) DateInfo {
	switch {
	case hasWord(name, "year"):
		if allMatch(values, func(v string) bool { _, err := yearOf(v); return err == nil }) {
			return DateInfo{IsDate: true, DateType: DateYear, ParseFormat: "YYYY", DateToUnix: yearConverter}
		}
	case hasWord(name, "month"):
		if allMatch(values, func(v string) bool { _, err := monthNumber(v); return err == nil }) {
			return DateInfo{IsDate: true, DateType: DateMonth, ParseFormat: "M", DateToUnix: monthNumberConverter}
		}
		for _, layout := range []struct{ name, layout string }{{"MMM", "Jan"}, {"MMMM", "January"}} {
			l := layout.layout
			if allMatch(values, func(v string) bool { _, err := time.Parse(l, v); return err == nil }) {
				return DateInfo{IsDate: true, DateType: DateMonth, ParseFormat: layout.name, DateToUnix: monthNameConverter(layout.name, l)}
			}
		}
	case hasWord(name, "week"):
		if allMatch(values, func(v string) bool { _, err := weekNumber(v); return err == nil }) {
			return DateInfo{IsDate: true, DateType: DateWeek, ParseFormat: "W", DateToUnix: weekNumberConverter}
		}
	case strings.Contains(name, "date") || strings.Contains(name, "time") || strings.Contains(name, "day"):
		if IsNumber(s) {
			return DateInfo{}
		}
		n, withClock := 0, false
		for _, v := range values {
			t, err := dateparse.ParseStrict(v)
			if err != nil {
				continue
			}
			n++
			if h, m, sec := t.Clock(); h != 0 || m != 0 || sec != 0 {
				withClock = true
			}
		}
		if !majority(n, len(values)) {
			return DateInfo{}
		}
		kind := DateDay
		if withClock {
			kind = DateDateTime
		}
		return DateInfo{IsDate: true, DateType: kind, ParseFormat: "auto", DateToUnix: autoConverter}
	}
	return DateInfo{}
}

func allMatch(values []string, pred func(string) bool) bool {
	if len(values) == 0 {
		return false
	}
	for _, v := range values {
		if !pred(v) {
			return false
		}
	}
	return true
}

func layoutConverter(f dateFormat) DateConverter {
	return func(v any) (int64, error) {
		t, err := time.ParseInLocation(f.layout, valueString(v), time.UTC)
		if err != nil {
			return 0, &ParseError{Value: v, Format: f.name, Err: err}
		}
		return t.Unix(), nil
	}
}

func autoConverter(v any) (int64, error) {
	t, err := dateparse.ParseIn(valueString(v), time.UTC)
	if err != nil {
		return 0, &ParseError{Value: v, Format: "auto", Err: err}
	}
	return t.Unix(), nil
}

func yearConverter(v any) (int64, error) {
	y, err := yearOf(valueString(v))
	if err != nil {
		return 0, &ParseError{Value: v, Format: "YYYY", Err: err}
	}
	return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC).Unix(), nil
}

// Month-only and week-only values carry no year; they are anchored to 1970.
func monthNumberConverter(v any) (int64, error) {
	m, err := monthNumber(valueString(v))
	if err != nil {
		return 0, &ParseError{Value: v, Format: "M", Err: err}
	}
	return time.Date(1970, time.Month(m), 1, 0, 0, 0, 0, time.UTC).Unix(), nil
}

func monthNameConverter(name, layout string) DateConverter {
	return func(v any) (int64, error) {
		t, err := time.Parse(layout, valueString(v))
		if err != nil {
			return 0, &ParseError{Value: v, Format: name, Err: err}
		}
		return time.Date(1970, t.Month(), 1, 0, 0, 0, 0, time.UTC).Unix(), nil
	}
}

func weekNumberConverter(v any) (int64, error) {
	w, err := weekNumber(valueString(v))
	if err != nil {
		return 0, &ParseError{Value: v, Format: "W", Err: err}
	}
	return time.Date(1970, time.January, 1+(w-1)*7, 0, 0, 0, 0, time.UTC).Unix(), nil
}

func boundedInt(s string, lo, hi int) (int, error) {
	d, ok := parseNumericString(s)
	if !ok || !d.IsInteger() || strings.HasSuffix(strings.TrimSpace(s), "%") {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	n := int(d.IntPart())
	if n < lo || n > hi {
		return 0, fmt.Errorf("%w: %d not in [%d, %d]", errNotInRange, n, lo, hi)
	}
	return n, nil
}

func yearOf(s string) (int, error)      { return boundedInt(s, 1000, 9999) }
func monthNumber(s string) (int, error) { return boundedInt(s, 1, 12) }
func weekNumber(s string) (int, error)  { return boundedInt(s, 1, 53) }

// parseISOWeek returns the Monday starting ISO week "2023-W05".
func parseISOWeek(s string) (time.Time, error) {
	m := isoWeekRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}, fmt.Errorf("not an ISO week: %q", s)
	}
	year, _ := strconv.Atoi(m[1])
	week, _ := strconv.Atoi(m[2])
	if week < 1 || week > 53 {
		return time.Time{}, fmt.Errorf("%w: week %d", errNotInRange, week)
	}
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	monday := jan4.AddDate(0, 0, -offset+(week-1)*7)
	if y, _ := monday.ISOWeek(); y != year {
		return time.Time{}, fmt.Errorf("%w: week %d of %d", errNotInRange, week, year)
	}
	return monday, nil
}
