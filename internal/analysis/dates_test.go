package analysis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func col(vals ...any) [][]any {
	out := make([][]any, len(vals))
	for i, v := range vals {
		out[i] = []any{v}
	}
	return out
}

func TestCheckIfDateISODay(t *testing.T) {
	rows := col("2023-01-15", "2023-02-01", "2023-03-20")
	info := CheckIfDate("2023-01-15", 0, "date", rows)
	require.True(t, info.IsDate)
	assert.Equal(t, DateDay, info.DateType)
	assert.Equal(t, "YYYY-MM-DD", info.ParseFormat)
	require.NotNil(t, info.DateToUnix)

	ts, err := info.DateToUnix("2023-01-15")
	require.NoError(t, err)
	assert.Equal(t, int64(1673740800), ts)
}

func TestCheckIfDateFormats(t *testing.T) {
	cases := []struct {
		name     string
		values   []any
		wantType DateType
		wantFmt  string
	}{
		{"rfc3339", []any{"2023-01-15T10:30:00Z", "2023-01-16T11:00:00Z"}, DateDateTime, "YYYY-MM-DDTHH:mm:ssZ"},
		{"local datetime", []any{"2023-01-15 10:30:00", "2023-01-16 08:00:00"}, DateDateTime, "YYYY-MM-DD HH:mm:ss"},
		{"minutes", []any{"2023-01-15 10:30", "2023-01-16 08:00"}, DateDateTime, "YYYY-MM-DD HH:mm"},
		{"slashed iso", []any{"2023/01/15", "2023/02/01"}, DateDay, "YYYY/MM/DD"},
		{"us", []any{"01/13/2023", "02/20/2023", "03/05/2023"}, DateDay, "MM/DD/YYYY"},
		{"european", []any{"13/01/2023", "20/02/2023"}, DateDay, "DD/MM/YYYY"},
		{"european by majority", []any{"03/04/2023", "25/12/2023", "15/06/2023"}, DateDay, "DD/MM/YYYY"},
		{"dashed european", []any{"15-01-2023", "16-02-2023"}, DateDay, "DD-MM-YYYY"},
		{"month name", []any{"Jan 15, 2023", "Feb 1, 2023"}, DateDay, "MMM D, YYYY"},
		{"day month name", []any{"15 Jan 2023", "1 Feb 2023"}, DateDay, "D MMM YYYY"},
		{"year month", []any{"2023-01", "2023-02"}, DateMonth, "YYYY-MM"},
		{"short month year", []any{"Jan 2023", "Feb 2023"}, DateMonth, "MMM YYYY"},
		{"long month year", []any{"January 2023", "March 2023"}, DateMonth, "MMMM YYYY"},
		{"iso week", []any{"2023-W05", "2023-W06"}, DateWeek, "GGGG-[W]WW"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			info := CheckIfDate(c.values[0], 0, "observed", col(c.values...))
			require.True(t, info.IsDate)
			assert.Equal(t, c.wantType, info.DateType)
			assert.Equal(t, c.wantFmt, info.ParseFormat)
			for _, v := range c.values {
				_, err := info.DateToUnix(v)
				assert.NoError(t, err, "convert %v", v)
			}
		})
	}
}

func TestCheckIfDateISOWeekStartsMonday(t *testing.T) {
	info := CheckIfDate("2023-W05", 0, "period", col("2023-W05"))
	require.True(t, info.IsDate)
	ts, err := info.DateToUnix("2023-W05")
	require.NoError(t, err)
	// Monday 2023-01-30
	assert.Equal(t, int64(1675036800), ts)
}

func TestCheckIfDateByColumnName(t *testing.T) {
	t.Run("year", func(t *testing.T) {
		info := CheckIfDate("2019", 0, "Fiscal Year", col("2019", "2020"))
		require.True(t, info.IsDate)
		assert.Equal(t, DateYear, info.DateType)
		assert.Equal(t, "YYYY", info.ParseFormat)
		ts, err := info.DateToUnix("2020")
		require.NoError(t, err)
		assert.Equal(t, int64(1577836800), ts)
	})
	t.Run("year out of range", func(t *testing.T) {
		info := CheckIfDate("12", 0, "year", col("12", "13"))
		assert.False(t, info.IsDate)
	})
	t.Run("year inside a longer word", func(t *testing.T) {
		info := CheckIfDate("1500", 0, "yearly_total", col("1500", "2300", "9999"))
		assert.False(t, info.IsDate)
		info = CheckIfDate("7", 0, "weekday", col("1", "7"))
		assert.False(t, info.IsDate)
	})
	t.Run("month number", func(t *testing.T) {
		info := CheckIfDate("3", 0, "MONTH", col("3", "4", "12"))
		require.True(t, info.IsDate)
		assert.Equal(t, DateMonth, info.DateType)
		assert.Equal(t, "M", info.ParseFormat)
		ts, err := info.DateToUnix("3")
		require.NoError(t, err)
		assert.Equal(t, int64(59*86400), ts)
	})
	t.Run("month name", func(t *testing.T) {
		info := CheckIfDate("March", 0, "month", col("March", "April"))
		require.True(t, info.IsDate)
		assert.Equal(t, "MMMM", info.ParseFormat)
	})
	t.Run("week number", func(t *testing.T) {
		info := CheckIfDate("2", 0, "week_no", col("1", "2", "53"))
		require.True(t, info.IsDate)
		assert.Equal(t, DateWeek, info.DateType)
		ts, err := info.DateToUnix("2")
		require.NoError(t, err)
		assert.Equal(t, int64(7*86400), ts)
	})
	t.Run("free-form date", func(t *testing.T) {
		info := CheckIfDate("January 15, 2023", 0, "created_date", col("January 15, 2023", "February 2, 2023"))
		require.True(t, info.IsDate)
		assert.Equal(t, DateDay, info.DateType)
		assert.Equal(t, "auto", info.ParseFormat)
		ts, err := info.DateToUnix("January 15, 2023")
		require.NoError(t, err)
		assert.Equal(t, int64(1673740800), ts)
	})
	t.Run("numeric id named date", func(t *testing.T) {
		info := CheckIfDate("17", 0, "date_id", col("17", "18"))
		assert.False(t, info.IsDate)
	})
}

func TestCheckIfDateRejects(t *testing.T) {
	assert.False(t, CheckIfDate("apple", 0, "fruit", col("apple", "pear")).IsDate)
	assert.False(t, CheckIfDate("42", 0, "score", col("42", "17")).IsDate)
	assert.False(t, CheckIfDate("", 0, "date", nil).IsDate)
	// one parsable value out of three is not a majority
	assert.False(t, CheckIfDate("2023-01-15", 0, "when", col("2023-01-15", "n/a", "tbd")).IsDate)
}

func TestUnixOrRawFallsBack(t *testing.T) {
	info := CheckIfDate("2023-01-15", 0, "date", col("2023-01-15", "2023-01-16"))
	require.True(t, info.IsDate)

	assert.Equal(t, int64(1673740800), UnixOrRaw(info.DateToUnix, "2023-01-15"))
	assert.Equal(t, "garbage", UnixOrRaw(info.DateToUnix, "garbage"))
	assert.Equal(t, "x", UnixOrRaw(nil, "x"))

	_, err := info.DateToUnix("garbage")
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "YYYY-MM-DD", pe.Format)
	assert.Equal(t, "garbage", pe.Value)
}
