package analysis

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNumber(t *testing.T) {
	cases := []struct {
		in   any
		want bool
	}{
		{"12.5%", true},
		{"42", true},
		{"-3.75", true},
		{"1e3", true},
		{"1,234.5", true},
		{" 7 ", true},
		{42, true},
		{int64(-9), true},
		{uint8(3), true},
		{2.5, true},
		{json.Number("17"), true},
		{"abc", false},
		{"", false},
		{"   ", false},
		{"%", false},
		{"12,34", false},
		{"1.2.3", false},
		{nil, false},
		{true, false},
		{math.NaN(), false},
		{math.Inf(1), false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, IsNumber(c.in), "IsNumber(%#v)", c.in)
	}
}

func TestParseNumber(t *testing.T) {
	d, ok := ParseNumber("1,234.5")
	require.True(t, ok)
	assert.Equal(t, "1234.5", d.String())

	d, ok = ParseNumber("12.5%")
	require.True(t, ok)
	assert.Equal(t, "12.5", d.String())

	d, ok = ParseNumber("10.0")
	require.True(t, ok)
	assert.True(t, d.IsInteger())

	_, ok = ParseNumber("twelve")
	assert.False(t, ok)
}
