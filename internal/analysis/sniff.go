package analysis

import (
	"encoding/json"
	"math"
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// fitsInt64 reports whether d is a whole number that int64 holds exactly.
func fitsInt64(d decimal.Decimal) bool {
	return d.IsInteger() && d.Equal(decimal.NewFromInt(d.IntPart()))
}

var groupedThousands = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d+)?$`)

// IsNumber reports whether v looks numeric: Go numbers, json.Number, and
// strings holding an integer, decimal, exponent form, comma-grouped
// thousands or a percent-suffixed value. Empty strings and a lone "%" are not numbers.
func IsNumber(v any) bool {
	_, ok := ParseNumber(v)
	return ok
}

// ParseNumber parses v into an exact decimal.
func ParseNumber(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case nil, bool:
		return decimal.Zero, false
	case decimal.Decimal:
		return x, true
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int8:
		return decimal.NewFromInt(int64(x)), true
	case int16:
		return decimal.NewFromInt(int64(x)), true
	case int32:
		return decimal.NewFromInt(int64(x)), true
	case int64:
		return decimal.NewFromInt(x), true
	case uint8:
		return decimal.NewFromInt(int64(x)), true
	case uint16:
		return decimal.NewFromInt(int64(x)), true
	case uint32:
		return decimal.NewFromInt(int64(x)), true
	case uint:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(x)), 0), true
	case uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(x), 0), true
	case float32:
		return parseFloat(float64(x))
	case float64:
		return parseFloat(x)
	case json.Number:
		return parseNumericString(string(x))
	case string:
		return parseNumericString(x)
	}
	return decimal.Zero, false
}

func parseFloat(f float64) (decimal.Decimal, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}

func parseNumericString(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	if s == "" {
		return decimal.Zero, false
	}
	if groupedThousands.MatchString(s) {
		s = strings.ReplaceAll(s, ",", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
