package extract

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	commaDecimalRE  = regexp.MustCompile(`,\d{1,2}$`)
	periodDecimalRE = regexp.MustCompile(`\.\d{1,2}$`)
)

// NormalizePrice turns a raw OCR price fragment ("Rp 18.000", "1.234,50",
// "175,000") into whole currency units. The fractional part is truncated.
//
// Separator rules: a comma followed by one or two trailing digits is the
// decimal mark and any periods are thousands separators; any other comma is
// a thousands separator. With periods only, a trailing ".d" or ".dd" is a
// decimal mark, otherwise periods group thousands.
func NormalizePrice(s string) (int64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' {
			return r
		}
		return -1
	}, s)
	if cleaned == "" {
		return 0, false
	}
	switch {
	case strings.Contains(cleaned, ","):
		if commaDecimalRE.MatchString(cleaned) {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case strings.Contains(cleaned, "."):
		if !periodDecimalRE.MatchString(cleaned) {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
		}
	}
	if cleaned == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	f = math.Trunc(f)
	if f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// NormalizePriceValue accepts an arbitrary value (nil, an integer, a float or
// a string) and normalizes it like NormalizePrice. nil is absent.
func NormalizePriceValue(v any) (int64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return NormalizePrice(strconv.FormatUint(uint64(x), 10))
	case uint64:
		return NormalizePrice(strconv.FormatUint(x, 10))
	case float32:
		return NormalizePriceValue(float64(x))
	case float64:
		if math.IsInf(x, 0) || math.IsNaN(x) {
			return 0, false
		}
		return int64(math.Trunc(x)), true
	case string:
		return NormalizePrice(x)
	case fmt.Stringer:
		return NormalizePrice(x.String())
	default:
		return NormalizePrice(fmt.Sprint(x))
	}
}
