package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePrice(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"Rp 18.000", 18000, true},
		{"1.234,50", 1234, true},
		{"175,000", 175000, true},
		{"8.99", 8, true},
		{"1.234.567", 1234567, true},
		{"12,5", 12, true},
		{"150000", 150000, true},
		{"IDR 25.500,00", 25500, true},
		{"abc", 0, false},
		{"", 0, false},
		{".", 0, false},
	}
	for _, c := range cases {
		got, ok := NormalizePrice(c.in)
		assert.Equal(t, c.ok, ok, "ok for %q", c.in)
		assert.Equal(t, c.want, got, "value for %q", c.in)
	}
}

func TestNormalizePriceIdempotentOnIntegers(t *testing.T) {
	for _, n := range []string{"0", "7", "500", "16000", "2500000"} {
		first, ok := NormalizePrice(n)
		assert.True(t, ok)
		second, ok := NormalizePrice(formatInt(first))
		assert.True(t, ok)
		assert.Equal(t, first, second)
	}
}

func TestNormalizePriceValue(t *testing.T) {
	_, ok := NormalizePriceValue(nil)
	assert.False(t, ok)

	v, ok := NormalizePriceValue(42)
	assert.True(t, ok)
	assert.EqualValues(t, 42, v)

	v, ok = NormalizePriceValue(12.9)
	assert.True(t, ok)
	assert.EqualValues(t, 12, v)

	v, ok = NormalizePriceValue("16,000")
	assert.True(t, ok)
	assert.EqualValues(t, 16000, v)
}
