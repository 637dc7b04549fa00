package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerchantBrandPattern(t *testing.T) {
	e := NewExtractor()
	got, ok := e.Merchant("Jl. Raya Cibadak 12\nINDOMARET\n15/08/2024")
	require.True(t, ok)
	assert.Equal(t, "Indomaret", got)
}

func TestMerchantHeaderScoring(t *testing.T) {
	e := NewExtractor()
	text := "Toko Sumber Rejeki\nJl. Merdeka 10\n15/08/2024\nKopi 15.000"
	got, ok := e.Merchant(text)
	require.True(t, ok)
	assert.Equal(t, "Toko Sumber Rejeki", got)
}

func TestMerchantPrefersStoreOverAddress(t *testing.T) {
	e := NewExtractor()
	// The street line is longer but is halved as an address.
	text := "Warung Makan Bu Sri\nJalan Pahlawan Revolusi Blok C\nKopi 15.000"
	got, ok := e.Merchant(text)
	require.True(t, ok)
	assert.Equal(t, "Warung Makan Bu Sri", got)
}

func TestMerchantAbsent(t *testing.T) {
	e := NewExtractor()
	for _, text := range []string{"", "STRUK\nKasir: 01\n15/08/2024", "123.456,00"} {
		_, ok := e.Merchant(text)
		assert.False(t, ok, "merchant in %q", text)
	}
}
