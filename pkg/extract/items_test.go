package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItemsStopAtTotalsLine(t *testing.T) {
	items := NewExtractor().Items("Ice Java Tea 16,000\nSubtotal 16,000")
	assert.Equal(t, []LineItem{{Name: "Ice Java Tea", Price: 16000, Qty: 1}}, items)
}

func TestItemsHeaderSection(t *testing.T) {
	text := "TOKO ABC\nQty Item Harga\n2 Ham Cheese 16,000\n1 Woman 0 74,000\nTotal 106.000"
	items := NewExtractor().Items(text)
	assert.Equal(t, []LineItem{
		{Name: "Ham Cheese", Price: 16000, Qty: 2},
		{Name: "Woman", Price: 74000, Qty: 1},
	}, items)
}

func TestItemShapes(t *testing.T) {
	e := NewExtractor()
	cases := []struct {
		line string
		want LineItem
	}{
		{"Mix Coklat - Rp18.000", LineItem{"Mix Coklat", 18000, 1}},
		{"Tiramisu Kear 1x Rp18.000", LineItem{"Tiramisu Kear", 18000, 1}},
		{"2x Teh Manis 10.000", LineItem{"Teh Manis", 10000, 2}},
		{"1 Woman 0 74,000", LineItem{"Woman", 74000, 1}},
		{"Kopi 2 15.000", LineItem{"Kopi", 15000, 2}},
		{"Ice Java Tea 16,000", LineItem{"Ice Java Tea", 16000, 1}},
		// An x inside a word is not a quantity separator.
		{"Box Kardus 12.000", LineItem{"Box Kardus", 12000, 1}},
	}
	for _, c := range cases {
		got, ok := e.parseItemLine(c.line)
		if assert.True(t, ok, "line %q", c.line) {
			assert.Equal(t, c.want, got, "line %q", c.line)
		}
	}
}

func TestItemShapeRejections(t *testing.T) {
	e := NewExtractor()
	for _, line := range []string{
		"1x Rp18.000",
		"Cash 50.000",
		"INDOMARET",
		"15/08/2024 10:30",
	} {
		_, ok := e.parseItemLine(line)
		assert.False(t, ok, "line %q", line)
	}
}

func TestItemsDropSmallPricesUnlessAllowed(t *testing.T) {
	items := NewExtractor().Items("Kerupuk 300\nPoint Bonus 200\nTotal 500")
	assert.Equal(t, []LineItem{{Name: "Point Bonus", Price: 200, Qty: 1}}, items)
}

func TestItemsDeduplicateCaseInsensitive(t *testing.T) {
	items := NewExtractor().Items("Kopi Susu 15.000\nKOPI SUSU 15.000\nRoti 8.000\nTotal 38.000")
	assert.Equal(t, []LineItem{
		{Name: "Kopi Susu", Price: 15000, Qty: 1},
		{Name: "Roti", Price: 8000, Qty: 1},
	}, items)
}

func TestItemsSkipNonItemLines(t *testing.T) {
	text := "Menu\nNo. Meja 12\nPax 2\n16.000\nNasi Goreng 25.000\nTotal 25.000"
	items := NewExtractor().Items(text)
	assert.Equal(t, []LineItem{{Name: "Nasi Goreng", Price: 25000, Qty: 1}}, items)
}

func TestItemsEmpty(t *testing.T) {
	assert.Empty(t, NewExtractor().Items(""))
	assert.Empty(t, NewExtractor().Items("Terima kasih"))
}
