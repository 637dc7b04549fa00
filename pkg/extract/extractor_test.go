package extract

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReceipt = `INDOMARET
Jl. Sudirman No. 5
15/08/2024 10:30
Aqua Botol 5.000
TOTAL 5.000`

func TestExtractReceipt(t *testing.T) {
	res := NewExtractor(WithClock(fixedClock)).Extract(sampleReceipt)

	require.NotNil(t, res.MerchantName)
	assert.Equal(t, "Indomaret", *res.MerchantName)
	require.NotNil(t, res.Date)
	assert.Equal(t, "2024-08-15", *res.Date)
	require.NotNil(t, res.Total)
	assert.EqualValues(t, 5000, *res.Total)
	assert.Nil(t, res.Tax)
	assert.Equal(t, []LineItem{{Name: "Aqua Botol", Price: 5000, Qty: 1}}, res.Items)
	assert.Equal(t, sampleReceipt, res.RawText)
}

func TestExtractEmpty(t *testing.T) {
	res := NewExtractor().Extract("")
	assert.Nil(t, res.MerchantName)
	assert.Nil(t, res.Date)
	assert.Nil(t, res.Total)
	assert.Nil(t, res.Subtotal)
	assert.Nil(t, res.Tax)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
	assert.Equal(t, "", res.RawText)
}

func TestResultJSONKeys(t *testing.T) {
	b, err := json.Marshal(NewExtractor().Extract(""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"merchant_name":null,"date":null,"total":null,"subtotal":null,"tax":null,"items":[],"raw_text":""}`, string(b))
}

func TestWithVocabulary(t *testing.T) {
	v := *DefaultVocabulary()
	v.BrandPatterns = nil
	v.MinItemPrice = 100
	e := NewExtractor(WithVocabulary(&v))

	items := e.Items("Kerupuk 300\nTotal 300")
	assert.Equal(t, []LineItem{{Name: "Kerupuk", Price: 300, Qty: 1}}, items)

	// The default tables are untouched.
	assert.NotEmpty(t, DefaultVocabulary().BrandPatterns)
	assert.Empty(t, NewExtractor().Items("Kerupuk 300\nTotal 300"))
}

func TestExtractConcurrent(t *testing.T) {
	e := NewExtractor(WithClock(fixedClock))
	want := e.Extract(sampleReceipt)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, e.Extract(sampleReceipt))
		}()
	}
	wg.Wait()
}
