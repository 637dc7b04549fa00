package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"strukscan/models"
)

func ptr[T any](v T) *T { return &v }

func sampleReceipts() []models.Receipt {
	d := time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC)
	return []models.Receipt{
		{
			ID: 1, MerchantName: ptr("Indomaret"), Date: &d, Total: ptr(int64(21000)), Tax: ptr(int64(2000)),
			Items: []models.ReceiptItem{
				{Position: 1, Name: "Roti", Price: 8000, Qty: 2},
				{Position: 0, Name: "Aqua Botol", Price: 5000, Qty: 1},
			},
		},
		{ID: 2, MerchantName: ptr("Indomaret"), Total: ptr(int64(4000))},
		{ID: 3, Total: ptr(int64(30000))},
		{ID: 4, MerchantName: ptr("Alfamart")},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize("2024-08", sampleReceipts())
	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 1, s.NoTotal)
	assert.Equal(t, int64(55000), s.Total)
	assert.Equal(t, int64(2000), s.Tax)
	assert.Equal(t, []MerchantTotal{
		{Name: "(unknown)", Count: 1, Total: 30000},
		{Name: "Indomaret", Count: 2, Total: 25000},
		{Name: "Alfamart", Count: 1, Total: 0},
	}, s.Merchants)
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, "2024-08", sampleReceipts()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{receiptSheet, itemSheet, summarySheet}, f.GetSheetList())

	rows, err := f.GetRows(receiptSheet)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "Merchant", rows[0][2])
	assert.Equal(t, []string{"1", "2024-08-15", "Indomaret", "", "2000", "21000", "2", "0"}, rows[1])

	items, err := f.GetRows(itemSheet)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Aqua Botol", items[1][2], "items follow stored position")

	total, err := f.GetCellValue(summarySheet, "B4")
	require.NoError(t, err)
	assert.Equal(t, "55000", total)
}

func TestWriteWorkbookEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, "2024-08", nil))
	assert.NotZero(t, buf.Len())
}
