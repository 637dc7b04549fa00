// Package report summarizes a month of stored receipts and exports them as
// an XLSX workbook.
package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"strukscan/models"
	"strukscan/pkg/store"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// MerchantTotal is one row of the per-merchant breakdown.
type MerchantTotal struct {
	Name  string
	Count int
	Total int64
}

// Summary aggregates receipts. Receipts without a detected total count but
// add nothing to Total.
type Summary struct {
	Month     string
	Count     int
	NoTotal   int
	Total     int64
	Tax       int64
	Merchants []MerchantTotal
}

// Summarize builds the month summary. Merchants are ordered by total, then
// name.
func Summarize(month string, receipts []models.Receipt) Summary {
	s := Summary{Month: month, Count: len(receipts)}
	byName := map[string]*MerchantTotal{}
	for _, r := range receipts {
		name := "(unknown)"
		if r.MerchantName != nil {
			name = *r.MerchantName
		}
		m, ok := byName[name]
		if !ok {
			m = &MerchantTotal{Name: name}
			byName[name] = m
		}
		m.Count++
		if r.Total == nil {
			s.NoTotal++
		} else {
			s.Total += *r.Total
			m.Total += *r.Total
		}
		if r.Tax != nil {
			s.Tax += *r.Tax
		}
	}
	for _, m := range byName {
		s.Merchants = append(s.Merchants, *m)
	}
	sort.Slice(s.Merchants, func(i, j int) bool {
		if s.Merchants[i].Total != s.Merchants[j].Total {
			return s.Merchants[i].Total > s.Merchants[j].Total
		}
		return s.Merchants[i].Name < s.Merchants[j].Name
	})
	return s
}

var (
	receiptHeaders = []any{"ID", "Date", "Merchant", "Subtotal", "Tax", "Total", "Items", "Confidence"}
	itemHeaders    = []any{"Receipt ID", "Position", "Name", "Qty", "Price"}
)

const (
	receiptSheet = "Receipts"
	itemSheet    = "Items"
	summarySheet = "Summary"
)

// WriteWorkbook writes receipts, their items and the month summary as three
// sheets.
func WriteWorkbook(w io.Writer, month string, receipts []models.Receipt) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", receiptSheet); err != nil {
		return err
	}
	for _, name := range []string{itemSheet, summarySheet} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := writeRow(f, receiptSheet, 1, receiptHeaders); err != nil {
		return err
	}
	if err := writeRow(f, itemSheet, 1, itemHeaders); err != nil {
		return err
	}
	itemRow := 2
	for i, r := range receipts {
		res := r.Result()
		row := []any{r.ID, opt(res.Date), opt(res.MerchantName), optInt(res.Subtotal), optInt(res.Tax), optInt(res.Total), len(res.Items), r.Confidence}
		if err := writeRow(f, receiptSheet, i+2, row); err != nil {
			return err
		}
		for pos, it := range res.Items {
			if err := writeRow(f, itemSheet, itemRow, []any{r.ID, pos + 1, it.Name, it.Qty, it.Price}); err != nil {
				return err
			}
			itemRow++
		}
	}

	s := Summarize(month, receipts)
	summary := [][]any{
		{"Month", s.Month},
		{"Receipts", s.Count},
		{"Without total", s.NoTotal},
		{"Total", s.Total},
		{"Tax", s.Tax},
		{},
		{"Merchant", "Receipts", "Total"},
	}
	for _, m := range s.Merchants {
		summary = append(summary, []any{m.Name, m.Count, m.Total})
	}
	for i, row := range summary {
		if err := writeRow(f, summarySheet, i+1, row); err != nil {
			return err
		}
	}

	_ = f.SetCellStyle(receiptSheet, "A1", "H1", bold)
	_ = f.SetCellStyle(itemSheet, "A1", "E1", bold)
	_ = f.SetCellStyle(summarySheet, "A7", "C7", bold)
	_ = f.SetColWidth(receiptSheet, "B", "B", 12) // date
	_ = f.SetColWidth(receiptSheet, "C", "C", 32) // merchant
	_ = f.SetColWidth(itemSheet, "C", "C", 40)
	_ = f.SetColWidth(summarySheet, "A", "A", 32)
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	if len(values) == 0 {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func opt(s *string) any {
	if s == nil {
		return ""
	}
	return *s
}

func optInt(v *int64) any {
	if v == nil {
		return ""
	}
	return *v
}

// RunReport prints the month summary for username and optionally lists the
// receipts and writes them to xlsxPath.
func RunReport(gdb *gorm.DB, out io.Writer, username, month string, list bool, xlsxPath string) error {
	user, err := store.UserByName(gdb, username)
	if err != nil {
		return fmt.Errorf("user %s: %w", username, err)
	}
	from, to, err := store.MonthRange(month)
	if err != nil {
		return err
	}
	receipts, err := store.ListReceipts(gdb, store.ReceiptQuery{UserID: user.ID, All: user.IsAdmin(), From: from, To: to})
	if err != nil {
		return err
	}

	s := Summarize(month, receipts)
	fmt.Fprintf(out, "Report for user=%s month=%s (UTC):\n", user.Username, month)
	fmt.Fprintf(out, "  receipts=%d without_total=%d total=%d tax=%d\n", s.Count, s.NoTotal, s.Total, s.Tax)
	for _, m := range s.Merchants {
		fmt.Fprintf(out, "  %-32s %4d %12d\n", m.Name, m.Count, m.Total)
	}
	if list {
		for _, r := range receipts {
			res := r.Result()
			fmt.Fprintf(out, "%d|%v|%v|%v|%d items|%s\n", r.ID, opt(res.Date), opt(res.MerchantName), optInt(res.Total), len(res.Items), r.CreatedAt.Format(time.RFC3339))
		}
	}
	if xlsxPath == "" {
		return nil
	}
	fh, err := os.Create(xlsxPath)
	if err != nil {
		return err
	}
	if err := WriteWorkbook(fh, month, receipts); err != nil {
		_ = fh.Close()
		return err
	}
	return fh.Close()
}
