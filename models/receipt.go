package models

import (
	"sort"
	"time"

	"strukscan/pkg/extract"
)

// Receipt holds the fields extracted from one successful upload.
type Receipt struct {
	ID           uint `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	UploadID     uint       `gorm:"uniqueIndex;not null"`
	UserID       uint       `gorm:"index;not null"`
	MerchantName *string    `gorm:"size:255"`
	Date         *time.Time `gorm:"type:date;index"`
	Total        *int64
	Subtotal     *int64
	Tax          *int64
	RawText      string  `gorm:"type:text"`
	OCRText      string  `gorm:"column:ocr_text;type:text"`
	Confidence   float64 `gorm:"default:0"`
	PSM          int     `gorm:"column:psm"`
	Items        []ReceiptItem `gorm:"constraint:OnDelete:CASCADE;"`
}

// ReceiptItem is one line item; Position keeps receipt order.
type ReceiptItem struct {
	ID        uint   `gorm:"primaryKey"`
	ReceiptID uint   `gorm:"index;not null"`
	Position  int    `gorm:"not null"`
	Name      string `gorm:"size:255;not null"`
	Price     int64
	Qty       int `gorm:"default:1"`
}

// ApplyResult copies an extraction result onto r, replacing any items.
func (r *Receipt) ApplyResult(res extract.Result) {
	r.MerchantName = res.MerchantName
	r.Date = nil
	if res.Date != nil {
		if d, err := time.Parse("2006-01-02", *res.Date); err == nil {
			r.Date = &d
		}
	}
	r.Total, r.Subtotal, r.Tax = res.Total, res.Subtotal, res.Tax
	r.RawText = res.RawText
	r.Items = make([]ReceiptItem, 0, len(res.Items))
	for i, it := range res.Items {
		r.Items = append(r.Items, ReceiptItem{Position: i, Name: it.Name, Price: it.Price, Qty: it.Qty})
	}
}

// Result rebuilds the extraction record from the stored columns.
func (r Receipt) Result() extract.Result {
	res := extract.Result{
		MerchantName: r.MerchantName,
		Total:        r.Total,
		Subtotal:     r.Subtotal,
		Tax:          r.Tax,
		Items:        make([]extract.LineItem, 0, len(r.Items)),
		RawText:      r.RawText,
	}
	if r.Date != nil {
		d := r.Date.Format("2006-01-02")
		res.Date = &d
	}
	items := append([]ReceiptItem(nil), r.Items...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Position < items[j].Position })
	for _, it := range items {
		res.Items = append(res.Items, extract.LineItem{Name: it.Name, Price: it.Price, Qty: it.Qty})
	}
	return res
}
