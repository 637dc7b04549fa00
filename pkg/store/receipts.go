package store

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"strukscan/models"
	"strukscan/pkg/scan"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxReasonLen = 255

// SaveScan stores up together with its scan outcome inside one transaction.
// A successful output replaces any receipt already linked to the upload; a
// failed one marks the upload with the reason.
func SaveScan(gdb *gorm.DB, up *models.Upload, out scan.Output) error {
	return gdb.Transaction(func(tx *gorm.DB) error {
		up.Failed = out.Failed()
		up.FailedReason = ""
		if up.Failed {
			up.FailedReason = truncate(out.Error, maxReasonLen)
		}
		if err := tx.Omit(clause.Associations).Save(up).Error; err != nil {
			return fmt.Errorf("save upload: %w", err)
		}
		if up.Failed {
			return nil
		}
		var old models.Receipt
		if err := tx.Where("upload_id = ?", up.ID).First(&old).Error; err == nil {
			if err := tx.Where("receipt_id = ?", old.ID).Delete(&models.ReceiptItem{}).Error; err != nil {
				return fmt.Errorf("delete old items: %w", err)
			}
			if err := tx.Delete(&old).Error; err != nil {
				return fmt.Errorf("delete old receipt: %w", err)
			}
		}
		rec := models.Receipt{
			UploadID:   up.ID,
			UserID:     up.UserID,
			OCRText:    out.OCRText,
			Confidence: out.Confidence,
			PSM:        out.PSM,
		}
		rec.ApplyResult(*out.Result)
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("create receipt: %w", err)
		}
		up.Receipt = &rec
		return nil
	})
}

// FindDuplicate returns the user's successful upload with the same content
// hash, or nil when there is none.
func FindDuplicate(gdb *gorm.DB, userID uint, sha string) (*models.Upload, error) {
	var up models.Upload
	err := gdb.Preload("Receipt.Items").
		Where("user_id = ? AND sha256 = ? AND failed = ?", userID, sha, false).
		Order("id").First(&up).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &up, nil
}

// ReceiptQuery filters ListReceipts. A zero From or To leaves that side open.
// Receipts without a printed date are placed by their creation day.
type ReceiptQuery struct {
	UserID uint
	All    bool
	From   time.Time
	To     time.Time
	Limit  int
}

const receiptDay = "COALESCE(receipts.date, CAST(receipts.created_at AS date))"

// ListReceipts returns receipts with their items, newest first.
func ListReceipts(gdb *gorm.DB, q ReceiptQuery) ([]models.Receipt, error) {
	tx := gdb.Model(&models.Receipt{}).Preload("Items")
	if !q.All {
		tx = tx.Where("receipts.user_id = ?", q.UserID)
	}
	if !q.From.IsZero() {
		tx = tx.Where(receiptDay+" >= ?", q.From)
	}
	if !q.To.IsZero() {
		tx = tx.Where(receiptDay+" < ?", q.To)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	var out []models.Receipt
	if err := tx.Order(receiptDay + " desc").Order("receipts.id desc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	return out, nil
}

// GetReceipt loads one receipt visible to user.
func GetReceipt(gdb *gorm.DB, id uint, user models.User) (models.Receipt, error) {
	var rec models.Receipt
	err := gdb.Preload("Items").First(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return rec, ErrNotFound
	}
	if err != nil {
		return rec, err
	}
	if !user.IsAdmin() && rec.UserID != user.ID {
		return models.Receipt{}, ErrForbidden
	}
	return rec, nil
}

// FailedUploads lists uploads whose scan failed, for one user or all when
// userID is 0.
func FailedUploads(gdb *gorm.DB, userID uint) ([]models.Upload, error) {
	tx := gdb.Where("failed = ?", true)
	if userID != 0 {
		tx = tx.Where("user_id = ?", userID)
	}
	var ups []models.Upload
	if err := tx.Order("id").Find(&ups).Error; err != nil {
		return nil, fmt.Errorf("list failed uploads: %w", err)
	}
	return ups, nil
}

// UploadByPath finds an upload by its stored path.
func UploadByPath(gdb *gorm.DB, storePath string) (*models.Upload, error) {
	var up models.Upload
	err := gdb.Where("store_path = ?", storePath).First(&up).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &up, nil
}

// MonthRange parses YYYY-MM into the half-open UTC range it covers.
func MonthRange(month string) (time.Time, time.Time, error) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month %q, expected YYYY-MM", month)
	}
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}
