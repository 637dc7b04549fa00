package models

import (
	"time"
)

// Upload is one stored receipt image. Failed uploads are kept with the
// reason so they can be reviewed and retried.
type Upload struct {
	ID           uint `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	UserID       uint   `gorm:"index;not null"`
	User         User   `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	FileName     string `gorm:"size:255;not null"`
	StorePath    string `gorm:"column:store_path;size:512"`
	ContentType  string `gorm:"size:128"`
	SHA256       string `gorm:"column:sha256;size:64;index"`
	Failed       bool   `gorm:"default:false;index"`
	FailedReason string `gorm:"size:255"`
	Receipt      *Receipt
}
