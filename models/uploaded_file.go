package models

import "time"

// UploadedFile is a receipt PDF registered through the upload endpoint or the
// ingest tool. Rows are never deleted; processing only flips IsProcessed.
type UploadedFile struct {
	ID            uint `gorm:"primaryKey"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	FileName      string `gorm:"size:255;not null"` // original client file name
	FilePath      string `gorm:"size:512;not null"` // absolute stored path, join key to extracted_receipts
	IsValid       bool   `gorm:"default:true"`
	InvalidReason string `gorm:"size:255"`
	IsProcessed   bool   `gorm:"default:false;index"`
}
