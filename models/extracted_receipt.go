package models

import "time"

// ExtractedReceipt holds one pipeline run's result. FilePath is a weak
// reference to uploaded_files.file_path: no FK and no uniqueness, so
// re-processing the same upload appends another row.
type ExtractedReceipt struct {
	ID           uint `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	PurchasedAt  *string `gorm:"size:32"` // normalized DD-MM-YYYY[ HH:MM], nil when no date found
	MerchantName string  `gorm:"size:255"`
	TotalAmount  float64 `gorm:"not null;default:0"`
	FilePath     string  `gorm:"size:512;not null;index"`
}
