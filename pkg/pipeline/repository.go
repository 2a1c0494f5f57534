package pipeline

import (
	"errors"

	"gorm.io/gorm"

	"receiptsvc/models"
)

// Repository is the storage contract the pipeline needs: one read and the
// pair of writes that complete a successful run.
type Repository interface {
	// GetUploadedFile returns ErrNotFound when the id is unknown.
	GetUploadedFile(id uint) (*models.UploadedFile, error)
	// SaveExtraction inserts the receipt row and flips the upload's
	// is_processed flag; both writes must share one transaction.
	SaveExtraction(rec *models.ExtractedReceipt, uploadedFileID uint) error
}

// GormRepository backs the pipeline with the shared GORM handle.
type GormRepository struct {
	DB *gorm.DB
}

func (r *GormRepository) GetUploadedFile(id uint) (*models.UploadedFile, error) {
	var f models.UploadedFile
	if err := r.DB.First(&f, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *GormRepository) SaveExtraction(rec *models.ExtractedReceipt, uploadedFileID uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		return tx.Model(&models.UploadedFile{}).
			Where("id = ?", uploadedFileID).
			Update("is_processed", true).Error
	})
}
