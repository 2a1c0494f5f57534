package main

import (
	"log"
	"os"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"receiptsvc/models"
)

var db *gorm.DB

func initDB() {
	var err error
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect postgres database:", err)
	}
	// Control schema migrations with env DB_AUTO_MIGRATE (default true).
	shouldMigrate := true
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		lv := strings.ToLower(v)
		if lv == "false" || lv == "0" || lv == "no" {
			shouldMigrate = false
		}
	}
	if shouldMigrate {
		// Migrate models individually so a failure on one doesn't block others
		if err := db.AutoMigrate(&models.UploadedFile{}); err != nil {
			log.Printf("migration warning (uploaded_files): %v", err)
		}
		if err := db.AutoMigrate(&models.ExtractedReceipt{}); err != nil {
			log.Printf("migration warning (extracted_receipts): %v", err)
		}
	}
	ensureDirs()
}

// ensureDirs creates the upload and temp page-image directories.
func ensureDirs() {
	for _, dir := range []string{uploadBaseDir(), tempDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Printf("failed to create dir %s: %v", dir, err)
		}
	}
}

// uploadBaseDir returns the directory for stored PDFs (configurable via UPLOAD_BASE env)
func uploadBaseDir() string {
	if v := os.Getenv("UPLOAD_BASE"); v != "" {
		return v
	}
	return "uploads"
}

// tempDir returns the shared output area for rendered page images
// (configurable via TEMP_DIR env). It is reused across runs without per-run
// isolation.
func tempDir() string {
	if v := os.Getenv("TEMP_DIR"); v != "" {
		return v
	}
	return "temp"
}

// ocrLang returns the single tesseract language code used for every page.
func ocrLang() string {
	if v := os.Getenv("OCR_LANG"); v != "" {
		return v
	}
	return "eng"
}
