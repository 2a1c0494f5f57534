package main

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"receiptsvc/models"
	"receiptsvc/pkg/pipeline"
)

const maxUploadBytes = 30 * 1024 * 1024

func setupRoutes(r *gin.Engine) {
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Server is up and running")
	})
	api := r.Group("/api/v1")
	api.POST("/upload", uploadPdfHandler)
	api.GET("/receipts", listReceiptsHandler)
	api.GET("/receipts/:id", getReceiptHandler)
	api.POST("/process/:id", processReceiptHandler)
}

// uploadPdfHandler stores a multipart PDF under the upload dir with a
// timestamp prefix (the merchant extractor later derives its filename hint
// from that stored name) and registers an uploaded_files row.
func uploadPdfHandler(c *gin.Context) {
	file, err := c.FormFile("pdf")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No file uploaded"})
		return
	}
	if file.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "file too large (max 30MB)"})
		return
	}
	ct := file.Header.Get("Content-Type")
	if ct != "application/pdf" && !strings.EqualFold(filepath.Ext(file.Filename), ".pdf") {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Only PDF files are allowed"})
		return
	}

	storedName := strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + filepath.Base(file.Filename)
	dst := filepath.Join(uploadBaseDir(), storedName)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "File upload failed"})
		return
	}
	absPath, err := filepath.Abs(dst)
	if err != nil {
		absPath = dst
	}

	up := models.UploadedFile{FileName: file.Filename, FilePath: absPath, IsValid: true}
	if err := db.Create(&up).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Something went wrong during PDF upload"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "PDF uploaded and metadata stored successfully",
		"file":    gin.H{"id": up.ID, "name": up.FileName, "path": up.FilePath},
	})
}

// receiptRow is one row of the uploads/extractions LEFT JOIN. Extracted
// columns are pointers because a row may exist with no extraction yet.
type receiptRow struct {
	UploadedID         uint       `json:"uploaded_id"`
	FileName           string     `json:"file_name"`
	FilePath           string     `json:"file_path"`
	IsValid            bool       `json:"is_valid"`
	IsProcessed        bool       `json:"is_processed"`
	UploadedCreatedAt  time.Time  `json:"uploaded_created_at"`
	ExtractedID        *uint      `json:"extracted_id"`
	PurchasedAt        *string    `json:"purchased_at"`
	MerchantName       *string    `json:"merchant_name"`
	TotalAmount        *float64   `json:"total_amount"`
	ExtractedCreatedAt *time.Time `json:"extracted_created_at"`
}

const receiptJoinSelect = `uf.id AS uploaded_id, uf.file_name, uf.file_path, uf.is_valid, uf.is_processed,
	uf.created_at AS uploaded_created_at, er.id AS extracted_id, er.purchased_at, er.merchant_name,
	er.total_amount, er.created_at AS extracted_created_at`

func listReceiptsHandler(c *gin.Context) {
	var rows []receiptRow
	err := db.Table("uploaded_files uf").
		Select(receiptJoinSelect).
		Joins("LEFT JOIN extracted_receipts er ON uf.file_path = er.file_path").
		Order("uf.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch receipts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": rows})
}

func getReceiptHandler(c *gin.Context) {
	var rows []receiptRow
	err := db.Table("uploaded_files uf").
		Select(receiptJoinSelect).
		Joins("LEFT JOIN extracted_receipts er ON uf.file_path = er.file_path").
		Where("uf.id = ?", c.Param("id")).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch receipt"})
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Receipt not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": rows[0]})
}

// processReceiptHandler runs the extraction pipeline for one uploaded file
// and maps each failure kind to its own status so callers can tell retryable
// conversion problems from permanent ones.
func processReceiptHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid id"})
		return
	}

	out, err := pipe.Process(uint(id))
	switch {
	case errors.Is(err, pipeline.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Receipt not found"})
		return
	case errors.Is(err, pipeline.ErrSourceMissing):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "PDF file not found on server"})
		return
	case errors.Is(err, pipeline.ErrConversionFailed):
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to convert PDF to images"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error", "error": err.Error()})
		return
	}

	if !out.Persisted {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"message": "Failed to extract valid receipt data",
			"data": gin.H{
				"companyName":   out.Result.MerchantName,
				"date":          out.Result.Date,
				"amount":        out.Result.Amount,
				"totalAmount":   out.Result.TotalAmount,
				"extractedText": out.TextSample,
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Receipt processed successfully",
		"data":    out.Result,
	})
}
