// Package pipeline orchestrates one receipt run: rasterize the uploaded PDF,
// OCR the pages in order, run the field extractors and persist the result
// when the acceptance policy allows it.
package pipeline

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"receiptsvc/models"
	"receiptsvc/pkg/extract"
	"receiptsvc/pkg/rasterize"
)

// textSampleLimit bounds the raw-text sample attached to rejected runs.
const textSampleLimit = 500

// Pipeline wires the collaborators for processing runs. Runs are sequential;
// there is no per-run isolation of TempDir, so the same underlying file must
// not be processed reentrantly without external serialization.
type Pipeline struct {
	Repo    Repository
	Render  rasterize.Renderer
	OCR     extract.Engine
	TempDir string
	Lang    string
}

func New(repo Repository, render rasterize.Renderer, ocr extract.Engine, tempDir, lang string) *Pipeline {
	return &Pipeline{Repo: repo, Render: render, OCR: ocr, TempDir: tempDir, Lang: lang}
}

// Outcome is the result of one run. Persisted=false with a non-nil error
// never happens; a rejected extraction is a normal outcome, not an error,
// and carries a bounded raw-text sample for diagnosis.
type Outcome struct {
	Result      extract.Result
	Persisted   bool
	FailedPages int
	TextSample  string
}

// Process runs the extraction pipeline for one uploaded file. Hard failures
// surface as the tagged errors in errors.go; per-page OCR failures only
// degrade that page to empty text.
func (p *Pipeline) Process(id uint) (*Outcome, error) {
	file, err := p.Repo.GetUploadedFile(id)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(file.FilePath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSourceMissing, file.FilePath)
	}

	if err := os.MkdirAll(p.TempDir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}

	pages, rerr := p.Render.Rasterize(file.FilePath, p.TempDir)
	if rerr != nil {
		return nil, fmt.Errorf("%w: %v", ErrConversionFailed, rerr)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrConversionFailed, file.FilePath)
	}
	pages = extract.SortPages(pages)

	text, failedPages := extract.AggregateText(p.OCR, pages, p.Lang)
	if failedPages > 0 {
		log.Printf("receipt %d: %d of %d pages failed OCR", id, failedPages, len(pages))
	}

	// The stored name carries the upload-timestamp prefix the merchant
	// hint is derived from.
	result, accepted := extract.Assemble(text, filepath.Base(file.FilePath))
	if !accepted {
		return &Outcome{
			Result:      result,
			FailedPages: failedPages,
			TextSample:  sample(text, textSampleLimit),
		}, nil
	}

	rec := models.ExtractedReceipt{
		MerchantName: result.MerchantName,
		TotalAmount:  result.TotalAmount,
		FilePath:     file.FilePath,
	}
	if result.Date != "" {
		d := result.Date
		rec.PurchasedAt = &d
	}
	if err := p.Repo.SaveExtraction(&rec, file.ID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	return &Outcome{Result: result, Persisted: true, FailedPages: failedPages}, nil
}

func sample(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
