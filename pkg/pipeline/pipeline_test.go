package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"receiptsvc/models"
)

type fakeRepo struct {
	file    *models.UploadedFile
	saved   []models.ExtractedReceipt
	saveErr error
}

func (r *fakeRepo) GetUploadedFile(id uint) (*models.UploadedFile, error) {
	if r.file == nil || r.file.ID != id {
		return nil, ErrNotFound
	}
	c := *r.file
	return &c, nil
}

func (r *fakeRepo) SaveExtraction(rec *models.ExtractedReceipt, uploadedFileID uint) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, *rec)
	r.file.IsProcessed = true
	return nil
}

type fakeRenderer struct {
	pages []string
	err   error
}

func (f fakeRenderer) Rasterize(pdfPath, outDir string) ([]string, error) {
	return f.pages, f.err
}

type fakeEngine struct {
	texts map[string]string
	fail  map[string]bool
	calls []string
}

func (e *fakeEngine) Recognize(imagePath, lang string) (string, error) {
	e.calls = append(e.calls, imagePath)
	if e.fail[imagePath] {
		return "", errors.New("tesseract exploded")
	}
	return e.texts[imagePath], nil
}

func writeSourcePDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "1700000000-starbucks-receipt.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

func newTestPipeline(t *testing.T, repo *fakeRepo, render fakeRenderer, ocr *fakeEngine) *Pipeline {
	t.Helper()
	return New(repo, render, ocr, t.TempDir(), "eng")
}

func TestProcessNotFound(t *testing.T) {
	p := newTestPipeline(t, &fakeRepo{}, fakeRenderer{}, &fakeEngine{})
	_, err := p.Process(42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
}

func TestProcessSourceMissing(t *testing.T) {
	repo := &fakeRepo{file: &models.UploadedFile{ID: 1, FilePath: filepath.Join(t.TempDir(), "gone.pdf")}}
	p := newTestPipeline(t, repo, fakeRenderer{}, &fakeEngine{})
	_, err := p.Process(1)
	if !errors.Is(err, ErrSourceMissing) {
		t.Fatalf("expected ErrSourceMissing got %v", err)
	}
}

func TestProcessConversionFailed(t *testing.T) {
	repo := &fakeRepo{file: &models.UploadedFile{ID: 1, FilePath: writeSourcePDF(t)}}
	p := newTestPipeline(t, repo, fakeRenderer{pages: nil}, &fakeEngine{})
	_, err := p.Process(1)
	if !errors.Is(err, ErrConversionFailed) {
		t.Fatalf("expected ErrConversionFailed for zero pages, got %v", err)
	}

	p = newTestPipeline(t, repo, fakeRenderer{err: errors.New("mupdf broke")}, &fakeEngine{})
	_, err = p.Process(1)
	if !errors.Is(err, ErrConversionFailed) {
		t.Fatalf("expected ErrConversionFailed for renderer error, got %v", err)
	}
}

func TestProcessPagesInNumericOrder(t *testing.T) {
	repo := &fakeRepo{file: &models.UploadedFile{ID: 1, FilePath: writeSourcePDF(t)}}
	ocr := &fakeEngine{texts: map[string]string{
		"r-1.jpg":  "STARBUCKS COFFEE #123",
		"r-2.jpg":  "Total: $12.34",
		"r-10.jpg": "2024-03-05 14:30:00",
	}}
	p := newTestPipeline(t, repo, fakeRenderer{pages: []string{"r-10.jpg", "r-2.jpg", "r-1.jpg"}}, ocr)

	out, err := p.Process(1)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	want := []string{"r-1.jpg", "r-2.jpg", "r-10.jpg"}
	for i := range want {
		if ocr.calls[i] != want[i] {
			t.Fatalf("pages OCR'd out of order: %v", ocr.calls)
		}
	}
	if !out.Persisted || out.Result.Confidence != "high" {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if out.Result.MerchantName != "STARBUCKS COFFEE #123" {
		t.Fatalf("merchant from first page expected, got %q", out.Result.MerchantName)
	}
}

func TestProcessToleratesPageOCRFailure(t *testing.T) {
	repo := &fakeRepo{file: &models.UploadedFile{ID: 1, FilePath: writeSourcePDF(t)}}
	ocr := &fakeEngine{
		texts: map[string]string{"r-2.jpg": "Total: $8.00"},
		fail:  map[string]bool{"r-1.jpg": true},
	}
	p := newTestPipeline(t, repo, fakeRenderer{pages: []string{"r-1.jpg", "r-2.jpg"}}, ocr)

	out, err := p.Process(1)
	if err != nil {
		t.Fatalf("a single bad page must not abort the run: %v", err)
	}
	if out.FailedPages != 1 {
		t.Fatalf("expected 1 failed page got %d", out.FailedPages)
	}
	if !out.Persisted || out.Result.TotalAmount != 8 {
		t.Fatalf("unexpected outcome %+v", out)
	}
}

func TestProcessRejectedNotPersisted(t *testing.T) {
	repo := &fakeRepo{file: &models.UploadedFile{ID: 1, FilePath: writeSourcePDF(t)}}
	ocr := &fakeEngine{texts: map[string]string{"r-1.jpg": "#### @@@@ %%%%"}}
	p := newTestPipeline(t, repo, fakeRenderer{pages: []string{"r-1.jpg"}}, ocr)

	out, err := p.Process(1)
	if err != nil {
		t.Fatalf("rejection is a normal outcome, not an error: %v", err)
	}
	if out.Persisted {
		t.Fatalf("rejected run must not persist")
	}
	if out.TextSample == "" {
		t.Fatalf("rejected run must carry a text sample")
	}
	if len(repo.saved) != 0 {
		t.Fatalf("no rows expected, got %d", len(repo.saved))
	}
	if repo.file.IsProcessed {
		t.Fatalf("rejected run must not mark the upload processed")
	}
}

func TestProcessTextSampleBounded(t *testing.T) {
	long := ""
	for i := 0; i < 200; i++ {
		long += fmt.Sprintf("@@ %d @@\n", i)
	}
	repo := &fakeRepo{file: &models.UploadedFile{ID: 1, FilePath: writeSourcePDF(t)}}
	ocr := &fakeEngine{texts: map[string]string{"r-1.jpg": long}}
	p := newTestPipeline(t, repo, fakeRenderer{pages: []string{"r-1.jpg"}}, ocr)

	out, err := p.Process(1)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(out.TextSample) > textSampleLimit+3 {
		t.Fatalf("sample not bounded: %d bytes", len(out.TextSample))
	}
}

func TestProcessPersistsAndRepeats(t *testing.T) {
	repo := &fakeRepo{file: &models.UploadedFile{ID: 1, FilePath: writeSourcePDF(t)}}
	ocr := &fakeEngine{texts: map[string]string{"r-1.jpg": "STARBUCKS COFFEE\n03/05/24\nTotal: $12.34"}}
	p := newTestPipeline(t, repo, fakeRenderer{pages: []string{"r-1.jpg"}}, ocr)

	for i := 0; i < 2; i++ {
		out, err := p.Process(1)
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if !out.Persisted {
			t.Fatalf("run %d not persisted", i)
		}
	}
	// re-running appends a second row; nothing guards against repeats
	if len(repo.saved) != 2 {
		t.Fatalf("expected 2 rows got %d", len(repo.saved))
	}
	if !repo.file.IsProcessed {
		t.Fatalf("upload must stay marked processed")
	}
	rec := repo.saved[0]
	if rec.PurchasedAt == nil || *rec.PurchasedAt != "05-03-2024" {
		t.Fatalf("unexpected purchased_at %+v", rec.PurchasedAt)
	}
	if rec.MerchantName != "STARBUCKS COFFEE" || rec.TotalAmount != 12.34 {
		t.Fatalf("unexpected row %+v", rec)
	}
}

func TestProcessPersistenceFailure(t *testing.T) {
	repo := &fakeRepo{
		file:    &models.UploadedFile{ID: 1, FilePath: writeSourcePDF(t)},
		saveErr: errors.New("connection reset"),
	}
	ocr := &fakeEngine{texts: map[string]string{"r-1.jpg": "Total: $5.00"}}
	p := newTestPipeline(t, repo, fakeRenderer{pages: []string{"r-1.jpg"}}, ocr)

	_, err := p.Process(1)
	if !errors.Is(err, ErrPersistenceFailed) {
		t.Fatalf("expected ErrPersistenceFailed got %v", err)
	}
}

func TestProcessDateAloneIsPersisted(t *testing.T) {
	repo := &fakeRepo{file: &models.UploadedFile{ID: 1, FilePath: writeSourcePDF(t)}}
	ocr := &fakeEngine{texts: map[string]string{"r-1.jpg": "#### 03/05/24 ####"}}
	p := newTestPipeline(t, repo, fakeRenderer{pages: []string{"r-1.jpg"}}, ocr)

	out, err := p.Process(1)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !out.Persisted || out.Result.Confidence != "partial" {
		t.Fatalf("date alone must persist with partial confidence, got %+v", out)
	}
	if repo.saved[0].TotalAmount != 0 {
		t.Fatalf("missing amount must store 0, got %v", repo.saved[0].TotalAmount)
	}
}
