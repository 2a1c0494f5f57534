// Package rasterize renders receipt PDFs into per-page JPEG images for OCR.
package rasterize

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
)

// Renderer converts a PDF into an ordered sequence of page images. The
// pipeline re-sorts the returned paths by page number before use.
type Renderer interface {
	Rasterize(pdfPath, outDir string) ([]string, error)
}

// FitzRenderer renders pages with MuPDF via go-fitz. Page images are written
// to outDir as <base>-<n>.jpg with n starting at 1, matching the naming the
// page orderer expects.
type FitzRenderer struct{}

func (FitzRenderer) Rasterize(pdfPath, outDir string) ([]string, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", pdfPath, err)
	}
	defer doc.Close()

	base := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	var out []string
	for i := 0; i < doc.NumPage(); i++ {
		img, err := doc.Image(i)
		if err != nil {
			log.Printf("render page %d of %s failed: %v", i+1, pdfPath, err)
			continue
		}
		dst := filepath.Join(outDir, fmt.Sprintf("%s-%d.jpg", base, i+1))
		if err := imaging.Save(img, dst); err != nil {
			log.Printf("save page image %s failed: %v", dst, err)
			continue
		}
		out = append(out, dst)
	}
	return out, nil
}
