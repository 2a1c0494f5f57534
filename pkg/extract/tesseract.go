package extract

import (
	"fmt"
	"os"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// Engine recognizes the text of one page image. Implementations may fail per
// call; the aggregator absorbs those failures page by page.
type Engine interface {
	Recognize(imagePath, lang string) (string, error)
}

// TesseractEngine runs gosseract over a lightly preprocessed page image.
// A fresh client is created per call; gosseract clients are not safe to share.
type TesseractEngine struct{}

func (TesseractEngine) Recognize(imagePath, lang string) (string, error) {
	src := preprocessPage(imagePath)
	if src != imagePath {
		defer os.Remove(src)
	}

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(lang); err != nil {
		return "", fmt.Errorf("set language %q: %w", lang, err)
	}
	if err := client.SetImage(src); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr error: %w", err)
	}
	return text, nil
}

// preprocessPage grayscales and upscales small pages before recognition.
// On any failure it falls back to the original path; OCR quality degrades
// but the page is not lost.
func preprocessPage(path string) string {
	img, err := imaging.Open(path)
	if err != nil {
		return path
	}
	gray := imaging.Grayscale(img)
	if gray.Bounds().Dy() < 800 {
		gray = imaging.Resize(gray, 0, 1200, imaging.Lanczos)
	}
	tmp, err := os.CreateTemp("", "ocr-page-*.png")
	if err != nil {
		return path
	}
	_ = tmp.Close()
	if err := imaging.Save(gray, tmp.Name()); err != nil {
		_ = os.Remove(tmp.Name())
		return path
	}
	return tmp.Name()
}
