package extract

import (
	"log"
	"strings"
)

// AggregateText OCRs each page in the order given and concatenates the
// results into one document, each page separated by a blank line. A failed
// page contributes empty text and is counted; it never aborts the document.
func AggregateText(engine Engine, pages []string, lang string) (string, int) {
	var b strings.Builder
	failed := 0
	for _, page := range pages {
		text, err := engine.Recognize(page, lang)
		if err != nil {
			log.Printf("OCR page failed %s: %v", page, err)
			failed++
			continue
		}
		b.WriteString("\n\n")
		b.WriteString(text)
	}
	return b.String(), failed
}
