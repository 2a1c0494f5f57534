package pipeline

import "errors"

// Tagged failure kinds for a pipeline run. Callers dispatch on these with
// errors.Is; only rasterizer/OCR-level failures are worth retrying.
var (
	ErrNotFound          = errors.New("uploaded file not found")
	ErrSourceMissing     = errors.New("source pdf missing on disk")
	ErrConversionFailed  = errors.New("pdf conversion produced no pages")
	ErrPersistenceFailed = errors.New("failed to persist extraction")
)
