package resume

import "errors"

var (
	// ErrInvalidInput: missing file, non-PDF media type, or unknown user.
	ErrInvalidInput = errors.New("invalid input")
	// ErrExtractionFailed: no text at all could be recovered from the PDF.
	ErrExtractionFailed = errors.New("text extraction failed")
	// ErrEmptyInput: structured extraction was asked to process blank text.
	ErrEmptyInput = errors.New("empty input text")
	// ErrExternalModel wraps language-model failures. It never reaches callers
	// of Ingest: the fallback payload is used instead.
	ErrExternalModel = errors.New("external model error")
	// ErrProfileUpdate: the scalar profile update failed.
	ErrProfileUpdate = errors.New("profile update failed")
)
