package dto

import "errors"

// Custom errors
var (
	ErrDuplicateTarget     = errors.New("target field already mapped")
	ErrUnsupportedFormat   = errors.New("unsupported file format")
	ErrFileTooLarge        = errors.New("file exceeds size limit")
	ErrEmptyDocument       = errors.New("no text could be extracted")
	ErrUnknownDocumentType = errors.New("unknown document type")
	ErrBackendUnavailable  = errors.New("document intelligence backend unavailable")
	ErrBackendTimeout      = errors.New("document analysis timed out")
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// PipelineResult is the final response for one document run through the
// import pipeline.
type PipelineResult struct {
	Success        bool              `json:"success"`
	BatchID        string            `json:"batch_id"`
	DocType        DocumentType      `json:"doc_type"`
	ProcessedCount int               `json:"processed_count"`
	Errors         []ValidationError `json:"errors"`
	Entries        []LedgerEntry     `json:"ledger_entries"`
	Documents      []TaxDocument     `json:"documents,omitempty"`
	Extraction     *ExtractionResult `json:"extraction,omitempty"`
	ProcessedAt    string            `json:"processed_at"`
}
