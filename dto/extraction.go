package dto

import "time"

// Confidence levels attached to an ExtractionResult.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
)

// Extraction sources, in priority order. A value written by an earlier source
// is never overwritten by a later one.
const (
	SourceQR       = "qr"
	SourceBackend  = "backend"
	SourceFallback = "fallback"
	SourceManual   = "manual"
)

// ExtractionResult carries the merged field map recovered from one scanned
// document, together with the raw OCR text it came from.
type ExtractionResult struct {
	Success         bool              `json:"success"`
	Fields          map[string]string `json:"extracted_fields"`
	OCRText         string            `json:"ocr_text"`
	Confidence      float64           `json:"confidence"`
	ConfidenceLevel string            `json:"confidence_level"`
	Source          string            `json:"source"`
	NeedsReview     bool              `json:"needs_review"`
	Note            string            `json:"note,omitempty"`
}

// Progress stages emitted while a scanned document moves through extraction.
const (
	StageSubmitted   = "submitted"
	StageBackend     = "backend"
	StageOCRFallback = "ocr-fallback"
	StagePatterns    = "pattern-extraction"
	StageMerged      = "merged"
	StageDone        = "done"
)

// ProgressEvent reports one extraction step to an observing caller.
type ProgressEvent struct {
	Stage   string    `json:"stage"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}
