package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"time"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/ledgerline/taxdoc-import/client"
	"github.com/ledgerline/taxdoc-import/dto"
	"github.com/ledgerline/taxdoc-import/logger"
	"github.com/ledgerline/taxdoc-import/utils"
)

const (
	// minExtractedFields is the populated-field threshold below which the
	// pattern extractor runs over the OCR text.
	minExtractedFields = 3

	// minEmbeddedTextLen separates a real text layer from PDF noise.
	minEmbeddedTextLen = 20

	// embeddedTextConfidence applies to text read straight from a PDF text
	// layer, which is not subject to recognition errors.
	embeddedTextConfidence = 0.95

	// defaultConfidence applies when no backend or OCR confidence exists.
	defaultConfidence = 0.5

	// ocrExcerptLimit caps the text carried on a text-only extraction.
	ocrExcerptLimit = 500
)

// DocumentAnalyzer is the structured-extraction backend contract.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, filename string, data []byte, docType string) (*client.AnalysisResult, error)
}

// TextRecognizer is the local OCR contract used when the backend degrades.
type TextRecognizer interface {
	ExtractTextAndQuality(filePath string) (string, float64, error)
	ExtractTextAndQualityFromBytes(data []byte, filename string) (string, float64, error)
	ExtractTextAndQualityFromImage(img image.Image) (string, float64, error)
}

// ExtractionService recovers tax document fields from scanned files. It works
// through a ladder: QR pre-pass, backend analysis, embedded PDF text, local
// OCR on page images, then pattern extraction over whatever text survived.
// Earlier stages have priority; a later stage never overwrites their fields.
type ExtractionService struct {
	analyzer  DocumentAnalyzer
	tesseract TextRecognizer
	pdf       PDFProcessor
	log       *logger.Logger
}

// NewExtractionService wires the extraction ladder. analyzer may be nil when
// no backend is configured; extraction then starts at local OCR.
func NewExtractionService(analyzer DocumentAnalyzer, tesseract TextRecognizer, pdf PDFProcessor, log *logger.Logger) *ExtractionService {
	return &ExtractionService{
		analyzer:  analyzer,
		tesseract: tesseract,
		pdf:       pdf,
		log:       log,
	}
}

// ExtractDocument runs the extraction ladder over one scanned document.
// progress may be nil; events are sent without blocking either way. The only
// fatal outcome is a document that yields neither fields nor text.
func (s *ExtractionService) ExtractDocument(ctx context.Context, filename string, data []byte, docType string, progress chan<- dto.ProgressEvent) (*dto.ExtractionResult, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", dto.ErrEmptyDocument, filename)
	}

	emit(progress, dto.StageSubmitted, fmt.Sprintf("processing %s", filename))

	fields := make(map[string]string)
	source := ""
	confidence := 0.0
	text := ""

	// QR pre-pass: some payroll providers stamp the form data as a QR code.
	// A decoded payload seeds the field map ahead of every other stage.
	if qr := s.qrFields(filename, data); len(qr) > 0 {
		mergeFields(fields, qr)
		source = dto.SourceQR
		s.log.WithDocument(filename).Infof("QR code supplied %d fields", len(qr))
	}

	res, err := s.analyze(ctx, filename, data, docType)
	if err == nil {
		emit(progress, dto.StageBackend, "document intelligence backend answered")
		text = res.OCRText
		added := mergeFields(fields, utils.CanonicalFieldMap(res.StructuredFields))
		if source == "" && added > 0 {
			source = dto.SourceBackend
		}
		confidence = res.AvgConfidence()
	} else {
		s.log.WithDocument(filename).Warnf("backend analysis unavailable, falling back to local OCR: %v", err)
		emit(progress, dto.StageOCRFallback, "running local OCR")
		text, confidence = s.localOCR(filename, data)
	}

	// Structured fields from the QR payload or the backend rate high
	// confidence; everything recovered from raw text rates medium.
	level := dto.ConfidenceMedium
	if populatedCount(fields) > 0 {
		level = dto.ConfidenceHigh
	}

	if populatedCount(fields) < minExtractedFields && strings.TrimSpace(text) != "" {
		emit(progress, dto.StagePatterns, "running pattern extraction over OCR text")
		added := mergeFields(fields, utils.ExtractFields(text, docType))
		if source == "" && added > 0 {
			source = dto.SourceFallback
		}
	}

	if populatedCount(fields) == 0 {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil, fmt.Errorf("%w from %s", dto.ErrEmptyDocument, filename)
		}

		// Not a failure: the caller gets the text as a single reviewable row.
		emit(progress, dto.StageDone, "no fields recognized; document needs manual review")
		return &dto.ExtractionResult{
			Success:         true,
			Fields:          map[string]string{"documentText": excerpt(trimmed, ocrExcerptLimit)},
			OCRText:         text,
			Confidence:      defaultConfidence,
			ConfidenceLevel: dto.ConfidenceMedium,
			Source:          dto.SourceManual,
			NeedsReview:     true,
			Note:            "text-only extraction; manual review required",
		}, nil
	}

	if confidence == 0 {
		confidence = defaultConfidence
	}

	emit(progress, dto.StageMerged, fmt.Sprintf("%d fields extracted", populatedCount(fields)))

	result := &dto.ExtractionResult{
		Success:         true,
		Fields:          fields,
		OCRText:         text,
		Confidence:      confidence,
		ConfidenceLevel: level,
		Source:          source,
	}

	emit(progress, dto.StageDone, "extraction complete")
	return result, nil
}

func (s *ExtractionService) analyze(ctx context.Context, filename string, data []byte, docType string) (*client.AnalysisResult, error) {
	if s.analyzer == nil {
		return nil, dto.ErrBackendUnavailable
	}
	return s.analyzer.Analyze(ctx, filename, data, docType)
}

// localOCR recovers text without the backend: embedded PDF text first, then
// OCR over page images, then OCR over the raw image file. The returned
// confidence is on the 0-1 scale.
func (s *ExtractionService) localOCR(filename string, data []byte) (string, float64) {
	ext := strings.ToLower(filepath.Ext(filename))

	if ext == ".pdf" {
		text, err := s.pdf.ExtractText(data, "")
		if err == nil && len(strings.TrimSpace(text)) >= minEmbeddedTextLen {
			return text, embeddedTextConfidence
		}

		images, err := s.pdf.ExtractImages(data, "")
		if err != nil || len(images) == 0 {
			s.log.WithDocument(filename).Warnf("PDF image extraction failed: %v", err)
			return text, 0
		}

		var combined strings.Builder
		var totalConf float64
		var pages int
		for i, img := range images {
			pageText, conf, err := s.tesseract.ExtractTextAndQualityFromImage(img)
			if err != nil {
				s.log.WithDocument(filename).Warnf("OCR failed on page %d: %v", i+1, err)
				continue
			}
			combined.WriteString(pageText)
			combined.WriteString("\n")
			totalConf += conf
			pages++
		}
		if pages == 0 {
			return text, 0
		}
		return combined.String(), totalConf / float64(pages) / 100
	}

	text, conf, err := s.tesseract.ExtractTextAndQualityFromBytes(data, filename)
	if err != nil {
		s.log.WithDocument(filename).Warnf("local OCR failed: %v", err)
		return "", 0
	}
	return text, conf / 100
}

// qrFields decodes an image input and reads a QR payload of key/value pairs
// from it. Every failure is silent; most documents carry no QR code.
func (s *ExtractionService) qrFields(filename string, data []byte) map[string]string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff":
	default:
		return nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}

	payload, err := decodeQR(img)
	if err != nil {
		s.log.WithDocument(filename).Debugf("no QR code: %v", err)
		return nil
	}
	return parseQRPayload(payload)
}

func decodeQR(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("failed to create binary bitmap: %w", err)
	}

	qrReader := qrcode.NewQRCodeReader()
	result, err := qrReader.Decode(bmp, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decode QR code: %w", err)
	}

	return result.GetText(), nil
}

// parseQRPayload reads "key=value" or "key: value" pairs separated by
// newlines, semicolons or pipes, canonicalizing the keys.
func parseQRPayload(payload string) map[string]string {
	fields := make(map[string]string)
	for _, part := range strings.FieldsFunc(payload, func(r rune) bool {
		return r == '\n' || r == ';' || r == '|'
	}) {
		sep := strings.IndexAny(part, "=:")
		if sep <= 0 {
			continue
		}
		key := strings.TrimSpace(part[:sep])
		value := strings.TrimSpace(part[sep+1:])
		if key == "" || value == "" {
			continue
		}
		fields[utils.CanonicalFieldName(key)] = value
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// mergeFields copies entries from src that dst has no value for yet. Existing
// values are never overwritten: merge order encodes source priority.
func mergeFields(dst, src map[string]string) int {
	added := 0
	for k, v := range src {
		if v == "" {
			continue
		}
		if cur, ok := dst[k]; ok && cur != "" {
			continue
		}
		dst[k] = v
		added++
	}
	return added
}

func populatedCount(fields map[string]string) int {
	n := 0
	for _, v := range fields {
		if v != "" {
			n++
		}
	}
	return n
}

func excerpt(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return strings.ToValidUTF8(s[:limit], "")
}

// emit sends a progress event without ever blocking the pipeline; a slow
// observer just misses events.
func emit(ch chan<- dto.ProgressEvent, stage, message string) {
	if ch == nil {
		return
	}
	select {
	case ch <- dto.ProgressEvent{Stage: stage, Message: message, At: time.Now()}:
	default:
	}
}
