package service

import (
	"context"
	"errors"
	"image"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/taxdoc-import/client"
	"github.com/ledgerline/taxdoc-import/dto"
	"github.com/ledgerline/taxdoc-import/logger"
)

const w2ScanText = `
	Form W-2 Wage and Tax Statement
	Employee Name: Jane Doe
	Employer: Acme Widget Company Inc
	EIN: 12-3456789
	SSN: 987-65-4321
	Wages, tips, other compensation: $45,200.00
	Federal income tax withheld: $5,100.00
`

type stubAnalyzer struct {
	result  *client.AnalysisResult
	err     error
	calls   int
	docType string
}

func (a *stubAnalyzer) Analyze(ctx context.Context, filename string, data []byte, docType string) (*client.AnalysisResult, error) {
	a.calls++
	a.docType = docType
	return a.result, a.err
}

type stubRecognizer struct {
	text string
	conf float64
	err  error
}

func (r *stubRecognizer) ExtractTextAndQuality(filePath string) (string, float64, error) {
	return r.text, r.conf, r.err
}

func (r *stubRecognizer) ExtractTextAndQualityFromBytes(data []byte, filename string) (string, float64, error) {
	return r.text, r.conf, r.err
}

func (r *stubRecognizer) ExtractTextAndQualityFromImage(img image.Image) (string, float64, error) {
	return r.text, r.conf, r.err
}

type stubPDF struct {
	text    string
	textErr error
	images  []image.Image
	imgErr  error
}

func (p *stubPDF) ExtractText(pdfData []byte, password string) (string, error) {
	return p.text, p.textErr
}

func (p *stubPDF) ExtractImages(pdfData []byte, password string) ([]image.Image, error) {
	return p.images, p.imgErr
}

func testLogger() *logger.Logger {
	l := logger.Default()
	l.SetOutput(io.Discard)
	return l
}

func drainStages(ch chan dto.ProgressEvent) []string {
	var stages []string
	for len(ch) > 0 {
		stages = append(stages, (<-ch).Stage)
	}
	return stages
}

func TestExtractDocumentBackendFields(t *testing.T) {
	analyzer := &stubAnalyzer{result: &client.AnalysisResult{
		OCRText: "Wages: 45,200",
		StructuredFields: map[string]string{
			"Employee Name": "Jane Doe",
			"Employer Name": "Acme Corp",
			"Employer EIN":  "12-3456789",
		},
		FieldConfidences: map[string]float64{
			"Employee Name": 0.9,
			"Employer Name": 0.8,
			"Employer EIN":  0.7,
		},
	}}
	svc := NewExtractionService(analyzer, &stubRecognizer{}, &stubPDF{}, testLogger())
	progress := make(chan dto.ProgressEvent, 16)

	res, err := svc.ExtractDocument(context.Background(), "w2.pdf", []byte("data"), "wage-statement", progress)

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, map[string]string{
		"employeeName": "Jane Doe",
		"employerName": "Acme Corp",
		"employerTIN":  "12-3456789",
	}, res.Fields)
	assert.Equal(t, dto.SourceBackend, res.Source)
	assert.Equal(t, dto.ConfidenceHigh, res.ConfidenceLevel)
	assert.InDelta(t, 0.8, res.Confidence, 1e-9)
	assert.False(t, res.NeedsReview)
	assert.Equal(t, 1, analyzer.calls)
	assert.Equal(t, "wage-statement", analyzer.docType)

	// Three structured fields meet the threshold, so pattern extraction
	// never ran over the OCR text.
	_, patterned := res.Fields["wages"]
	assert.False(t, patterned)
	stages := drainStages(progress)
	assert.Contains(t, stages, dto.StageBackend)
	assert.NotContains(t, stages, dto.StagePatterns)
	assert.Contains(t, stages, dto.StageDone)
}

func TestExtractDocumentEmbeddedTextPatterns(t *testing.T) {
	svc := NewExtractionService(nil, &stubRecognizer{}, &stubPDF{text: w2ScanText}, testLogger())
	progress := make(chan dto.ProgressEvent, 16)

	res, err := svc.ExtractDocument(context.Background(), "w2.pdf", []byte("data"), "wage-statement", progress)

	require.NoError(t, err)
	assert.Equal(t, "45200", res.Fields["wages"])
	assert.Equal(t, "5100", res.Fields["federalTaxWithheld"])
	assert.Equal(t, "Jane Doe", res.Fields["employeeName"])
	assert.Equal(t, "Acme Widget Company Inc", res.Fields["employerName"])
	assert.Equal(t, dto.SourceFallback, res.Source)
	assert.Equal(t, dto.ConfidenceMedium, res.ConfidenceLevel)
	assert.InDelta(t, 0.95, res.Confidence, 1e-9)

	stages := drainStages(progress)
	assert.Contains(t, stages, dto.StageOCRFallback)
	assert.Contains(t, stages, dto.StagePatterns)
}

func TestExtractDocumentBackendTextOnlyAnswer(t *testing.T) {
	// The backend answered but recognized no structured fields; its OCR text
	// still feeds the pattern extractor and the result rates medium.
	analyzer := &stubAnalyzer{result: &client.AnalysisResult{OCRText: w2ScanText}}
	svc := NewExtractionService(analyzer, &stubRecognizer{}, &stubPDF{}, testLogger())

	res, err := svc.ExtractDocument(context.Background(), "w2.pdf", []byte("data"), "wage-statement", nil)

	require.NoError(t, err)
	assert.Equal(t, "45200", res.Fields["wages"])
	assert.Equal(t, dto.SourceFallback, res.Source)
	assert.Equal(t, dto.ConfidenceMedium, res.ConfidenceLevel)
	assert.InDelta(t, 0.5, res.Confidence, 1e-9)
}

func TestExtractDocumentImageOCR(t *testing.T) {
	svc := NewExtractionService(nil, &stubRecognizer{text: w2ScanText, conf: 72}, &stubPDF{}, testLogger())

	res, err := svc.ExtractDocument(context.Background(), "scan.png", []byte("not an image"), "wage-statement", nil)

	require.NoError(t, err)
	assert.Equal(t, "45200", res.Fields["wages"])
	assert.InDelta(t, 0.72, res.Confidence, 1e-9)
	assert.Equal(t, dto.SourceFallback, res.Source)
}

func TestExtractDocumentTextOnly(t *testing.T) {
	text := "lorem ipsum dolor sit amet, consectetur adipiscing elit sed do eiusmod"
	svc := NewExtractionService(nil, &stubRecognizer{}, &stubPDF{text: text}, testLogger())

	res, err := svc.ExtractDocument(context.Background(), "letter.pdf", []byte("data"), "wage-statement", nil)

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.NeedsReview)
	assert.Equal(t, dto.SourceManual, res.Source)
	assert.Equal(t, dto.ConfidenceMedium, res.ConfidenceLevel)
	assert.Contains(t, res.Fields["documentText"], "lorem ipsum")
	assert.NotEmpty(t, res.Note)
}

func TestExtractDocumentNothingRecovered(t *testing.T) {
	svc := NewExtractionService(nil,
		&stubRecognizer{err: errors.New("tesseract failed")},
		&stubPDF{textErr: errors.New("no text layer"), imgErr: errors.New("no images")},
		testLogger())

	_, err := svc.ExtractDocument(context.Background(), "blank.pdf", []byte("data"), "wage-statement", nil)

	assert.ErrorIs(t, err, dto.ErrEmptyDocument)
}

func TestExtractDocumentEmptyInput(t *testing.T) {
	svc := NewExtractionService(nil, &stubRecognizer{}, &stubPDF{}, testLogger())

	_, err := svc.ExtractDocument(context.Background(), "w2.pdf", nil, "wage-statement", nil)

	assert.ErrorIs(t, err, dto.ErrEmptyDocument)
}

func TestMergeFieldsNeverOverwrites(t *testing.T) {
	dst := map[string]string{"employeeName": "Jane Doe"}

	added := mergeFields(dst, map[string]string{
		"employeeName": "Wrong Name",
		"wages":        "45200",
		"blank":        "",
	})

	assert.Equal(t, 1, added)
	assert.Equal(t, "Jane Doe", dst["employeeName"])
	assert.Equal(t, "45200", dst["wages"])
	assert.NotContains(t, dst, "blank")
}

func TestParseQRPayload(t *testing.T) {
	fields := parseQRPayload("Employee Name=Jane Doe\nGross Pay: 50000;Employer Name=Acme Corp|garbage")

	assert.Equal(t, map[string]string{
		"employeeName": "Jane Doe",
		"wages":        "50000",
		"employerName": "Acme Corp",
	}, fields)

	assert.Nil(t, parseQRPayload("no separators here"))
}
