package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerline/taxdoc-import/dto"
	"github.com/ledgerline/taxdoc-import/ledger"
	"github.com/ledgerline/taxdoc-import/logger"
	"github.com/ledgerline/taxdoc-import/mapping"
	"github.com/ledgerline/taxdoc-import/parser"
	"github.com/ledgerline/taxdoc-import/schema"
	"github.com/ledgerline/taxdoc-import/validation"
)

// ImportService runs the full pipeline: parse or extract, map, validate,
// convert. Each call is self-contained, so callers may process documents
// concurrently.
type ImportService struct {
	extraction  *ExtractionService
	maxFileSize int64
	log         *logger.Logger
}

func NewImportService(extraction *ExtractionService, maxFileSize int64, log *logger.Logger) *ImportService {
	return &ImportService{
		extraction:  extraction,
		maxFileSize: maxFileSize,
		log:         log,
	}
}

// ProcessFile imports one structured file (CSV, spreadsheet or JSON). When
// overrides is empty the column mapping is auto-suggested from the schema.
// Parse failures and bad overrides abort the document; validation errors do
// not, they are collected on the result.
func (s *ImportService) ProcessFile(ctx context.Context, filename string, data []byte, docType string, overrides map[string]string) (*dto.PipelineResult, error) {
	parseRes, err := parser.ParseFile(filename, data, s.maxFileSize)
	if err != nil {
		return nil, err
	}
	s.log.WithDocument(filename).Infof("parsed %d rows, %d columns", parseRes.TotalRowCount, len(parseRes.Columns))

	sch, err := schema.ForType(docType)
	if err != nil {
		if !errors.Is(err, dto.ErrUnknownDocumentType) {
			return nil, err
		}
		s.log.WithDocType(docType).Warn("no schema in catalogue; rows pass through untyped")
		return s.finishLoose(docType, parseRes.Rows, nil), nil
	}

	m := mapping.NewMapper(sch)
	if len(overrides) > 0 {
		for source, target := range overrides {
			if err := m.Set(source, target); err != nil {
				return nil, err
			}
		}
	} else {
		m.Suggest(parseRes.Columns)
	}

	return s.finish(docType, sch, m.Mapping(), parseRes.Rows, nil)
}

// ProcessScanned imports one scanned document (PDF or image) by running OCR
// extraction and feeding the recovered fields through the same mapping,
// validation and conversion stages as a one-row file.
func (s *ImportService) ProcessScanned(ctx context.Context, filename string, data []byte, docType string, progress chan<- dto.ProgressEvent) (*dto.PipelineResult, error) {
	if s.maxFileSize > 0 && int64(len(data)) > s.maxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes (limit %d)", dto.ErrFileTooLarge, filename, len(data), s.maxFileSize)
	}

	extRes, err := s.extraction.ExtractDocument(ctx, filename, data, docType, progress)
	if err != nil {
		return nil, err
	}

	row := make(dto.RawRow, len(extRes.Fields))
	columns := make([]string, 0, len(extRes.Fields))
	for k, v := range extRes.Fields {
		row[k] = v
		columns = append(columns, k)
	}
	sort.Strings(columns)

	sch, schErr := schema.ForType(docType)
	if schErr != nil || extRes.Source == dto.SourceManual {
		// Text-only extractions and uncatalogued types skip typed validation;
		// the row surfaces as an unstructured document for review.
		return s.finishLoose(docType, []dto.RawRow{row}, extRes), nil
	}

	m := mapping.NewMapper(sch)
	m.Suggest(columns)
	return s.finish(docType, sch, m.Mapping(), []dto.RawRow{row}, extRes)
}

func (s *ImportService) finish(docType string, sch *schema.Schema, mp map[string]string, rows []dto.RawRow, extraction *dto.ExtractionResult) (*dto.PipelineResult, error) {
	v, err := validation.NewValidator(sch, mp, s.log)
	if err != nil {
		return nil, err
	}
	valRes := v.Validate(rows)

	entries := ledger.ConvertRows(docType, sch, valRes.Rows)

	documents := make([]dto.TaxDocument, 0, len(valRes.Rows))
	for _, row := range valRes.Rows {
		documents = append(documents, dto.BuildDocument(dto.DocumentType(docType), row))
	}

	result := &dto.PipelineResult{
		Success:        valRes.Success,
		BatchID:        uuid.NewString(),
		DocType:        dto.DocumentType(docType),
		ProcessedCount: valRes.ProcessedCount,
		Errors:         valRes.Errors,
		Entries:        entries,
		Documents:      documents,
		Extraction:     extraction,
		ProcessedAt:    time.Now().Format(time.RFC3339),
	}

	s.log.WithBatch(result.BatchID).WithField("doc_type", docType).
		Infof("pipeline finished: %d rows, %d entries, %d errors", valRes.ProcessedCount, len(entries), len(valRes.Errors))
	return result, nil
}

// finishLoose closes the pipeline for rows that have no schema to validate
// against. Values pass through untyped, entries carry best-effort amounts and
// every document is unstructured.
func (s *ImportService) finishLoose(docType string, rows []dto.RawRow, extraction *dto.ExtractionResult) *dto.PipelineResult {
	validated := make([]dto.ValidatedRow, 0, len(rows))
	for i, raw := range rows {
		values := make(map[string]interface{}, len(raw))
		for k, v := range raw {
			values[k] = v
		}
		validated = append(validated, dto.ValidatedRow{Values: values, Raw: raw, RowIndex: i + 1})
	}

	entries := ledger.ConvertRows(docType, nil, validated)

	documents := make([]dto.TaxDocument, 0, len(validated))
	for _, row := range validated {
		doc := dto.BuildDocument(dto.DocTypeUnstructured, row).(dto.UnstructuredDocument)
		if extraction != nil {
			doc.RawText = extraction.OCRText
			if extraction.Note != "" {
				doc.Note = extraction.Note
			}
		}
		documents = append(documents, doc)
	}

	result := &dto.PipelineResult{
		Success:        true,
		BatchID:        uuid.NewString(),
		DocType:        dto.DocumentType(docType),
		ProcessedCount: len(rows),
		Errors:         []dto.ValidationError{},
		Entries:        entries,
		Documents:      documents,
		Extraction:     extraction,
		ProcessedAt:    time.Now().Format(time.RFC3339),
	}

	s.log.WithBatch(result.BatchID).WithField("doc_type", docType).
		Infof("pipeline finished untyped: %d rows, %d entries", len(rows), len(entries))
	return result
}
