package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ledgerline/taxdoc-import/dto"
	"github.com/ledgerline/taxdoc-import/logger"
	"github.com/ledgerline/taxdoc-import/mapping"
	"github.com/ledgerline/taxdoc-import/schema"
	"github.com/ledgerline/taxdoc-import/service"
)

// ImportHandler exposes the import pipeline over HTTP.
type ImportHandler struct {
	importService     *service.ImportService
	extractionService *service.ExtractionService
	maxFileSize       int64
	log               *logger.Logger
}

func NewImportHandler(importService *service.ImportService, extractionService *service.ExtractionService, maxFileSize int64, log *logger.Logger) *ImportHandler {
	return &ImportHandler{
		importService:     importService,
		extractionService: extractionService,
		maxFileSize:       maxFileSize,
		log:               log,
	}
}

// ImportFile handles POST /import/file for structured documents.
func (h *ImportHandler) ImportFile(c *gin.Context) {
	var req dto.ImportRequest
	if err := c.ShouldBind(&req); err != nil {
		h.sendError(c, http.StatusBadRequest, "invalid import request", err)
		return
	}
	if err := req.Validate(); err != nil {
		h.sendError(c, http.StatusBadRequest, "invalid import request", err)
		return
	}

	data, err := h.readUpload(req.File)
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "failed to read uploaded file", err)
		return
	}

	overrides, err := parseMappingJSON(req.Mapping)
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "invalid mapping", err)
		return
	}

	result, err := h.importService.ProcessFile(c.Request.Context(), req.File.Filename, data, req.DocType, overrides)
	if err != nil {
		h.sendError(c, statusFor(err), "import failed", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ImportScanned handles POST /import/scanned for PDFs and images.
func (h *ImportHandler) ImportScanned(c *gin.Context) {
	var req dto.ImportRequest
	if err := c.ShouldBind(&req); err != nil {
		h.sendError(c, http.StatusBadRequest, "invalid import request", err)
		return
	}
	if err := req.Validate(); err != nil {
		h.sendError(c, http.StatusBadRequest, "invalid import request", err)
		return
	}

	data, err := h.readUpload(req.File)
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "failed to read uploaded file", err)
		return
	}

	result, err := h.importService.ProcessScanned(c.Request.Context(), req.File.Filename, data, req.DocType, nil)
	if err != nil {
		h.sendError(c, statusFor(err), "import failed", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Extract handles POST /extract: OCR extraction only, no pipeline.
func (h *ImportHandler) Extract(c *gin.Context) {
	var req dto.ImportRequest
	if err := c.ShouldBind(&req); err != nil {
		h.sendError(c, http.StatusBadRequest, "invalid extraction request", err)
		return
	}

	data, err := h.readUpload(req.File)
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "failed to read uploaded file", err)
		return
	}
	if h.maxFileSize > 0 && int64(len(data)) > h.maxFileSize {
		h.sendError(c, http.StatusRequestEntityTooLarge, "file exceeds size limit", dto.ErrFileTooLarge)
		return
	}

	result, err := h.extractionService.ExtractDocument(c.Request.Context(), req.File.Filename, data, req.DocType, nil)
	if err != nil {
		h.sendError(c, statusFor(err), "extraction failed", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SuggestMapping handles POST /mapping/suggest.
func (h *ImportHandler) SuggestMapping(c *gin.Context) {
	var req dto.SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, http.StatusBadRequest, "invalid suggest request", err)
		return
	}

	sch, err := schema.ForType(req.DocType)
	if err != nil {
		h.sendError(c, statusFor(err), "unknown document type", err)
		return
	}

	m := mapping.NewMapper(sch)
	c.JSON(http.StatusOK, gin.H{
		"doc_type": req.DocType,
		"mapping":  m.Suggest(req.Columns),
	})
}

// ListSchemas handles GET /schema.
func (h *ImportHandler) ListSchemas(c *gin.Context) {
	types, err := schema.Types()
	if err != nil {
		h.sendError(c, http.StatusInternalServerError, "failed to load schema catalogue", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"document_types": types})
}

// GetSchema handles GET /schema/:docType.
func (h *ImportHandler) GetSchema(c *gin.Context) {
	sch, err := schema.ForType(c.Param("docType"))
	if err != nil {
		h.sendError(c, statusFor(err), "unknown document type", err)
		return
	}
	c.JSON(http.StatusOK, sch)
}

func (h *ImportHandler) readUpload(fileHeader *multipart.FileHeader) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

func parseMappingJSON(raw string) (map[string]string, error) {
	if raw == "" {
		return nil, nil
	}
	var overrides map[string]string
	if err := json.Unmarshal([]byte(raw), &overrides); err != nil {
		return nil, err
	}
	return overrides, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, dto.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, dto.ErrUnsupportedFormat),
		errors.Is(err, dto.ErrDuplicateTarget),
		errors.Is(err, dto.ErrUnknownDocumentType):
		return http.StatusBadRequest
	case errors.Is(err, dto.ErrEmptyDocument):
		return http.StatusUnprocessableEntity
	case errors.Is(err, dto.ErrBackendTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// sendError sends a standardized error response
func (h *ImportHandler) sendError(c *gin.Context, statusCode int, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
		h.log.WithField("status", statusCode).Errorf("%s: %v", message, err)
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Error:   "IMPORT_FAILED",
		Message: errorMsg,
		Code:    statusCode,
	})
}
