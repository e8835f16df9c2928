package dto

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
)

// ImportRequest is the multipart payload accepted by the import endpoints.
// Mapping is an optional JSON object of source column -> target field; when
// empty the mapping is auto-suggested from the schema.
type ImportRequest struct {
	File    *multipart.FileHeader `form:"file" binding:"required"`
	DocType string                `form:"doc_type" binding:"required"`
	Mapping string                `form:"mapping"`
}

// Validate performs basic validation on the request.
func (r *ImportRequest) Validate() error {
	if r.File == nil {
		return fmt.Errorf("file is required")
	}
	if strings.TrimSpace(r.DocType) == "" {
		return fmt.Errorf("doc_type is required")
	}
	if filepath.Ext(r.File.Filename) == "" {
		return fmt.Errorf("file %q has no extension", r.File.Filename)
	}
	return nil
}

// SuggestRequest asks for a mapping suggestion without uploading a file.
type SuggestRequest struct {
	DocType string   `json:"doc_type" binding:"required"`
	Columns []string `json:"columns" binding:"required"`
}
