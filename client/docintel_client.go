package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ledgerline/taxdoc-import/dto"
	"github.com/ledgerline/taxdoc-import/logger"
)

const (
	statusSucceeded = "succeeded"
	statusFailed    = "failed"
)

// AnalysisResult is the document intelligence backend's answer for one
// document.
type AnalysisResult struct {
	OCRText          string             `json:"ocr_text"`
	StructuredFields map[string]string  `json:"structured_fields"`
	FieldConfidences map[string]float64 `json:"field_confidences"`
}

// AvgConfidence returns the mean of the per-field confidences, or 0 when the
// backend reported none.
func (r *AnalysisResult) AvgConfidence() float64 {
	if len(r.FieldConfidences) == 0 {
		return 0
	}
	var sum float64
	for _, c := range r.FieldConfidences {
		sum += c
	}
	return sum / float64(len(r.FieldConfidences))
}

type analyzeRequest struct {
	Filename     string `json:"filename"`
	DocumentType string `json:"document_type"`
	Content      string `json:"content"`
}

type operationResponse struct {
	OperationID string          `json:"operation_id"`
	Status      string          `json:"status"`
	Error       string          `json:"error,omitempty"`
	Result      *AnalysisResult `json:"result,omitempty"`
}

// DocIntelClient calls the external document intelligence service. Analysis
// is asynchronous: a submit returns an operation id that is polled at a fixed
// interval until the backend finishes or the attempt limit is reached.
type DocIntelClient struct {
	baseURL      string
	apiKey       string
	pollInterval time.Duration
	maxAttempts  int
	httpClient   *http.Client
	log          *logger.Logger
}

// NewDocIntelClient creates a client for the backend at baseURL. apiKey may
// be empty for unauthenticated deployments.
func NewDocIntelClient(baseURL, apiKey string, pollInterval time.Duration, maxAttempts int, log *logger.Logger) *DocIntelClient {
	return &DocIntelClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		pollInterval: pollInterval,
		maxAttempts:  maxAttempts,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		log:          log,
	}
}

// Analyze submits a document and waits for the backend's structured answer.
// Small documents may be answered synchronously; otherwise the returned
// operation is polled until it settles.
func (c *DocIntelClient) Analyze(ctx context.Context, filename string, data []byte, docType string) (*AnalysisResult, error) {
	op, err := c.submit(ctx, filename, data, docType)
	if err != nil {
		return nil, err
	}

	switch {
	case op.Status == statusSucceeded && op.Result != nil:
		return op.Result, nil
	case op.Status == statusFailed:
		return nil, fmt.Errorf("document analysis failed: %s", op.Error)
	case op.OperationID == "":
		return nil, fmt.Errorf("backend returned neither a result nor an operation id")
	}

	return c.poll(ctx, op.OperationID)
}

func (c *DocIntelClient) submit(ctx context.Context, filename string, data []byte, docType string) (*operationResponse, error) {
	payload := analyzeRequest{
		Filename:     filename,
		DocumentType: docType,
		Content:      base64.StdEncoding.EncodeToString(data),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analyze request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create analyze request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dto.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("backend returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var op operationResponse
	if err := json.NewDecoder(resp.Body).Decode(&op); err != nil {
		return nil, fmt.Errorf("failed to decode analyze response: %w", err)
	}
	return &op, nil
}

func (c *DocIntelClient) poll(ctx context.Context, operationID string) (*AnalysisResult, error) {
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}

		op, err := c.fetchOperation(ctx, operationID)
		if err != nil {
			return nil, err
		}

		switch op.Status {
		case statusSucceeded:
			if op.Result == nil {
				return nil, fmt.Errorf("backend reported success without a result")
			}
			return op.Result, nil
		case statusFailed:
			return nil, fmt.Errorf("document analysis failed: %s", op.Error)
		}

		c.log.WithField("operation_id", operationID).
			Debugf("analysis still pending (attempt %d/%d)", attempt, c.maxAttempts)
	}

	return nil, fmt.Errorf("%w after %d attempts", dto.ErrBackendTimeout, c.maxAttempts)
}

func (c *DocIntelClient) fetchOperation(ctx context.Context, operationID string) (*operationResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/operations/"+operationID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dto.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("backend returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var op operationResponse
	if err := json.NewDecoder(resp.Body).Decode(&op); err != nil {
		return nil, fmt.Errorf("failed to decode operation response: %w", err)
	}
	return &op, nil
}
