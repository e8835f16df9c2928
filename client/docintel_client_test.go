package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/taxdoc-import/dto"
	"github.com/ledgerline/taxdoc-import/logger"
)

func newTestClient(baseURL string, maxAttempts int) *DocIntelClient {
	return NewDocIntelClient(baseURL, "test-key", 5*time.Millisecond, maxAttempts, logger.Default())
}

func TestAnalyzeImmediateResult(t *testing.T) {
	var gotReq analyzeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/analyze", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(operationResponse{
			Status: statusSucceeded,
			Result: &AnalysisResult{
				OCRText:          "Employee Name: Jane Doe",
				StructuredFields: map[string]string{"wages": "50000"},
				FieldConfidences: map[string]float64{"wages": 0.92},
			},
		})
	}))
	defer server.Close()

	c := newTestClient(server.URL, 3)
	result, err := c.Analyze(context.Background(), "w2.pdf", []byte("fake pdf bytes"), "wage-statement")

	require.NoError(t, err)
	assert.Equal(t, "50000", result.StructuredFields["wages"])
	assert.Equal(t, "w2.pdf", gotReq.Filename)
	assert.Equal(t, "wage-statement", gotReq.DocumentType)

	content, err := base64.StdEncoding.DecodeString(gotReq.Content)
	require.NoError(t, err)
	assert.Equal(t, []byte("fake pdf bytes"), content)
}

func TestAnalyzePollsUntilSucceeded(t *testing.T) {
	polls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/analyze":
			w.WriteHeader(http.StatusAccepted)
			json.NewEncoder(w).Encode(operationResponse{OperationID: "op-1", Status: "running"})
		case "/v1/operations/op-1":
			polls++
			if polls < 3 {
				json.NewEncoder(w).Encode(operationResponse{OperationID: "op-1", Status: "running"})
				return
			}
			json.NewEncoder(w).Encode(operationResponse{
				OperationID: "op-1",
				Status:      statusSucceeded,
				Result:      &AnalysisResult{OCRText: "done"},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	c := newTestClient(server.URL, 10)
	result, err := c.Analyze(context.Background(), "w2.pdf", []byte("data"), "wage-statement")

	require.NoError(t, err)
	assert.Equal(t, "done", result.OCRText)
	assert.Equal(t, 3, polls)
}

func TestAnalyzeTimesOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/analyze" {
			w.WriteHeader(http.StatusAccepted)
			json.NewEncoder(w).Encode(operationResponse{OperationID: "op-2", Status: "running"})
			return
		}
		json.NewEncoder(w).Encode(operationResponse{OperationID: "op-2", Status: "running"})
	}))
	defer server.Close()

	c := newTestClient(server.URL, 2)
	_, err := c.Analyze(context.Background(), "w2.pdf", []byte("data"), "wage-statement")

	assert.ErrorIs(t, err, dto.ErrBackendTimeout)
}

func TestAnalyzeFailedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(operationResponse{Status: statusFailed, Error: "unreadable document"})
	}))
	defer server.Close()

	c := newTestClient(server.URL, 3)
	_, err := c.Analyze(context.Background(), "w2.pdf", []byte("data"), "wage-statement")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreadable document")
}

func TestAnalyzeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestClient(server.URL, 3)
	_, err := c.Analyze(context.Background(), "w2.pdf", []byte("data"), "wage-statement")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestAnalyzeBackendUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	c := newTestClient(server.URL, 3)
	_, err := c.Analyze(context.Background(), "w2.pdf", []byte("data"), "wage-statement")

	assert.ErrorIs(t, err, dto.ErrBackendUnavailable)
}

func TestAvgConfidence(t *testing.T) {
	empty := &AnalysisResult{}
	assert.Zero(t, empty.AvgConfidence())

	r := &AnalysisResult{FieldConfidences: map[string]float64{"a": 0.8, "b": 0.6}}
	assert.InDelta(t, 0.7, r.AvgConfidence(), 1e-9)
}
