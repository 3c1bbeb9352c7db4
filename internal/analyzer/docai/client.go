// Package docai is the HTTP client for the external OCR text-extraction
// and AI classification service.
package docai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"

	"transquote/internal/config"
	"transquote/internal/port"
)

// Client implements port.DocumentAnalyzer against the document analysis
// service's JSON API. Transient failures are retried; a non-2xx response
// after retries surfaces as an error the caller turns into a failed
// row/job status.
type Client struct {
	baseURL    string
	apiKey     string
	maxRetries int
	client     *http.Client
}

// NewClient creates an analysis service client from config.
func NewClient(cfg *config.AnalyzerConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		maxRetries: maxRetries,
		client:     &http.Client{Timeout: timeout},
	}
}

type submitRequest struct {
	BatchID uuid.UUID             `json:"batch_id"`
	Files   []port.AnalyzeFileRef `json:"files"`
}

type resultsResponse struct {
	Documents []port.AnalyzedDocument `json:"documents"`
}

// Submit starts an asynchronous analysis job for a set of files.
func (c *Client) Submit(ctx context.Context, batchID uuid.UUID, files []port.AnalyzeFileRef) (*port.JobState, error) {
	var state port.JobState
	err := c.doJSON(ctx, http.MethodPost, "/v1/analysis/jobs", submitRequest{BatchID: batchID, Files: files}, &state)
	if err != nil {
		return nil, fmt.Errorf("docai.Submit: %w", err)
	}
	return &state, nil
}

// JobStatus polls a previously submitted job.
func (c *Client) JobStatus(ctx context.Context, jobID string) (*port.JobState, error) {
	var state port.JobState
	err := c.doJSON(ctx, http.MethodGet, "/v1/analysis/jobs/"+jobID, nil, &state)
	if err != nil {
		return nil, fmt.Errorf("docai.JobStatus: %w", err)
	}
	return &state, nil
}

// Results fetches the per-document output of a terminal job.
func (c *Client) Results(ctx context.Context, jobID string) ([]port.AnalyzedDocument, error) {
	var resp resultsResponse
	err := c.doJSON(ctx, http.MethodGet, "/v1/analysis/jobs/"+jobID+"/results", nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("docai.Results: %w", err)
	}
	return resp.Documents, nil
}

// AnalyzeFile performs a synchronous single-shot analysis of one file.
func (c *Client) AnalyzeFile(ctx context.Context, file port.AnalyzeFileRef) ([]port.AnalyzedDocument, error) {
	var resp resultsResponse
	err := c.doJSON(ctx, http.MethodPost, "/v1/analysis/analyze", file, &resp)
	if err != nil {
		return nil, fmt.Errorf("docai.AnalyzeFile: %w", err)
	}
	return resp.Documents, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
	}

	return retry.Do(
		func() error {
			var reader io.Reader
			if payload != nil {
				reader = bytes.NewReader(payload)
			}
			req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("creating request: %w", err))
			}
			req.Header.Set("Content-Type", "application/json")
			if c.apiKey != "" {
				req.Header.Set("Authorization", "Bearer "+c.apiKey)
			}

			resp, err := c.client.Do(req)
			if err != nil {
				return fmt.Errorf("calling analysis service: %w", err)
			}
			defer resp.Body.Close()

			respBody, err := io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("reading response: %w", err)
			}

			if resp.StatusCode >= 500 {
				return fmt.Errorf("analysis service returned %d: %s", resp.StatusCode, respBody)
			}
			if resp.StatusCode >= 400 {
				return retry.Unrecoverable(fmt.Errorf("analysis service returned %d: %s", resp.StatusCode, respBody))
			}

			if out != nil {
				if err := json.Unmarshal(respBody, out); err != nil {
					return retry.Unrecoverable(fmt.Errorf("decoding response: %w", err))
				}
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.maxRetries)),
		retry.Delay(1*time.Second),
	)
}
