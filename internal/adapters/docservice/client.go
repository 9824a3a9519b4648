// Package docservice provides the HTTP adapter for the document QA service.
// It implements ports.DocumentService against the /upload, /query, /clear
// and /health endpoints.
package docservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/0xcro3dile/docinsight-go/internal/domain/entities"
)

const (
	// DefaultBaseURL matches the service's local development address.
	DefaultBaseURL = "http://localhost:8000"

	// FilesField is the multipart field repeated once per uploaded file.
	FilesField = "files"

	// RequestIDHeader carries a per-request correlation ID.
	RequestIDHeader = "X-Request-ID"

	opUpload = "upload documents"
	opQuery  = "ask question"
	opClear  = "clear corpus"
	opHealth = "check health"
)

// Client implements ports.DocumentService over HTTP.
// It is stateless apart from its configuration and safe for concurrent use.
type Client struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithTimeout sets the transport timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient creates a new document service client.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 120 * time.Second, // document indexing is slow
		},
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.Named("docservice")
	return c
}

// BaseURL returns the service address the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// uploadResponse is the /upload success body. Entries of files are usually
// file names but may be objects.
type uploadResponse struct {
	Message string            `json:"message"`
	Files   []json.RawMessage `json:"files"`
	Chunks  int               `json:"chunks"`
}

type queryRequest struct {
	Question string `json:"question"`
}

type queryResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// errorResponse is the failure body. detail is a string for application
// errors and a list for request validation errors.
type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

// SubmitDocuments uploads all files in a single multipart request.
func (c *Client) SubmitDocuments(ctx context.Context, files []entities.PendingFile) (*entities.UploadResult, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: no files given", opUpload)
	}

	body, contentType, err := encodeFiles(files)
	if err != nil {
		return nil, &entities.TransportError{Op: opUpload, Err: fmt.Errorf("encoding multipart body: %w", err)}
	}

	var resp uploadResponse
	if err := c.do(ctx, opUpload, http.MethodPost, "/upload", contentType, body, &resp); err != nil {
		return nil, err
	}

	names := make([]string, len(resp.Files))
	for i, raw := range resp.Files {
		names[i] = fileName(raw)
	}
	return &entities.UploadResult{Files: names, Chunks: resp.Chunks}, nil
}

// AskQuestion sends one question and returns the grounded answer.
func (c *Client) AskQuestion(ctx context.Context, question string) (*entities.Answer, error) {
	jsonData, err := json.Marshal(queryRequest{Question: question})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	var resp queryResponse
	if err := c.do(ctx, opQuery, http.MethodPost, "/query", "application/json", bytes.NewReader(jsonData), &resp); err != nil {
		return nil, err
	}

	sources := resp.Sources
	if sources == nil {
		sources = []string{}
	}
	return &entities.Answer{Answer: resp.Answer, Sources: sources}, nil
}

// ClearCorpus drops every indexed document. The response body is ignored.
func (c *Client) ClearCorpus(ctx context.Context) error {
	return c.do(ctx, opClear, http.MethodDelete, "/clear", "", nil, nil)
}

// CheckHealth probes service liveness.
func (c *Client) CheckHealth(ctx context.Context) (entities.HealthStatus, error) {
	status := entities.HealthStatus{}
	if err := c.do(ctx, opHealth, http.MethodGet, "/health", "", nil, &status); err != nil {
		return nil, err
	}
	return status, nil
}

// do performs one round trip. A nil out discards the success body.
func (c *Client) do(ctx context.Context, op, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &entities.TransportError{Op: op, Err: fmt.Errorf("creating request: %w", err)}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Debug("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return &entities.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug("request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return &entities.RemoteError{Op: op, Status: resp.StatusCode, Detail: parseDetail(respBody)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &entities.TransportError{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// encodeFiles writes one part per file under FilesField, in order.
func encodeFiles(files []entities.PendingFile) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range files {
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="%s"; filename="%s"`, FilesField, quoteEscaper.Replace(f.Name)))
		h.Set("Content-Type", ct)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Content); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// parseDetail extracts a string detail from a failure body.
func parseDetail(body []byte) string {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || len(errResp.Detail) == 0 {
		return ""
	}
	var detail string
	if err := json.Unmarshal(errResp.Detail, &detail); err != nil {
		return ""
	}
	return detail
}

// fileName renders one entry of the upload response's files list.
func fileName(raw json.RawMessage) string {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return name
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		for _, key := range []string{"filename", "name", "file"} {
			if s, ok := obj[key].(string); ok && s != "" {
				return s
			}
		}
	}
	return string(raw)
}

