package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"ragdesk/internal/domain"
)

// maxErrorBody bounds how much of a failed response is read looking for "detail".
const maxErrorBody = 1 << 20

// Config configures the backend client.
type Config struct {
	BaseURL string
	// Timeout applies to request/response endpoints. The embedding stream has no deadline.
	Timeout time.Duration
}

// Client talks to the RAG backend over HTTP and server-sent events.
type Client struct {
	baseURL string
	client  *http.Client
	stream  *http.Client
	log     *zap.Logger
}

// NewClient builds a client for cfg.BaseURL.
func NewClient(cfg Config, log *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		stream:  &http.Client{},
		log:     log,
	}
}

// BaseURL returns the normalised backend address.
func (c *Client) BaseURL() string { return c.baseURL }

// ListFiles returns the authoritative file list.
func (c *Client) ListFiles(ctx context.Context) ([]domain.FileInfo, error) {
	var files []domain.FileInfo
	if err := c.getJSON(ctx, "list files", "/files", &files); err != nil {
		return nil, err
	}
	return files, nil
}

// Upload sends all blobs in one multipart request, one "files" part per blob.
// The response body is ignored.
func (c *Client) Upload(ctx context.Context, files []domain.Upload) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := mw.CreateFormFile("files", f.Name)
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return fmt.Errorf("read %s: %w", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := c.do(c.client, req, "upload")
	if err != nil {
		return err
	}
	drain(resp)
	return nil
}

// Delete removes the file called name. The response body is ignored.
func (c *Client) Delete(ctx context.Context, name string) error {
	q := url.Values{"filename": {name}}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/delete?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.do(c.client, req, "delete")
	if err != nil {
		return err
	}
	drain(resp)
	return nil
}

// Query asks a question scoped by req.FileFilters.
func (c *Client) Query(ctx context.Context, req domain.QueryRequest) (domain.AnswerResponse, error) {
	var out domain.AnswerResponse
	if req.FileFilters == nil {
		req.FileFilters = []string{}
	}
	if err := c.postJSON(ctx, "query", "/query", req, &out); err != nil {
		return domain.AnswerResponse{}, err
	}
	return out, nil
}

// ListModels returns the model identifiers the backend offers.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	var out struct {
		Models []string `json:"models"`
	}
	if err := c.getJSON(ctx, "list models", "/models", &out); err != nil {
		return nil, err
	}
	return out.Models, nil
}

// EmbedStream starts the embedding job and returns its log stream. The
// stream lives until the sentinel, a transport fault, or ctx is cancelled.
func (c *Client) EmbedStream(ctx context.Context) (domain.LogStream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/embed-stream", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	resp, err := c.do(c.stream, req, "embed stream")
	if err != nil {
		return nil, err
	}
	return newEventStream(resp.Body, "embed stream"), nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.do(c.client, req, op)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, op, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	resp, err := c.do(c.client, req, op)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// do sends req and turns transport failures and non-2xx statuses into
// domain errors. On success the caller owns resp.Body.
func (c *Client) do(hc *http.Client, req *http.Request, op string) (*http.Response, error) {
	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		c.log.Warn("request failed",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err))
		return nil, &domain.NetworkError{Op: op, Err: err}
	}
	c.log.Debug("request",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.BackendError{Op: op, Status: resp.StatusCode, Detail: parseDetail(body)}
	}
	return resp, nil
}

// parseDetail extracts the "detail" field of an error body. FastAPI-style
// validation errors carry a list of {msg} objects instead of a string.
func parseDetail(body []byte) string {
	var env struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &env); err != nil || len(env.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(env.Detail, &s); err == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(env.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()
}
