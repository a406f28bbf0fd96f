package qdrant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"ragdesk/internal/domain"
	"ragdesk/internal/vectorstore"
)

// Inspector is a minimal read-only REST client to Qdrant.
type Inspector struct {
	url        string
	apiKey     string
	collection string
	dashboard  string
	client     *http.Client
	log        *zap.Logger
}

type Config struct {
	URL          string
	APIKey       string
	Collection   string
	DashboardURL string
	Timeout      time.Duration
}

var _ vectorstore.Inspector = (*Inspector)(nil)

func NewInspector(cfg Config, log *zap.Logger) *Inspector {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	base := strings.TrimRight(cfg.URL, "/")
	dashboard := cfg.DashboardURL
	if dashboard == "" {
		dashboard = base + "/dashboard"
	}
	return &Inspector{
		url:        base,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		dashboard:  dashboard,
		client:     &http.Client{Timeout: timeout},
		log:        log,
	}
}

// DashboardURL is where the collection can be browsed.
func (s *Inspector) DashboardURL() string { return s.dashboard }

// Collection reports the configured collection. A missing collection is not an error.
func (s *Inspector) Collection(ctx context.Context) (vectorstore.CollectionInfo, error) {
	info := vectorstore.CollectionInfo{Name: s.collection}
	var resp struct {
		Result struct {
			Status              string `json:"status"`
			PointsCount         int    `json:"points_count"`
			IndexedVectorsCount int    `json:"indexed_vectors_count"`
			SegmentsCount       int    `json:"segments_count"`
		} `json:"result"`
	}
	err := s.getJSON(ctx, "collection info", "/collections/"+url.PathEscape(s.collection), &resp)
	var be *domain.BackendError
	if errors.As(err, &be) && be.Status == http.StatusNotFound {
		return info, nil
	}
	if err != nil {
		return info, err
	}
	info.Exists = true
	info.Status = resp.Result.Status
	info.PointsCount = resp.Result.PointsCount
	info.IndexedCount = resp.Result.IndexedVectorsCount
	info.SegmentsCount = resp.Result.SegmentsCount
	return info, nil
}

// Collections lists every collection name on the server.
func (s *Inspector) Collections(ctx context.Context) ([]string, error) {
	var resp struct {
		Result struct {
			Collections []struct {
				Name string `json:"name"`
			} `json:"collections"`
		} `json:"result"`
	}
	if err := s.getJSON(ctx, "list collections", "/collections", &resp); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(resp.Result.Collections))
	for _, c := range resp.Result.Collections {
		names = append(names, c.Name)
	}
	return names, nil
}

func (s *Inspector) getJSON(ctx context.Context, op, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url+path, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Warn("qdrant request failed", zap.String("path", path), zap.Error(err))
		return &domain.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	s.log.Debug("qdrant request", zap.String("path", path), zap.Int("status", resp.StatusCode), zap.Duration("latency", time.Since(start)))
	if resp.StatusCode >= 300 {
		var body struct {
			Status struct {
				Error string `json:"error"`
			} `json:"status"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return &domain.BackendError{Op: op, Status: resp.StatusCode, Detail: body.Status.Error}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
