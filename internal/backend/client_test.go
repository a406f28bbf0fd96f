package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ragdesk/internal/domain"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/"}, zap.NewNop())
}

func TestListFiles(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/files", r.URL.Path)
		fmt.Fprint(w, `[{"name":"a.pdf","path":"/kb/a.pdf"},{"name":"b.txt","path":"/kb/b.txt"}]`)
	}))

	got, err := c.ListFiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.FileInfo{{Name: "a.pdf", Path: "/kb/a.pdf"}, {Name: "b.txt", Path: "/kb/b.txt"}}, got)
}

func TestListFilesNonSuccess(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"detail":"cannot read directory"}`)
	}))

	_, err := c.ListFiles(context.Background())
	var be *domain.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, http.StatusInternalServerError, be.Status)
	assert.Equal(t, "cannot read directory", be.Detail)
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewClient(Config{BaseURL: srv.URL}, nil)

	_, err := c.ListModels(context.Background())
	var ne *domain.NetworkError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, "list models", ne.Op)
}

func TestUploadSendsOnePartPerBlob(t *testing.T) {
	type part struct{ name, body string }
	var got []part
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/upload", r.URL.Path)
		mr, err := r.MultipartReader()
		if !assert.NoError(t, err) {
			return
		}
		for {
			p, err := mr.NextPart()
			if errors.Is(err, io.EOF) {
				break
			}
			if !assert.NoError(t, err) {
				return
			}
			assert.Equal(t, "files", p.FormName())
			b, _ := io.ReadAll(p)
			got = append(got, part{p.FileName(), string(b)})
		}
		fmt.Fprint(w, `{"unexpected":"shape"}`)
	}))

	err := c.Upload(context.Background(), []domain.Upload{
		{Name: "a.pdf", Content: strings.NewReader("AAA")},
		{Name: "b.txt", Content: strings.NewReader("BBB")},
	})
	require.NoError(t, err)
	assert.Equal(t, []part{{"a.pdf", "AAA"}, {"b.txt", "BBB"}}, got)
}

func TestDeleteEncodesFilename(t *testing.T) {
	name := "q3 report & notes?.pdf"
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/delete", r.URL.Path)
		assert.Equal(t, name, r.URL.Query().Get("filename"))
		fmt.Fprint(w, `[]`)
	}))

	require.NoError(t, c.Delete(context.Background(), name))
}

func TestQueryBody(t *testing.T) {
	tests := []struct {
		name string
		req  domain.QueryRequest
		want string
	}{
		{
			name: "with model",
			req:  domain.QueryRequest{Query: "What is X?", TopK: 6, FileFilters: []string{"a.pdf", "c.pdf"}, Model: "local-llm"},
			want: `{"query":"What is X?","top_k":6,"file_filters":["a.pdf","c.pdf"],"model":"local-llm"}`,
		},
		{
			name: "legacy variant omits model and sends empty filters",
			req:  domain.QueryRequest{Query: "hi", TopK: 6},
			want: `{"query":"hi","top_k":6,"file_filters":[]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				body, _ := io.ReadAll(r.Body)
				assert.JSONEq(t, tt.want, string(body))
				fmt.Fprint(w, `{"answer":"X is Y.","sources":[{"content":"X is Y.","metadata":{"source":"a.pdf","page":2},"score":0.91}]}`)
			}))

			got, err := c.Query(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, "X is Y.", got.Answer)
			require.Len(t, got.Sources, 1)
			assert.Equal(t, "a.pdf", got.Sources[0].Source())
			assert.InDelta(t, 0.91, got.Sources[0].Score, 1e-9)
			assert.Equal(t, float64(2), got.Sources[0].Metadata["page"])
		})
	}
}

func TestQueryDecodeFailure(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json`)
	}))
	_, err := c.Query(context.Background(), domain.QueryRequest{Query: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestListModels(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"models": []string{"gemma3:latest", "llama3"}})
	}))
	got, err := c.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gemma3:latest", "llama3"}, got)
}

func TestParseDetail(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"detail":"index unavailable"}`, "index unavailable"},
		{`{"detail":[{"loc":["body","query"],"msg":"field required"},{"msg":"bad top_k"}]}`, "field required; bad top_k"},
		{`{"error":"other"}`, ""},
		{`<html>502</html>`, ""},
		{``, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseDetail([]byte(tt.body)), tt.body)
	}
}
