package service

import (
	"context"
	"io"
	"sync"

	"ragdesk/internal/domain"
)

type fakeStore struct {
	mu          sync.Mutex
	files       []domain.FileInfo
	listErr     error
	uploadErr   error
	deleteErr   error
	failRelist  bool
	listCalls   int
	uploadCalls int
	deleted     []string
}

func newFakeStore(names ...string) *fakeStore {
	s := &fakeStore{}
	for _, n := range names {
		s.files = append(s.files, domain.FileInfo{Name: n, Path: "/kb/" + n})
	}
	return s
}

func (s *fakeStore) ListFiles(ctx context.Context) ([]domain.FileInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]domain.FileInfo(nil), s.files...), nil
}

func (s *fakeStore) Upload(ctx context.Context, files []domain.Upload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploadCalls++
	if s.uploadErr != nil {
		return s.uploadErr
	}
	for _, f := range files {
		_, _ = io.ReadAll(f.Content)
		s.files = append(s.files, domain.FileInfo{Name: f.Name, Path: "/kb/" + f.Name})
	}
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, name)
	kept := s.files[:0]
	for _, f := range s.files {
		if f.Name != name {
			kept = append(kept, f)
		}
	}
	s.files = kept
	if s.failRelist {
		s.listErr = &domain.NetworkError{Op: "list files", Err: io.ErrUnexpectedEOF}
	}
	return nil
}

// gatedAnswerer blocks each query until its gate is closed, when one is set.
type gatedAnswerer struct {
	mu      sync.Mutex
	calls   []domain.QueryRequest
	gates   map[string]chan struct{}
	started chan string
	err     error
}

func newGatedAnswerer() *gatedAnswerer {
	return &gatedAnswerer{gates: map[string]chan struct{}{}, started: make(chan string, 16)}
}

func (g *gatedAnswerer) gate(query string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch := make(chan struct{})
	g.gates[query] = ch
	return ch
}

func (g *gatedAnswerer) Query(ctx context.Context, req domain.QueryRequest) (domain.AnswerResponse, error) {
	g.mu.Lock()
	g.calls = append(g.calls, req)
	gate := g.gates[req.Query]
	err := g.err
	g.mu.Unlock()
	g.started <- req.Query
	if gate != nil {
		<-gate
	}
	if err != nil {
		return domain.AnswerResponse{}, err
	}
	return domain.AnswerResponse{Answer: "answer to " + req.Query}, nil
}

func (g *gatedAnswerer) Calls() []domain.QueryRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]domain.QueryRequest(nil), g.calls...)
}

// chanStream yields lines from a channel; closing the channel ends the
// stream with err.
type chanStream struct {
	lines  chan string
	err    error
	cur    string
	closed bool
}

func (s *chanStream) Next() bool {
	l, ok := <-s.lines
	if !ok || l == "[DONE]" {
		return false
	}
	s.cur = l
	return true
}

func (s *chanStream) Line() string { return s.cur }
func (s *chanStream) Err() error   { return s.err }
func (s *chanStream) Close() error { s.closed = true; return nil }

type fakeStreamer struct {
	stream *chanStream
	err    error
	opens  int
}

func (f *fakeStreamer) EmbedStream(ctx context.Context) (domain.LogStream, error) {
	f.opens++
	if f.err != nil {
		return nil, f.err
	}
	return f.stream, nil
}

type fakeLister struct {
	mu     sync.Mutex
	models []string
	err    error
	calls  int
}

func (f *fakeLister) ListModels(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]string(nil), f.models...), nil
}
