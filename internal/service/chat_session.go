package service

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"ragdesk/internal/domain"
)

const (
	// FallbackAnswer replaces the assistant turn when a query fails.
	FallbackAnswer = "Sorry, I ran into an issue. Please try again."

	noModelMessage = "Please wait for models to load or select a model."
)

// ChatSession holds the conversation history and issues scoped queries.
//
// At most one submit in flight is a caller-side rule. Concurrent submits are
// not rejected; each answer is appended when its own request completes, so
// the later-completing request takes the later position.
type ChatSession struct {
	answerer     domain.Answerer
	notifier     domain.Notifier
	log          *zap.Logger
	requireModel bool

	mu       sync.RWMutex
	messages []domain.Message
	inflight int
	subs     subscribers
}

// NewChatSession creates a session. With requireModel unset the legacy
// query shape is used: no model is needed and none is sent.
func NewChatSession(answerer domain.Answerer, notifier domain.Notifier, log *zap.Logger, requireModel bool) *ChatSession {
	if log == nil {
		log = zap.NewNop()
	}
	return &ChatSession{
		answerer:     answerer,
		notifier:     orNop(notifier),
		log:          log,
		requireModel: requireModel,
	}
}

// Subscribe registers fn to run after every state change.
func (s *ChatSession) Subscribe(fn func()) (cancel func()) { return s.subs.add(fn) }

// Submit appends the user turn, queries the backend scoped to the included
// files of selection, and appends the answer or a fallback turn. It blocks
// until the request completes.
func (s *ChatSession) Submit(ctx context.Context, query string, selection *domain.Selection, model string) error {
	if s.requireModel && model == "" {
		notifyError(s.notifier, noModelMessage)
		return &domain.ValidationError{Reason: noModelMessage}
	}
	q := strings.TrimSpace(query)
	if q == "" {
		return &domain.ValidationError{Reason: "empty query"}
	}

	s.mu.Lock()
	s.inflight++
	s.messages = append(s.messages, domain.NewUserMessage(q))
	s.mu.Unlock()
	s.subs.notify()
	defer s.release()

	filters := []string{}
	if selection != nil {
		filters = selection.ActiveFilters()
	}
	req := domain.QueryRequest{Query: q, TopK: domain.DefaultTopK, FileFilters: filters}
	if s.requireModel {
		req.Model = model
	}

	log := s.log.With(zap.Strings("file_filters", filters), zap.String("model", model))
	log.Info("query", zap.Int("query_len", len(q)))

	resp, err := s.answerer.Query(ctx, req)
	if err != nil {
		log.Warn("query failed", zap.Error(err))
		notifyError(s.notifier, "Query failed: %s", domain.Detail(err, "An error occurred"))
		s.append(domain.NewAIMessage(FallbackAnswer, nil))
		return err
	}
	log.Debug("answer received", zap.Int("sources", len(resp.Sources)))
	s.append(domain.NewAIMessage(resp.Answer, resp.Sources))
	return nil
}

func (s *ChatSession) append(m domain.Message) {
	s.mu.Lock()
	s.messages = append(s.messages, m)
	s.mu.Unlock()
	s.subs.notify()
}

func (s *ChatSession) release() {
	s.mu.Lock()
	s.inflight--
	s.mu.Unlock()
	s.subs.notify()
}

// Busy reports whether a query is in flight.
func (s *ChatSession) Busy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

// RequiresModel reports whether submits need a model identifier.
func (s *ChatSession) RequiresModel() bool { return s.requireModel }

// Messages returns a copy of the history in append order.
func (s *ChatSession) Messages() []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Message(nil), s.messages...)
}
