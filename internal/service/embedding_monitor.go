package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ragdesk/internal/domain"
)

// EmbeddingJobMonitor starts the server-side embedding job and follows its
// log stream. A run ends only when the stream does: on the sentinel, on a
// transport fault, or when the context given to Start is cancelled.
type EmbeddingJobMonitor struct {
	streamer domain.EmbedStreamer
	notifier domain.Notifier
	log      *zap.Logger

	mu      sync.RWMutex
	running bool
	logs    []string
	runID   string
	lastErr error
	done    chan struct{}
	subs    subscribers
}

func NewEmbeddingJobMonitor(streamer domain.EmbedStreamer, notifier domain.Notifier, log *zap.Logger) *EmbeddingJobMonitor {
	if log == nil {
		log = zap.NewNop()
	}
	return &EmbeddingJobMonitor{streamer: streamer, notifier: orNop(notifier), log: log}
}

// Subscribe registers fn to run after every state change.
func (m *EmbeddingJobMonitor) Subscribe(fn func()) (cancel func()) { return m.subs.add(fn) }

// Start launches a run in the background and clears the previous logs.
// It reports false, changing nothing, when a run is already in progress.
func (m *EmbeddingJobMonitor) Start(ctx context.Context) bool {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return false
	}
	m.running = true
	m.logs = nil
	m.lastErr = nil
	m.runID = uuid.NewString()
	m.done = make(chan struct{})
	runID, done := m.runID, m.done
	m.mu.Unlock()

	m.subs.notify()
	go m.run(ctx, runID, done)
	return true
}

func (m *EmbeddingJobMonitor) run(ctx context.Context, runID string, done chan struct{}) {
	defer close(done)
	log := m.log.With(zap.String("run_id", runID))
	log.Info("embedding started")

	stream, err := m.streamer.EmbedStream(ctx)
	if err != nil {
		m.fail(log, err)
		return
	}
	for stream.Next() {
		line := stream.Line()
		log.Debug("embedding log", zap.String("line", line))
		m.mu.Lock()
		m.logs = append(m.logs, line)
		m.mu.Unlock()
		m.subs.notify()
	}
	err = stream.Err()
	_ = stream.Close()
	if err != nil {
		m.fail(log, err)
		return
	}

	m.mu.Lock()
	m.running = false
	lines := len(m.logs)
	m.mu.Unlock()
	log.Info("embedding finished", zap.Int("lines", lines))
	notifySuccess(m.notifier, "Vector store created successfully!")
	m.subs.notify()
}

func (m *EmbeddingJobMonitor) fail(log *zap.Logger, err error) {
	m.mu.Lock()
	m.running = false
	m.lastErr = err
	m.mu.Unlock()
	log.Error("embedding stream failed", zap.Error(err))
	notifyError(m.notifier, "Embedding failed, connection interrupted.")
	m.subs.notify()
}

// Wait blocks until the current run, if any, has finished.
func (m *EmbeddingJobMonitor) Wait() {
	m.mu.RLock()
	done := m.done
	m.mu.RUnlock()
	if done != nil {
		<-done
	}
}

// Running reports whether a run is in progress.
func (m *EmbeddingJobMonitor) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// Logs returns the lines received by the current or last run.
func (m *EmbeddingJobMonitor) Logs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.logs...)
}

// LastError is the fault that ended the last run, or nil.
func (m *EmbeddingJobMonitor) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// RunID identifies the current or last run.
func (m *EmbeddingJobMonitor) RunID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.runID
}
