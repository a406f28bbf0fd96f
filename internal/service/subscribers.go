package service

import (
	"fmt"
	"sync"

	"ragdesk/internal/domain"
)

// subscribers fans state-change signals out to renderers. Callbacks run
// synchronously on the goroutine that changed the state, after its lock is
// released, so they may read snapshots.
type subscribers struct {
	mu   sync.Mutex
	next int
	fns  map[int]func()
}

func (s *subscribers) add(fn func()) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fns == nil {
		s.fns = map[int]func(){}
	}
	id := s.next
	s.next++
	s.fns[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.fns, id)
		s.mu.Unlock()
	}
}

func (s *subscribers) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.fns))
	for _, fn := range s.fns {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func notifyError(n domain.Notifier, format string, args ...any) {
	n.Notify(domain.Notification{Level: domain.LevelError, Message: fmt.Sprintf(format, args...)})
}

func notifySuccess(n domain.Notifier, format string, args ...any) {
	n.Notify(domain.Notification{Level: domain.LevelSuccess, Message: fmt.Sprintf(format, args...)})
}

func orNop(n domain.Notifier) domain.Notifier {
	if n == nil {
		return domain.NotifierFunc(func(domain.Notification) {})
	}
	return n
}
