package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"ragdesk/internal/domain"
)

// Console prints notifications to a terminal, colored by level.
type Console struct {
	mu      sync.Mutex
	w       io.Writer
	success *color.Color
	failure *color.Color
	info    *color.Color
}

func NewConsole(w io.Writer) *Console {
	return &Console{
		w:       w,
		success: color.New(color.FgGreen, color.Bold),
		failure: color.New(color.FgRed, color.Bold),
		info:    color.New(color.FgCyan),
	}
}

func (c *Console) Notify(n domain.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch n.Level {
	case domain.LevelSuccess:
		c.success.Fprintf(c.w, "✓ %s\n", n.Message)
	case domain.LevelError:
		c.failure.Fprintf(c.w, "✗ %s\n", n.Message)
	default:
		c.info.Fprintf(c.w, "• %s\n", n.Message)
	}
}

// Recorder keeps every notification it receives.
type Recorder struct {
	mu  sync.Mutex
	all []domain.Notification
}

func (r *Recorder) Notify(n domain.Notification) {
	r.mu.Lock()
	r.all = append(r.all, n)
	r.mu.Unlock()
}

// All returns the notifications received so far, oldest first.
func (r *Recorder) All() []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Notification(nil), r.all...)
}

// Messages returns the text of the notifications with the given level.
func (r *Recorder) Messages(level domain.Level) []string {
	var out []string
	for _, n := range r.All() {
		if n.Level == level {
			out = append(out, n.Message)
		}
	}
	return out
}

// Multi delivers each notification to every target in order.
func Multi(targets ...domain.Notifier) domain.Notifier {
	return domain.NotifierFunc(func(n domain.Notification) {
		for _, t := range targets {
			if t != nil {
				t.Notify(n)
			}
		}
	})
}

// Logged records each notification in log before passing it to next.
func Logged(next domain.Notifier, log *zap.Logger) domain.Notifier {
	return domain.NotifierFunc(func(n domain.Notification) {
		log.Info("notification", zap.Stringer("level", n.Level), zap.String("message", n.Message))
		next.Notify(n)
	})
}

// Errorf builds an error notification.
func Errorf(format string, args ...any) domain.Notification {
	return domain.Notification{Level: domain.LevelError, Message: fmt.Sprintf(format, args...)}
}
