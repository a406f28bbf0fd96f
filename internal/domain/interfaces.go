package domain

import "context"

// FileStore is the backend surface used by the file registry.
type FileStore interface {
	ListFiles(ctx context.Context) ([]FileInfo, error)
	Upload(ctx context.Context, files []Upload) error
	Delete(ctx context.Context, name string) error
}

// Answerer runs a retrieval query against the backend.
type Answerer interface {
	Query(ctx context.Context, req QueryRequest) (AnswerResponse, error)
}

// ModelLister lists the language models the backend can answer with.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// LogStream is a lazy, non-restartable sequence of log lines. Next returns
// false once the completion sentinel arrives (Err is nil) or the transport
// fails (Err is non-nil).
type LogStream interface {
	Next() bool
	Line() string
	Err() error
	Close() error
}

// EmbedStreamer opens the server-side embedding job log stream.
type EmbedStreamer interface {
	EmbedStream(ctx context.Context) (LogStream, error)
}

// Level classifies a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notification is a transient user-visible message.
type Notification struct {
	Level   Level
	Message string
}

// Notifier surfaces notifications to the user.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }
