package domain

import (
	"fmt"
	"io"

	"github.com/google/uuid"
)

// DefaultTopK is the number of source chunks requested for every query.
const DefaultTopK = 6

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser Role = "user"
	RoleAI   Role = "ai"
)

// SourceDocument is a retrieved chunk cited by an answer.
type SourceDocument struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
	Score    float64        `json:"score"`
}

// Source returns the document origin recorded in the metadata, or "Unknown".
func (s SourceDocument) Source() string {
	if v, ok := s.Metadata["source"]; ok && v != nil {
		if str := fmt.Sprint(v); str != "" {
			return str
		}
	}
	return "Unknown"
}

// Message is one turn of the conversation. Messages are never mutated after being appended.
type Message struct {
	ID      string
	Role    Role
	Content string
	Sources []SourceDocument
}

// NewUserMessage builds a user turn.
func NewUserMessage(content string) Message {
	return Message{ID: uuid.NewString(), Role: RoleUser, Content: content}
}

// NewAIMessage builds an assistant turn. Sources may be nil.
func NewAIMessage(content string, sources []SourceDocument) Message {
	return Message{ID: uuid.NewString(), Role: RoleAI, Content: content, Sources: sources}
}

// FileInfo describes a document stored by the backend. Name is its unique key.
type FileInfo struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Upload is a local blob to be sent to the backend.
type Upload struct {
	Name    string
	Content io.Reader
}

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Query       string   `json:"query"`
	TopK        int      `json:"top_k"`
	FileFilters []string `json:"file_filters"`
	Model       string   `json:"model,omitempty"`
}

// AnswerResponse is the backend reply to a single query.
type AnswerResponse struct {
	Answer  string           `json:"answer"`
	Sources []SourceDocument `json:"sources"`
}
