// Package entities contains core business entities.
// These are plain domain objects shared by the controllers and the service client adapter.
package entities

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies who produced a transcript turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleError     Role = "error"
)

// ChatMessage represents one turn in the transcript.
// Sources is only set on assistant turns.
type ChatMessage struct {
	ID        string
	Role      Role
	Content   string
	Sources   []string
	CreatedAt time.Time
}

// NewChatMessage creates a message with a fresh ID.
func NewChatMessage(role Role, content string, sources []string) ChatMessage {
	return ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Sources:   sources,
		CreatedAt: time.Now(),
	}
}

// StatusKind is the outcome class of the last upload or clear.
type StatusKind string

const (
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

// UploadStatus is the banner derived from the last completed upload or clear.
type UploadStatus struct {
	Kind    StatusKind
	Message string
}

// PendingFile is a selected document that has not been submitted yet.
type PendingFile struct {
	Name        string
	Path        string // empty for in-memory files
	Content     []byte
	ContentType string
}

// Size returns the payload length in bytes.
func (f PendingFile) Size() int {
	return len(f.Content)
}

// UploadResult is what the service reports after accepting documents.
type UploadResult struct {
	Files  []string
	Chunks int
}

// Answer is the service's reply to a question.
type Answer struct {
	Answer  string
	Sources []string
}

// HealthStatus is the opaque payload returned by the liveness probe.
type HealthStatus map[string]any

// Outcome tells callers what a controller operation did.
type Outcome int

const (
	// OutcomeSkipped means a precondition was unmet and nothing happened.
	OutcomeSkipped Outcome = iota
	OutcomeSucceeded
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	default:
		return "skipped"
	}
}
