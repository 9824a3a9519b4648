// Package ports defines interfaces for external dependencies.
// Usecases depend on these abstractions; adapters implement them.
package ports

import (
	"context"

	"github.com/0xcro3dile/docinsight-go/internal/domain/entities"
)

// DocumentService is the remote document-processing service.
// Every call is a single round trip: no retries, no caching.
type DocumentService interface {
	// SubmitDocuments uploads files in one request for indexing.
	SubmitDocuments(ctx context.Context, files []entities.PendingFile) (*entities.UploadResult, error)

	// AskQuestion asks a question against the indexed corpus.
	AskQuestion(ctx context.Context, question string) (*entities.Answer, error)

	// ClearCorpus drops every indexed document.
	ClearCorpus(ctx context.Context) error

	// CheckHealth is a liveness probe.
	CheckHealth(ctx context.Context) (entities.HealthStatus, error)
}

// CorpusReadiness reports whether questions can be asked.
type CorpusReadiness interface {
	HasDocuments() bool
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// DocumentLoader reads local files into pending uploads.
type DocumentLoader interface {
	// Load reads one file.
	Load(ctx context.Context, path string) (*entities.PendingFile, error)

	// LoadAll reads several files, preserving order.
	LoadAll(ctx context.Context, paths []string) ([]entities.PendingFile, error)

	// SupportedExtensions returns the advisory upload categories.
	SupportedExtensions() []string
}

// FileWatcher monitors a directory for changes.
type FileWatcher interface {
	// Watch starts monitoring the directory and emits events.
	Watch(ctx context.Context, dir string) (<-chan FileEvent, error)

	// Stop stops the watcher.
	Stop() error
}

// FileEvent represents a file system change.
type FileEvent struct {
	Path      string
	Operation FileOperation
}

// FileOperation is the type of file change.
type FileOperation int

const (
	FileCreated FileOperation = iota
	FileModified
	FileDeleted
)
