package usecases

import (
	"context"
	"fmt"
	"sync"

	"github.com/0xcro3dile/docinsight-go/internal/domain/entities"
)

// mockDocumentService implements ports.DocumentService for testing
type mockDocumentService struct {
	mu sync.Mutex

	submitFn func(files []entities.PendingFile) (*entities.UploadResult, error)
	askFn    func(question string) (*entities.Answer, error)
	clearFn  func() error

	submitted   [][]entities.PendingFile
	questions   []string
	clearCalls  int
	healthCalls int
}

func (m *mockDocumentService) SubmitDocuments(ctx context.Context, files []entities.PendingFile) (*entities.UploadResult, error) {
	m.mu.Lock()
	m.submitted = append(m.submitted, files)
	fn := m.submitFn
	m.mu.Unlock()

	if fn != nil {
		return fn(files)
	}
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return &entities.UploadResult{Files: names, Chunks: len(files)}, nil
}

func (m *mockDocumentService) AskQuestion(ctx context.Context, question string) (*entities.Answer, error) {
	m.mu.Lock()
	m.questions = append(m.questions, question)
	fn := m.askFn
	m.mu.Unlock()

	if fn != nil {
		return fn(question)
	}
	return &entities.Answer{Answer: "mocked answer"}, nil
}

func (m *mockDocumentService) ClearCorpus(ctx context.Context) error {
	m.mu.Lock()
	m.clearCalls++
	fn := m.clearFn
	m.mu.Unlock()

	if fn != nil {
		return fn()
	}
	return nil
}

func (m *mockDocumentService) CheckHealth(ctx context.Context) (entities.HealthStatus, error) {
	m.mu.Lock()
	m.healthCalls++
	m.mu.Unlock()
	return entities.HealthStatus{"status": "healthy"}, nil
}

func (m *mockDocumentService) submitCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.submitted)
}

func (m *mockDocumentService) askCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.questions)
}

func (m *mockDocumentService) clearCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clearCalls
}

// mockLoader implements ports.DocumentLoader for testing
type mockLoader struct {
	missing map[string]bool
}

func (m *mockLoader) Load(ctx context.Context, path string) (*entities.PendingFile, error) {
	if m.missing[path] {
		return nil, fmt.Errorf("open %s: no such file", path)
	}
	return &entities.PendingFile{Name: path, Path: path, Content: []byte(path)}, nil
}

func (m *mockLoader) LoadAll(ctx context.Context, paths []string) ([]entities.PendingFile, error) {
	out := make([]entities.PendingFile, 0, len(paths))
	for _, p := range paths {
		f, err := m.Load(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, nil
}

func (m *mockLoader) SupportedExtensions() []string {
	return []string{".txt"}
}

// staticReadiness implements ports.CorpusReadiness for testing
type staticReadiness bool

func (r staticReadiness) HasDocuments() bool {
	return bool(r)
}

// confirmer answers every prompt the same way and counts prompts
type confirmer struct {
	answer  bool
	prompts int
}

func (c *confirmer) Confirm(ctx context.Context, prompt string) bool {
	c.prompts++
	return c.answer
}

func file(name string) entities.PendingFile {
	return entities.PendingFile{Name: name, Content: []byte("content of " + name)}
}

func names(files []entities.PendingFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Name
	}
	return out
}
