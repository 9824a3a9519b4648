// Package loader provides document loading adapters.
// It reads local files into pending uploads for the document session.
package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"

	"github.com/0xcro3dile/docinsight-go/internal/domain/entities"
)

// advisoryTypes are the upload categories the service understands.
// They are a hint for file pickers and the watcher, never enforced here.
var advisoryTypes = map[string]string{
	".pdf":  "application/pdf",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".xls":  "application/vnd.ms-excel",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain; charset=utf-8",
	".csv":  "text/csv",
}

// FileLoader implements ports.DocumentLoader for the local file system.
type FileLoader struct {
	parallelism int
}

// NewFileLoader creates a loader reading at most parallelism files at once.
func NewFileLoader(parallelism int) *FileLoader {
	if parallelism <= 0 {
		parallelism = 4
	}
	return &FileLoader{parallelism: parallelism}
}

// Load reads one file into a pending upload.
func (l *FileLoader) Load(ctx context.Context, path string) (*entities.PendingFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return &entities.PendingFile{
		Name:        filepath.Base(path),
		Path:        path,
		Content:     content,
		ContentType: detectContentType(path, content),
	}, nil
}

// LoadAll reads files concurrently and returns them in input order.
// The first failure aborts the batch.
func (l *FileLoader) LoadAll(ctx context.Context, paths []string) ([]entities.PendingFile, error) {
	files := make([]entities.PendingFile, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.parallelism)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			f, err := l.Load(gctx, path)
			if err != nil {
				return fmt.Errorf("loading %s: %w", path, err)
			}
			files[i] = *f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

// SupportedExtensions returns the advisory upload extensions, sorted.
func (l *FileLoader) SupportedExtensions() []string {
	exts := make([]string, 0, len(advisoryTypes))
	for ext := range advisoryTypes {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// IsSupported reports whether path has an advisory upload extension.
func IsSupported(path string) bool {
	_, ok := advisoryTypes[strings.ToLower(filepath.Ext(path))]
	return ok
}

// detectContentType trusts known extensions and sniffs everything else.
func detectContentType(path string, content []byte) string {
	if ct, ok := advisoryTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return ct
	}
	return mimetype.Detect(content).String()
}
