// Package usecases contains application business rules.
// Usecases own the client-side state and depend only on port interfaces.
package usecases

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/0xcro3dile/docinsight-go/internal/domain/entities"
	"github.com/0xcro3dile/docinsight-go/internal/domain/ports"
)

const (
	msgUploadFailed = "Failed to upload documents"
	msgClearFailed  = "Failed to clear documents"
	msgCleared      = "All documents cleared"

	// ClearPrompt is shown to the confirmer before the corpus is dropped.
	ClearPrompt = "Are you sure you want to clear all documents?"
)

// DocumentSessionUseCase owns the staged files, corpus readiness and the last
// upload status. It drives the upload and clear calls of the document service.
type DocumentSessionUseCase struct {
	service ports.DocumentService
	loader  ports.DocumentLoader
	confirm ports.Confirmer
	log     *zap.Logger

	mu           sync.Mutex
	pending      []stagedFile
	nextID       uint64
	hasDocuments bool
	isUploading  bool
	isClearing   bool
	status       *entities.UploadStatus

	observers observers
}

// stagedFile tags a pending file so a finished upload removes exactly what it sent.
type stagedFile struct {
	id   uint64
	file entities.PendingFile
}

// NewDocumentSessionUseCase creates a DocumentSessionUseCase with injected dependencies.
// An untyped nil confirmer declines every clear request.
func NewDocumentSessionUseCase(
	service ports.DocumentService,
	loader ports.DocumentLoader,
	confirm ports.Confirmer,
	log *zap.Logger,
) *DocumentSessionUseCase {
	if log == nil {
		log = zap.NewNop()
	}
	return &DocumentSessionUseCase{
		service: service,
		loader:  loader,
		confirm: confirm,
		log:     log.Named("documents"),
	}
}

// Subscribe registers fn to run after every state change.
func (uc *DocumentSessionUseCase) Subscribe(fn func()) {
	uc.observers.add(fn)
}

// Stage appends files to the pending selection.
func (uc *DocumentSessionUseCase) Stage(files ...entities.PendingFile) {
	if len(files) == 0 {
		return
	}
	uc.mu.Lock()
	for _, f := range files {
		uc.nextID++
		uc.pending = append(uc.pending, stagedFile{id: uc.nextID, file: f})
	}
	uc.mu.Unlock()

	uc.log.Debug("files staged", zap.Int("count", len(files)))
	uc.observers.notify()
}

// StagePaths loads files from disk and stages them in order.
// Nothing is staged if any path fails to load.
func (uc *DocumentSessionUseCase) StagePaths(ctx context.Context, paths ...string) (int, error) {
	if len(paths) == 0 {
		return 0, nil
	}
	if uc.loader == nil {
		return 0, fmt.Errorf("staging paths: no document loader configured")
	}
	files, err := uc.loader.LoadAll(ctx, paths)
	if err != nil {
		return 0, fmt.Errorf("staging paths: %w", err)
	}
	uc.Stage(files...)
	return len(files), nil
}

// Retract removes the staged file at index. Out of range is a no-op.
func (uc *DocumentSessionUseCase) Retract(index int) {
	uc.mu.Lock()
	if index < 0 || index >= len(uc.pending) {
		uc.mu.Unlock()
		return
	}
	uc.pending = append(uc.pending[:index:index], uc.pending[index+1:]...)
	uc.mu.Unlock()

	uc.observers.notify()
}

// Pending returns a copy of the staged selection.
func (uc *DocumentSessionUseCase) Pending() []entities.PendingFile {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	out := make([]entities.PendingFile, len(uc.pending))
	for i, s := range uc.pending {
		out[i] = s.file
	}
	return out
}

// HasDocuments reports whether an indexed corpus is available.
func (uc *DocumentSessionUseCase) HasDocuments() bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.hasDocuments
}

// IsUploading reports whether an upload is outstanding.
func (uc *DocumentSessionUseCase) IsUploading() bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.isUploading
}

// IsClearing reports whether a clear is outstanding.
func (uc *DocumentSessionUseCase) IsClearing() bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.isClearing
}

// Status returns the last upload or clear status, if one exists.
func (uc *DocumentSessionUseCase) Status() (entities.UploadStatus, bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.status == nil {
		return entities.UploadStatus{}, false
	}
	return *uc.status, true
}

// Commit submits the whole pending selection.
// It is skipped when nothing is staged or another upload or clear is outstanding.
// The selection is kept on failure so it can be resubmitted. Files staged while
// the upload is outstanding stay pending after it succeeds.
func (uc *DocumentSessionUseCase) Commit(ctx context.Context) entities.Outcome {
	uc.mu.Lock()
	if len(uc.pending) == 0 || uc.isUploading || uc.isClearing {
		uc.mu.Unlock()
		return entities.OutcomeSkipped
	}
	files := make([]entities.PendingFile, len(uc.pending))
	sent := make(map[uint64]struct{}, len(uc.pending))
	for i, s := range uc.pending {
		files[i] = s.file
		sent[s.id] = struct{}{}
	}
	uc.isUploading = true
	uc.status = nil
	uc.mu.Unlock()
	uc.observers.notify()

	uc.log.Info("uploading documents", zap.Int("files", len(files)))
	result, err := uc.service.SubmitDocuments(ctx, files)

	uc.mu.Lock()
	uc.isUploading = false
	outcome := entities.OutcomeSucceeded
	if err != nil {
		outcome = entities.OutcomeFailed
		uc.status = &entities.UploadStatus{
			Kind:    entities.StatusError,
			Message: failureMessage(err, msgUploadFailed),
		}
	} else {
		if result == nil {
			result = &entities.UploadResult{}
		}
		uc.hasDocuments = true
		uc.pending = unsent(uc.pending, sent)
		uc.status = &entities.UploadStatus{
			Kind:    entities.StatusSuccess,
			Message: fmt.Sprintf("Successfully uploaded %d file(s) with %d chunks", len(result.Files), result.Chunks),
		}
	}
	uc.mu.Unlock()

	if err != nil {
		uc.log.Warn("upload failed", zap.Error(err))
	} else {
		uc.log.Info("documents uploaded", zap.Int("files", len(result.Files)), zap.Int("chunks", result.Chunks))
	}
	uc.observers.notify()
	return outcome
}

func unsent(pending []stagedFile, sent map[uint64]struct{}) []stagedFile {
	var kept []stagedFile
	for _, s := range pending {
		if _, ok := sent[s.id]; !ok {
			kept = append(kept, s)
		}
	}
	return kept
}

// Clear drops the remote corpus after the confirmer approves.
// It is skipped when declined or when another upload or clear is outstanding.
func (uc *DocumentSessionUseCase) Clear(ctx context.Context) entities.Outcome {
	if uc.busy() {
		return entities.OutcomeSkipped
	}
	if uc.confirm == nil || !uc.confirm.Confirm(ctx, ClearPrompt) {
		uc.log.Debug("clear declined")
		return entities.OutcomeSkipped
	}

	uc.mu.Lock()
	if uc.isUploading || uc.isClearing {
		uc.mu.Unlock()
		return entities.OutcomeSkipped
	}
	uc.isClearing = true
	uc.mu.Unlock()
	uc.observers.notify()

	err := uc.service.ClearCorpus(ctx)

	uc.mu.Lock()
	uc.isClearing = false
	outcome := entities.OutcomeSucceeded
	if err != nil {
		outcome = entities.OutcomeFailed
		uc.status = &entities.UploadStatus{
			Kind:    entities.StatusError,
			Message: failureMessage(err, msgClearFailed),
		}
	} else {
		uc.hasDocuments = false
		uc.status = &entities.UploadStatus{Kind: entities.StatusSuccess, Message: msgCleared}
	}
	uc.mu.Unlock()

	if err != nil {
		uc.log.Warn("clear failed", zap.Error(err))
	} else {
		uc.log.Info("corpus cleared")
	}
	uc.observers.notify()
	return outcome
}

func (uc *DocumentSessionUseCase) busy() bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.isUploading || uc.isClearing
}

// failureMessage prefers the service supplied detail over the generic text.
func failureMessage(err error, fallback string) string {
	if detail, ok := entities.RemoteDetail(err); ok {
		return detail
	}
	return fallback
}
