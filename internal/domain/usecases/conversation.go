package usecases

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/0xcro3dile/docinsight-go/internal/domain/entities"
	"github.com/0xcro3dile/docinsight-go/internal/domain/ports"
)

// QueryFailedMessage is the transcript text for any failed question.
const QueryFailedMessage = "Failed to get response. Please try again."

// ConversationUseCase owns the transcript and drives the query call.
// At most one question is outstanding at a time.
type ConversationUseCase struct {
	service   ports.DocumentService
	readiness ports.CorpusReadiness
	log       *zap.Logger

	mu         sync.Mutex
	transcript []entities.ChatMessage
	isQuerying bool

	observers observers
}

// NewConversationUseCase creates a ConversationUseCase with injected dependencies.
func NewConversationUseCase(
	service ports.DocumentService,
	readiness ports.CorpusReadiness,
	log *zap.Logger,
) *ConversationUseCase {
	if log == nil {
		log = zap.NewNop()
	}
	return &ConversationUseCase{
		service:   service,
		readiness: readiness,
		log:       log.Named("conversation"),
	}
}

// Subscribe registers fn to run after every state change.
func (uc *ConversationUseCase) Subscribe(fn func()) {
	uc.observers.add(fn)
}

// Ask appends the question and the service's answer to the transcript.
// Blank questions, a missing corpus or an outstanding query skip the call entirely.
func (uc *ConversationUseCase) Ask(ctx context.Context, question string) entities.Outcome {
	if strings.TrimSpace(question) == "" || !uc.readiness.HasDocuments() {
		return entities.OutcomeSkipped
	}

	uc.mu.Lock()
	if uc.isQuerying {
		uc.mu.Unlock()
		return entities.OutcomeSkipped
	}
	uc.transcript = append(uc.transcript, entities.NewChatMessage(entities.RoleUser, question, nil))
	uc.isQuerying = true
	uc.mu.Unlock()
	uc.observers.notify()

	answer, err := uc.service.AskQuestion(ctx, question)

	uc.mu.Lock()
	outcome := entities.OutcomeSucceeded
	if err != nil || answer == nil {
		outcome = entities.OutcomeFailed
		uc.transcript = append(uc.transcript, entities.NewChatMessage(entities.RoleError, QueryFailedMessage, nil))
	} else {
		sources := make([]string, len(answer.Sources))
		copy(sources, answer.Sources)
		uc.transcript = append(uc.transcript, entities.NewChatMessage(entities.RoleAssistant, answer.Answer, sources))
	}
	uc.isQuerying = false
	uc.mu.Unlock()

	if outcome == entities.OutcomeFailed {
		uc.log.Warn("query failed", zap.Error(err))
	} else {
		uc.log.Debug("query answered", zap.Int("sources", len(answer.Sources)))
	}
	uc.observers.notify()
	return outcome
}

// Transcript returns a copy of the conversation in insertion order.
func (uc *ConversationUseCase) Transcript() []entities.ChatMessage {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	out := make([]entities.ChatMessage, len(uc.transcript))
	for i, m := range uc.transcript {
		if m.Sources != nil {
			sources := make([]string, len(m.Sources))
			copy(sources, m.Sources)
			m.Sources = sources
		}
		out[i] = m
	}
	return out
}

// IsQuerying reports whether a question is outstanding.
func (uc *ConversationUseCase) IsQuerying() bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.isQuerying
}
