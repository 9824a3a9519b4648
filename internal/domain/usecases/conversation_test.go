package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xcro3dile/docinsight-go/internal/domain/entities"
)

// Scenario: no corpus, question is ignored.
func TestConversation_NoDocumentsIsSkipped(t *testing.T) {
	svc := &mockDocumentService{}
	uc := NewConversationUseCase(svc, staticReadiness(false), nil)

	for _, q := range []string{"What is X?", "Total?", "  padded  "} {
		assert.Equal(t, entities.OutcomeSkipped, uc.Ask(context.Background(), q))
	}

	assert.Empty(t, uc.Transcript())
	assert.Zero(t, svc.askCount())
}

func TestConversation_BlankQuestionIsSkipped(t *testing.T) {
	svc := &mockDocumentService{}
	uc := NewConversationUseCase(svc, staticReadiness(true), nil)

	for _, q := range []string{"", " ", "\t\n"} {
		assert.Equal(t, entities.OutcomeSkipped, uc.Ask(context.Background(), q))
	}

	assert.Empty(t, uc.Transcript())
	assert.Zero(t, svc.askCount())
}

// Scenario: answered question.
func TestConversation_AskSuccess(t *testing.T) {
	svc := &mockDocumentService{
		askFn: func(q string) (*entities.Answer, error) {
			return &entities.Answer{Answer: "42", Sources: []string{"doc.pdf p.3"}}, nil
		},
	}
	uc := NewConversationUseCase(svc, staticReadiness(true), nil)

	outcome := uc.Ask(context.Background(), "Total?")

	require.Equal(t, entities.OutcomeSucceeded, outcome)
	transcript := uc.Transcript()
	require.Len(t, transcript, 2)

	assert.Equal(t, entities.RoleUser, transcript[0].Role)
	assert.Equal(t, "Total?", transcript[0].Content)
	assert.Nil(t, transcript[0].Sources)

	assert.Equal(t, entities.RoleAssistant, transcript[1].Role)
	assert.Equal(t, "42", transcript[1].Content)
	assert.Equal(t, []string{"doc.pdf p.3"}, transcript[1].Sources)

	assert.Equal(t, []string{"Total?"}, svc.questions)
	assert.False(t, uc.IsQuerying())
}

func TestConversation_QuestionIsSentVerbatim(t *testing.T) {
	svc := &mockDocumentService{}
	uc := NewConversationUseCase(svc, staticReadiness(true), nil)

	uc.Ask(context.Background(), "  spaced question  ")

	assert.Equal(t, []string{"  spaced question  "}, svc.questions)
	assert.Equal(t, "  spaced question  ", uc.Transcript()[0].Content)
}

func TestConversation_AssistantWithoutSources(t *testing.T) {
	svc := &mockDocumentService{
		askFn: func(q string) (*entities.Answer, error) {
			return &entities.Answer{Answer: "no sources"}, nil
		},
	}
	uc := NewConversationUseCase(svc, staticReadiness(true), nil)

	uc.Ask(context.Background(), "q")

	msg := uc.Transcript()[1]
	assert.Equal(t, entities.RoleAssistant, msg.Role)
	assert.NotNil(t, msg.Sources)
	assert.Empty(t, msg.Sources)
}

// Scenario: service failure becomes a fixed error turn.
func TestConversation_AskFailure(t *testing.T) {
	failures := []error{
		&entities.RemoteError{Op: "query", Status: 500, Detail: "internal stack trace"},
		&entities.RemoteError{Op: "query", Status: 400, Detail: "No documents uploaded yet"},
		&entities.TransportError{Op: "query", Err: errors.New("connection reset")},
	}

	for _, failure := range failures {
		svc := &mockDocumentService{
			askFn: func(q string) (*entities.Answer, error) { return nil, failure },
		}
		uc := NewConversationUseCase(svc, staticReadiness(true), nil)

		outcome := uc.Ask(context.Background(), "Q")

		assert.Equal(t, entities.OutcomeFailed, outcome)
		transcript := uc.Transcript()
		require.Len(t, transcript, 2)
		assert.Equal(t, entities.RoleUser, transcript[0].Role)
		assert.Equal(t, "Q", transcript[0].Content)
		assert.Equal(t, entities.RoleError, transcript[1].Role)
		assert.Equal(t, QueryFailedMessage, transcript[1].Content)
		assert.Nil(t, transcript[1].Sources)
		assert.False(t, uc.IsQuerying())
	}
}

func TestConversation_TranscriptGrowsByTwoPerQuestion(t *testing.T) {
	calls := 0
	svc := &mockDocumentService{
		askFn: func(q string) (*entities.Answer, error) {
			calls++
			if calls%2 == 0 {
				return nil, errors.New("boom")
			}
			return &entities.Answer{Answer: "a:" + q}, nil
		},
	}
	uc := NewConversationUseCase(svc, staticReadiness(true), nil)

	questions := []string{"one", "two", "three", "four"}
	for i, q := range questions {
		uc.Ask(context.Background(), q)
		assert.Len(t, uc.Transcript(), 2*(i+1))
	}

	transcript := uc.Transcript()
	for i, q := range questions {
		assert.Equal(t, q, transcript[2*i].Content)
		assert.Equal(t, entities.RoleUser, transcript[2*i].Role)
	}
	assert.Equal(t, entities.RoleAssistant, transcript[1].Role)
	assert.Equal(t, entities.RoleError, transcript[3].Role)
}

func TestConversation_AskIsSingleFlight(t *testing.T) {
	release := make(chan struct{})
	svc := &mockDocumentService{
		askFn: func(q string) (*entities.Answer, error) {
			<-release
			return &entities.Answer{Answer: "done"}, nil
		},
	}
	uc := NewConversationUseCase(svc, staticReadiness(true), nil)

	done := make(chan entities.Outcome)
	go func() { done <- uc.Ask(context.Background(), "first") }()

	require.Eventually(t, uc.IsQuerying, time.Second, 5*time.Millisecond)
	assert.Equal(t, entities.OutcomeSkipped, uc.Ask(context.Background(), "second"))
	assert.Len(t, uc.Transcript(), 1, "only the first user turn is recorded")

	close(release)
	assert.Equal(t, entities.OutcomeSucceeded, <-done)
	assert.Equal(t, 1, svc.askCount())
	assert.Len(t, uc.Transcript(), 2)
}

func TestConversation_TranscriptIsACopy(t *testing.T) {
	svc := &mockDocumentService{
		askFn: func(q string) (*entities.Answer, error) {
			return &entities.Answer{Answer: "a", Sources: []string{"s1"}}, nil
		},
	}
	uc := NewConversationUseCase(svc, staticReadiness(true), nil)
	uc.Ask(context.Background(), "q")

	first := uc.Transcript()
	first[1].Sources[0] = "mutated"
	first[0].Content = "mutated"

	second := uc.Transcript()
	assert.Equal(t, "s1", second[1].Sources[0])
	assert.Equal(t, "q", second[0].Content)
}

// Scenario: after a clear, questions are ignored again.
func TestConversation_ClearedCorpusBlocksQuestions(t *testing.T) {
	svc := &mockDocumentService{}
	docs := NewDocumentSessionUseCase(svc, nil, &confirmer{answer: true}, nil)
	chat := NewConversationUseCase(svc, docs, nil)

	docs.Stage(file("a.pdf"))
	require.Equal(t, entities.OutcomeSucceeded, docs.Commit(context.Background()))
	require.Equal(t, entities.OutcomeSucceeded, chat.Ask(context.Background(), "before"))

	require.Equal(t, entities.OutcomeSucceeded, docs.Clear(context.Background()))
	assert.False(t, docs.HasDocuments())
	status, _ := docs.Status()
	assert.Equal(t, entities.StatusSuccess, status.Kind)

	assert.Equal(t, entities.OutcomeSkipped, chat.Ask(context.Background(), "after"))
	assert.Len(t, chat.Transcript(), 2)
	assert.Equal(t, 1, svc.askCount())
}

func TestConversation_NotifiesObservers(t *testing.T) {
	uc := NewConversationUseCase(&mockDocumentService{}, staticReadiness(true), nil)
	var lengths []int
	uc.Subscribe(func() { lengths = append(lengths, len(uc.Transcript())) })

	uc.Ask(context.Background(), "q")

	assert.Equal(t, []int{1, 2}, lengths)
}
