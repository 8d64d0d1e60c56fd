package tutor

import (
	"context"
	"log"

	"github.com/ib-tutor/backend/internal/models"
)

// Per-mode completion settings. Evaluation runs colder than dialogue so
// judgments stay consistent across attempts.
var (
	chatOptions = CompletionOptions{Temperature: 0.7, MaxTokens: 500, ResponseFormat: FormatFreeText}
	hintOptions = CompletionOptions{Temperature: 0.7, MaxTokens: 200, ResponseFormat: FormatFreeText}
	evalOptions = CompletionOptions{Temperature: 0.3, MaxTokens: 1024, ResponseFormat: FormatStructuredJSON}
)

// ProgressRecorder applies a parsed Evaluation to the durable per-question
// and per-user records.
type ProgressRecorder interface {
	RecordAttempt(ctx context.Context, userID, questionID int64, eval models.Evaluation, userAnswer string) (*models.ProgressRecord, *models.StatsRecord, error)
}

// RetryQueue accepts attempts whose persistence failed, for out-of-band
// replay. Enqueued attempts must eventually be recorded or logged loudly.
type RetryQueue interface {
	EnqueueAttempt(userID, questionID int64, eval models.Evaluation, userAnswer string) error
}

// Service sequences the tutoring pipeline. It holds no per-call state:
// conversation history arrives from the caller on every request.
type Service struct {
	client   Client
	progress ProgressRecorder
	retry    RetryQueue
}

func NewService(client Client, progress ProgressRecorder, retry RetryQueue) *Service {
	return &Service{client: client, progress: progress, retry: retry}
}

// Chat answers one open-dialogue tutoring turn. No state is persisted.
func (s *Service) Chat(ctx context.Context, history []models.Message, question *models.Question, userAnswer string) (string, error) {
	messages := ComposeTutorContext(history, question, userAnswer)
	return s.client.Complete(ctx, messages, chatOptions)
}

// Hint produces one incremental guiding step. No state is persisted.
func (s *Service) Hint(ctx context.Context, question *models.Question, history []models.Message) (string, error) {
	messages := ComposeHintPrompt(question, history)
	return s.client.Complete(ctx, messages, hintOptions)
}

// Evaluate judges an answer and records the attempt. The returned bool
// reports whether the attempt was durably persisted.
//
// Failure policy: a backend failure degrades to the default Evaluation and
// records nothing (no judgment was actually made). Malformed backend text
// parses to defaults and is recorded like any other attempt. A persistence
// failure never hides the Evaluation from the learner: the attempt is handed
// to the retry queue and the caller sees persisted=false.
func (s *Service) Evaluate(ctx context.Context, userID int64, question *models.Question, userAnswer string) (models.Evaluation, bool, error) {
	messages := ComposeEvaluationPrompt(question, userAnswer)

	raw, err := s.client.Complete(ctx, messages, evalOptions)
	if err != nil {
		if ctx.Err() != nil {
			// Caller cancelled before the backend responded; leave no trace.
			return models.Evaluation{}, false, ctx.Err()
		}
		log.Printf("WARN: evaluation backend call failed: %v", err)
		return DefaultEvaluation(), false, nil
	}

	eval := ParseEvaluation(raw)

	if _, _, err := s.progress.RecordAttempt(ctx, userID, question.ID, eval, userAnswer); err != nil {
		log.Printf("ERROR: failed to persist attempt user=%d question=%d: %v", userID, question.ID, err)
		if s.retry != nil {
			if qerr := s.retry.EnqueueAttempt(userID, question.ID, eval, userAnswer); qerr != nil {
				log.Printf("ERROR: failed to queue attempt replay user=%d question=%d: %v", userID, question.ID, qerr)
			}
		}
		return eval, false, nil
	}

	return eval, true, nil
}
