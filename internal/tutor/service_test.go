package tutor

import (
	"context"
	"errors"
	"testing"

	"github.com/ib-tutor/backend/internal/models"
)

// stubClient returns a fixed completion or error and captures the last call.
type stubClient struct {
	response     string
	err          error
	lastMessages []models.Message
	lastOpts     CompletionOptions
	calls        int
}

func (c *stubClient) Complete(ctx context.Context, messages []models.Message, opts CompletionOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.calls++
	c.lastMessages = messages
	c.lastOpts = opts
	return c.response, c.err
}

func (c *stubClient) ModelName() string { return "stub" }

type recordedAttempt struct {
	userID     int64
	questionID int64
	eval       models.Evaluation
	userAnswer string
}

// memoryRecorder applies attempts in memory with the same arithmetic the
// real store runs inside its transaction.
type memoryRecorder struct {
	err      error
	attempts []recordedAttempt
	progress map[int64]*models.ProgressRecord
}

func (r *memoryRecorder) RecordAttempt(ctx context.Context, userID, questionID int64, eval models.Evaluation, userAnswer string) (*models.ProgressRecord, *models.StatsRecord, error) {
	if r.err != nil {
		return nil, nil, r.err
	}
	r.attempts = append(r.attempts, recordedAttempt{userID, questionID, eval, userAnswer})

	if r.progress == nil {
		r.progress = make(map[int64]*models.ProgressRecord)
	}
	rec, ok := r.progress[questionID]
	if !ok {
		rec = &models.ProgressRecord{UserID: userID, QuestionID: questionID}
		r.progress[questionID] = rec
	}
	rec.Attempts++
	if eval.IsCorrect {
		rec.CorrectAttempts++
	}
	rec.IsCompleted = rec.IsCompleted || eval.IsCorrect
	rec.Score = eval.Score
	rec.UserAnswer = userAnswer

	return rec, &models.StatsRecord{UserID: userID}, nil
}

type stubQueue struct {
	enqueued []recordedAttempt
}

func (q *stubQueue) EnqueueAttempt(userID, questionID int64, eval models.Evaluation, userAnswer string) error {
	q.enqueued = append(q.enqueued, recordedAttempt{userID, questionID, eval, userAnswer})
	return nil
}

func TestEvaluate_EndToEnd(t *testing.T) {
	client := &stubClient{response: `{"isCorrect":true,"score":100,"feedback":"Correct","suggestions":[]}`}
	recorder := &memoryRecorder{}
	svc := NewService(client, recorder, nil)

	question := testQuestion()
	eval, saved, err := svc.Evaluate(context.Background(), 7, question, "4")
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if !saved {
		t.Error("expected attempt to be persisted")
	}
	if !eval.IsCorrect || eval.Score != 100 || eval.Feedback != "Correct" {
		t.Errorf("unexpected evaluation: %+v", eval)
	}

	rec := recorder.progress[question.ID]
	if rec == nil || !rec.IsCompleted {
		t.Errorf("progress record should be completed, got %+v", rec)
	}
	if client.lastOpts.ResponseFormat != FormatStructuredJSON {
		t.Error("evaluation must request structured JSON output")
	}
}

func TestEvaluate_BackendFailureDegradesWithoutPersisting(t *testing.T) {
	client := &stubClient{err: ErrBackendUnavailable}
	recorder := &memoryRecorder{}
	svc := NewService(client, recorder, nil)

	eval, saved, err := svc.Evaluate(context.Background(), 7, testQuestion(), "4")
	if err != nil {
		t.Fatalf("Evaluate should not fail on backend error, got: %v", err)
	}
	if saved {
		t.Error("nothing should be persisted when the backend never judged the answer")
	}
	if eval.IsCorrect || eval.Score != 0 || eval.Feedback != "Unable to evaluate at this time." {
		t.Errorf("expected default evaluation, got %+v", eval)
	}
	if len(recorder.attempts) != 0 {
		t.Errorf("expected no recorded attempts, got %d", len(recorder.attempts))
	}
}

func TestEvaluate_MalformedBackendTextIsRecorded(t *testing.T) {
	client := &stubClient{response: "I refuse to answer in JSON"}
	recorder := &memoryRecorder{}
	svc := NewService(client, recorder, nil)

	eval, saved, err := svc.Evaluate(context.Background(), 7, testQuestion(), "4")
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if !saved {
		t.Error("a degraded-but-parsed evaluation is still an attempt and must be recorded")
	}
	if eval.IsCorrect || eval.Score != 0 {
		t.Errorf("expected default evaluation fields, got %+v", eval)
	}
	if len(recorder.attempts) != 1 {
		t.Fatalf("expected 1 recorded attempt, got %d", len(recorder.attempts))
	}
}

func TestEvaluate_PersistenceFailureQueuesRetry(t *testing.T) {
	client := &stubClient{response: `{"isCorrect":true,"score":90,"feedback":"Nice","suggestions":[]}`}
	recorder := &memoryRecorder{err: errors.New("connection reset")}
	queue := &stubQueue{}
	svc := NewService(client, recorder, queue)

	eval, saved, err := svc.Evaluate(context.Background(), 7, testQuestion(), "4")
	if err != nil {
		t.Fatalf("Evaluate should not fail on persistence error, got: %v", err)
	}
	if saved {
		t.Error("persisted flag must be false when the store rejected the write")
	}
	if !eval.IsCorrect || eval.Score != 90 {
		t.Errorf("the evaluation itself must survive a persistence failure, got %+v", eval)
	}
	if len(queue.enqueued) != 1 {
		t.Fatalf("expected 1 queued replay, got %d", len(queue.enqueued))
	}
	if queue.enqueued[0].eval.Score != 90 || queue.enqueued[0].userID != 7 {
		t.Errorf("queued replay carries wrong data: %+v", queue.enqueued[0])
	}
}

func TestEvaluate_CancelledContextLeavesNoTrace(t *testing.T) {
	client := &stubClient{response: `{"isCorrect":true,"score":100,"feedback":"ok","suggestions":[]}`}
	recorder := &memoryRecorder{}
	svc := NewService(client, recorder, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, saved, err := svc.Evaluate(ctx, 7, testQuestion(), "4")
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if saved || len(recorder.attempts) != 0 {
		t.Error("cancellation before the backend responds must leave no persisted side effect")
	}
}

func TestChat_ReturnsReply(t *testing.T) {
	client := &stubClient{response: "What do you know about factoring so far?"}
	svc := NewService(client, &memoryRecorder{}, nil)

	reply, err := svc.Chat(context.Background(), []models.Message{{Role: models.RoleUser, Content: "help"}}, testQuestion(), "")
	if err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}
	if reply != "What do you know about factoring so far?" {
		t.Errorf("unexpected reply: %q", reply)
	}
	if client.lastOpts.ResponseFormat != FormatFreeText {
		t.Error("chat must request free text output")
	}
	if client.lastMessages[0].Role != models.RoleSystem {
		t.Error("chat messages must lead with the policy message")
	}
}

func TestHint_ReturnsHint(t *testing.T) {
	client := &stubClient{response: "Think about what two numbers multiply to 6."}
	svc := NewService(client, &memoryRecorder{}, nil)

	hint, err := svc.Hint(context.Background(), testQuestion(), nil)
	if err != nil {
		t.Fatalf("Hint returned error: %v", err)
	}
	if hint == "" {
		t.Error("expected a hint")
	}
	if client.lastOpts.MaxTokens != 200 {
		t.Errorf("hint should cap tokens at 200, got %d", client.lastOpts.MaxTokens)
	}
}

func TestEvaluate_RetriedAttemptSequence(t *testing.T) {
	// Wrong then correct on the same question: attempts=2, correctAttempts=1,
	// completed.
	recorder := &memoryRecorder{}
	question := testQuestion()

	client := &stubClient{response: `{"isCorrect":false,"score":40,"feedback":"Not quite","suggestions":["Recheck"]}`}
	svc := NewService(client, recorder, nil)
	if _, _, err := svc.Evaluate(context.Background(), 7, question, "5"); err != nil {
		t.Fatal(err)
	}

	client.response = `{"isCorrect":true,"score":100,"feedback":"Correct","suggestions":[]}`
	if _, _, err := svc.Evaluate(context.Background(), 7, question, "4"); err != nil {
		t.Fatal(err)
	}

	rec := recorder.progress[question.ID]
	if rec.Attempts != 2 || rec.CorrectAttempts != 1 || !rec.IsCompleted {
		t.Errorf("after wrong-then-correct: %+v", rec)
	}
	if rec.Score != 100 || rec.UserAnswer != "4" {
		t.Errorf("latest attempt should overwrite score and answer: %+v", rec)
	}
}
