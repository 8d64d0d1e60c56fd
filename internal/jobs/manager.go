package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/ib-tutor/backend/internal/models"
)

const TypeRecordAttempt = "progress:record_attempt"

// AttemptPayload carries a fully evaluated attempt whose first persistence
// attempt failed.
type AttemptPayload struct {
	UserID     int64             `json:"user_id"`
	QuestionID int64             `json:"question_id"`
	Evaluation models.Evaluation `json:"evaluation"`
	UserAnswer string            `json:"user_answer"`
}

// Recorder replays an attempt against the entity store.
type Recorder interface {
	RecordAttempt(ctx context.Context, userID, questionID int64, eval models.Evaluation, userAnswer string) (*models.ProgressRecord, *models.StatsRecord, error)
}

// Manager owns the out-of-band retry queue. Attempts that could not be
// persisted in-request are replayed here with backoff until they stick.
type Manager struct {
	client *asynq.Client
	server *asynq.Server
	mux    *asynq.ServeMux
}

func NewManager(redisURL string, recorder Recorder) *Manager {
	redisOpt := asynq.RedisClientOpt{
		Addr: strings.TrimPrefix(redisURL, "redis://"),
	}

	client := asynq.NewClient(redisOpt)

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 5,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Printf("ERROR: job failed: type=%s error=%v", task.Type(), err)
		}),
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeRecordAttempt, handleRecordAttempt(recorder))

	return &Manager{client: client, server: server, mux: mux}
}

func (m *Manager) Start() error {
	log.Println("Starting attempt replay worker...")
	return m.server.Run(m.mux)
}

func (m *Manager) Stop() {
	log.Println("Stopping attempt replay worker...")
	m.server.Stop()
	m.server.Shutdown()
	m.client.Close()
}

// EnqueueAttempt schedules an attempt for durable replay.
func (m *Manager) EnqueueAttempt(userID, questionID int64, eval models.Evaluation, userAnswer string) error {
	payload, err := json.Marshal(AttemptPayload{
		UserID:     userID,
		QuestionID: questionID,
		Evaluation: eval,
		UserAnswer: userAnswer,
	})
	if err != nil {
		return fmt.Errorf("marshal attempt payload: %w", err)
	}

	task := asynq.NewTask(TypeRecordAttempt, payload)
	info, err := m.client.Enqueue(task,
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
	)
	if err != nil {
		return fmt.Errorf("enqueue attempt replay: %w", err)
	}

	log.Printf("Queued attempt replay: id=%s user=%d question=%d", info.ID, userID, questionID)
	return nil
}

func handleRecordAttempt(recorder Recorder) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p AttemptPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			return fmt.Errorf("unmarshal attempt payload: %w", err)
		}

		if _, _, err := recorder.RecordAttempt(ctx, p.UserID, p.QuestionID, p.Evaluation, p.UserAnswer); err != nil {
			return fmt.Errorf("replay attempt user=%d question=%d: %w", p.UserID, p.QuestionID, err)
		}

		log.Printf("Replayed attempt: user=%d question=%d", p.UserID, p.QuestionID)
		return nil
	}
}
