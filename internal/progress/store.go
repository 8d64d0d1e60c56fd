package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ib-tutor/backend/internal/models"
)

// ErrPersistence marks entity-store failures during attempt recording.
// Callers must surface it distinctly from backend failures: by the time it
// occurs an Evaluation usually exists and has been shown to the learner.
var ErrPersistence = errors.New("progress persistence failure")

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// RecordAttempt applies one Evaluation to the per-question ProgressRecord
// and the per-user StatsRecord. Both read-modify-writes run inside a single
// transaction with SELECT ... FOR UPDATE row locks, so concurrent attempts
// on the same keys serialize instead of losing increments. The transaction
// rolls back on every failure path, including context cancellation.
func (s *Store) RecordAttempt(ctx context.Context, userID, questionID int64, eval models.Evaluation, userAnswer string) (*models.ProgressRecord, *models.StatsRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: begin: %v", ErrPersistence, err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	rec, err := s.upsertProgress(ctx, tx, userID, questionID, eval, userAnswer, now)
	if err != nil {
		return nil, nil, err
	}

	stats, err := s.updateStats(ctx, tx, userID, eval.IsCorrect, now)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("%w: commit: %v", ErrPersistence, err)
	}

	return rec, stats, nil
}

func (s *Store) upsertProgress(ctx context.Context, tx *sql.Tx, userID, questionID int64, eval models.Evaluation, userAnswer string, now time.Time) (*models.ProgressRecord, error) {
	var rec models.ProgressRecord
	err := tx.QueryRowContext(ctx,
		`SELECT id, user_id, question_id, attempts, correct_attempts,
		        last_attempted_at, is_completed, user_answer, score,
		        created_at, updated_at
		 FROM user_progress
		 WHERE user_id = $1 AND question_id = $2
		 FOR UPDATE`,
		userID, questionID,
	).Scan(&rec.ID, &rec.UserID, &rec.QuestionID, &rec.Attempts, &rec.CorrectAttempts,
		&rec.LastAttemptedAt, &rec.IsCompleted, &rec.UserAnswer, &rec.Score,
		&rec.CreatedAt, &rec.UpdatedAt)

	if err == sql.ErrNoRows {
		rec = NewAttemptRecord(userID, questionID, eval, userAnswer, now)
		err = tx.QueryRowContext(ctx,
			`INSERT INTO user_progress
			     (user_id, question_id, attempts, correct_attempts,
			      last_attempted_at, is_completed, user_answer, score)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING id, created_at, updated_at`,
			rec.UserID, rec.QuestionID, rec.Attempts, rec.CorrectAttempts,
			rec.LastAttemptedAt, rec.IsCompleted, rec.UserAnswer, rec.Score,
		).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: insert progress: %v", ErrPersistence, err)
		}
		return &rec, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: lock progress: %v", ErrPersistence, err)
	}

	ApplyAttempt(&rec, eval, userAnswer, now)

	if _, err := tx.ExecContext(ctx,
		`UPDATE user_progress SET
		    attempts = $3, correct_attempts = $4, last_attempted_at = $5,
		    is_completed = $6, user_answer = $7, score = $8, updated_at = NOW()
		 WHERE user_id = $1 AND question_id = $2`,
		userID, questionID, rec.Attempts, rec.CorrectAttempts,
		rec.LastAttemptedAt, rec.IsCompleted, rec.UserAnswer, rec.Score,
	); err != nil {
		return nil, fmt.Errorf("%w: update progress: %v", ErrPersistence, err)
	}
	return &rec, nil
}

func (s *Store) updateStats(ctx context.Context, tx *sql.Tx, userID int64, correct bool, now time.Time) (*models.StatsRecord, error) {
	// Stats rows are created at onboarding; the upsert covers users that
	// predate that behavior.
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO user_stats (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`,
		userID,
	); err != nil {
		return nil, fmt.Errorf("%w: ensure stats: %v", ErrPersistence, err)
	}

	var stats models.StatsRecord
	err := tx.QueryRowContext(ctx,
		`SELECT user_id, total_questions_attempted, total_questions_correct,
		        current_streak, longest_streak, last_activity_date,
		        created_at, updated_at
		 FROM user_stats WHERE user_id = $1
		 FOR UPDATE`,
		userID,
	).Scan(&stats.UserID, &stats.TotalQuestionsAttempted, &stats.TotalQuestionsCorrect,
		&stats.CurrentStreak, &stats.LongestStreak, &stats.LastActivityDate,
		&stats.CreatedAt, &stats.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: lock stats: %v", ErrPersistence, err)
	}

	ApplyAttemptToStats(&stats, correct, now)

	if _, err := tx.ExecContext(ctx,
		`UPDATE user_stats SET
		    total_questions_attempted = $2, total_questions_correct = $3,
		    current_streak = $4, longest_streak = $5, last_activity_date = $6,
		    updated_at = NOW()
		 WHERE user_id = $1`,
		userID, stats.TotalQuestionsAttempted, stats.TotalQuestionsCorrect,
		stats.CurrentStreak, stats.LongestStreak, stats.LastActivityDate,
	); err != nil {
		return nil, fmt.Errorf("%w: update stats: %v", ErrPersistence, err)
	}
	return &stats, nil
}

// ListProgress returns every ProgressRecord for a user, newest attempt first.
func (s *Store) ListProgress(ctx context.Context, userID int64) ([]models.ProgressRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, question_id, attempts, correct_attempts,
		        last_attempted_at, is_completed, user_answer, score,
		        created_at, updated_at
		 FROM user_progress
		 WHERE user_id = $1
		 ORDER BY last_attempted_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer rows.Close()

	var records []models.ProgressRecord
	for rows.Next() {
		var rec models.ProgressRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.QuestionID, &rec.Attempts,
			&rec.CorrectAttempts, &rec.LastAttemptedAt, &rec.IsCompleted,
			&rec.UserAnswer, &rec.Score, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetStats returns the user's StatsRecord, creating the zeroed row if the
// user somehow predates onboarding creation.
func (s *Store) GetStats(ctx context.Context, userID int64) (*models.StatsRecord, error) {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO user_stats (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`,
		userID,
	); err != nil {
		return nil, fmt.Errorf("ensure stats: %w", err)
	}

	var stats models.StatsRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, total_questions_attempted, total_questions_correct,
		        current_streak, longest_streak, last_activity_date,
		        created_at, updated_at
		 FROM user_stats WHERE user_id = $1`,
		userID,
	).Scan(&stats.UserID, &stats.TotalQuestionsAttempted, &stats.TotalQuestionsCorrect,
		&stats.CurrentStreak, &stats.LongestStreak, &stats.LastActivityDate,
		&stats.CreatedAt, &stats.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	return &stats, nil
}
