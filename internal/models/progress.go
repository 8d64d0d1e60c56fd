package models

import "time"

// ProgressRecord is the durable per-user-per-question attempt history.
// Exactly one row exists per (user, question) pair; it is created on the
// first attempt and mutated in place afterwards.
type ProgressRecord struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	QuestionID      int64     `json:"question_id"`
	Attempts        int       `json:"attempts"`
	CorrectAttempts int       `json:"correct_attempts"`
	LastAttemptedAt time.Time `json:"last_attempted_at"`
	IsCompleted     bool      `json:"is_completed"`
	UserAnswer      string    `json:"user_answer"`
	Score           int       `json:"score"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// StatsRecord is the durable per-user rolling aggregate across all
// questions. One row per user, created at onboarding with zero counters.
type StatsRecord struct {
	UserID                  int64      `json:"user_id"`
	TotalQuestionsAttempted int        `json:"total_questions_attempted"`
	TotalQuestionsCorrect   int        `json:"total_questions_correct"`
	CurrentStreak           int        `json:"current_streak"`
	LongestStreak           int        `json:"longest_streak"`
	LastActivityDate        *time.Time `json:"last_activity_date"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
}
