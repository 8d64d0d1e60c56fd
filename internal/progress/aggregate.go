package progress

import (
	"time"

	"github.com/ib-tutor/backend/internal/models"
)

// NewAttemptRecord builds the ProgressRecord for a user's first attempt at
// a question.
func NewAttemptRecord(userID, questionID int64, eval models.Evaluation, userAnswer string, now time.Time) models.ProgressRecord {
	correct := 0
	if eval.IsCorrect {
		correct = 1
	}
	return models.ProgressRecord{
		UserID:          userID,
		QuestionID:      questionID,
		Attempts:        1,
		CorrectAttempts: correct,
		LastAttemptedAt: now,
		IsCompleted:     eval.IsCorrect,
		UserAnswer:      userAnswer,
		Score:           eval.Score,
	}
}

// ApplyAttempt folds one more attempt into an existing ProgressRecord.
// Completion is sticky: a question stays completed after a later wrong
// attempt, while the answer and score always reflect the latest attempt.
func ApplyAttempt(rec *models.ProgressRecord, eval models.Evaluation, userAnswer string, now time.Time) {
	rec.Attempts++
	if eval.IsCorrect {
		rec.CorrectAttempts++
	}
	rec.IsCompleted = rec.IsCompleted || eval.IsCorrect
	rec.UserAnswer = userAnswer
	rec.Score = eval.Score
	rec.LastAttemptedAt = now
}

// ApplyAttemptToStats folds one attempt into the per-user aggregate,
// including the streak update.
func ApplyAttemptToStats(stats *models.StatsRecord, correct bool, now time.Time) {
	stats.TotalQuestionsAttempted++
	if correct {
		stats.TotalQuestionsCorrect++
	}

	stats.CurrentStreak, stats.LongestStreak = NextStreak(
		stats.LastActivityDate, stats.CurrentStreak, stats.LongestStreak, now)

	today := truncateToDay(now)
	stats.LastActivityDate = &today
}
