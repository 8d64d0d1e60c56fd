package progress

import (
	"testing"
	"time"

	"github.com/ib-tutor/backend/internal/models"
)

func TestNewAttemptRecord(t *testing.T) {
	now := time.Now().UTC()

	rec := NewAttemptRecord(7, 42, models.Evaluation{IsCorrect: false, Score: 40}, "my answer", now)
	if rec.Attempts != 1 || rec.CorrectAttempts != 0 || rec.IsCompleted {
		t.Errorf("first wrong attempt: %+v", rec)
	}
	if rec.Score != 40 || rec.UserAnswer != "my answer" {
		t.Errorf("attempt details not captured: %+v", rec)
	}

	rec = NewAttemptRecord(7, 42, models.Evaluation{IsCorrect: true, Score: 100}, "x", now)
	if rec.CorrectAttempts != 1 || !rec.IsCompleted {
		t.Errorf("first correct attempt: %+v", rec)
	}
}

func TestApplyAttempt_WrongThenCorrect(t *testing.T) {
	now := time.Now().UTC()
	rec := NewAttemptRecord(7, 42, models.Evaluation{IsCorrect: false, Score: 40}, "5", now)

	ApplyAttempt(&rec, models.Evaluation{IsCorrect: true, Score: 100}, "4", now.Add(time.Minute))

	if rec.Attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", rec.Attempts)
	}
	if rec.CorrectAttempts != 1 {
		t.Errorf("expected 1 correct attempt, got %d", rec.CorrectAttempts)
	}
	if !rec.IsCompleted {
		t.Error("expected completed after correct attempt")
	}
	if rec.Score != 100 || rec.UserAnswer != "4" {
		t.Errorf("latest attempt should win score/answer: %+v", rec)
	}
}

func TestApplyAttempt_CompletionIsSticky(t *testing.T) {
	now := time.Now().UTC()
	rec := NewAttemptRecord(7, 42, models.Evaluation{IsCorrect: true, Score: 100}, "4", now)

	ApplyAttempt(&rec, models.Evaluation{IsCorrect: false, Score: 20}, "5", now.Add(time.Minute))

	if !rec.IsCompleted {
		t.Error("a later wrong attempt must not un-complete the question")
	}
	if rec.Attempts != 2 || rec.CorrectAttempts != 1 {
		t.Errorf("counters wrong: %+v", rec)
	}
	if rec.Score != 20 || rec.UserAnswer != "5" {
		t.Errorf("score and answer still track the latest attempt: %+v", rec)
	}
}

func TestApplyAttempt_InvariantHolds(t *testing.T) {
	now := time.Now().UTC()
	rec := NewAttemptRecord(7, 42, models.Evaluation{IsCorrect: true, Score: 80}, "a", now)

	evals := []models.Evaluation{
		{IsCorrect: true, Score: 90},
		{IsCorrect: false, Score: 10},
		{IsCorrect: true, Score: 100},
		{IsCorrect: false, Score: 0},
	}
	for i, ev := range evals {
		ApplyAttempt(&rec, ev, "b", now.Add(time.Duration(i)*time.Minute))
		if rec.CorrectAttempts > rec.Attempts {
			t.Fatalf("correctAttempts %d exceeds attempts %d", rec.CorrectAttempts, rec.Attempts)
		}
	}
	if rec.Attempts != 5 || rec.CorrectAttempts != 3 {
		t.Errorf("after 5 attempts: %+v", rec)
	}
}

func TestApplyAttemptToStats(t *testing.T) {
	yesterday := day("2026-03-01")
	stats := models.StatsRecord{
		UserID:                  7,
		TotalQuestionsAttempted: 10,
		TotalQuestionsCorrect:   6,
		CurrentStreak:           3,
		LongestStreak:           3,
		LastActivityDate:        &yesterday,
	}

	ApplyAttemptToStats(&stats, true, day("2026-03-02").Add(9*time.Hour))

	if stats.TotalQuestionsAttempted != 11 || stats.TotalQuestionsCorrect != 7 {
		t.Errorf("counters: %+v", stats)
	}
	if stats.CurrentStreak != 4 || stats.LongestStreak != 4 {
		t.Errorf("streaks: current=%d longest=%d", stats.CurrentStreak, stats.LongestStreak)
	}
	if stats.LastActivityDate == nil || !stats.LastActivityDate.Equal(day("2026-03-02")) {
		t.Errorf("last activity date: %v", stats.LastActivityDate)
	}

	// Second attempt the same day: counters move, streak does not.
	ApplyAttemptToStats(&stats, false, day("2026-03-02").Add(20*time.Hour))

	if stats.TotalQuestionsAttempted != 12 || stats.TotalQuestionsCorrect != 7 {
		t.Errorf("counters after same-day attempt: %+v", stats)
	}
	if stats.CurrentStreak != 4 || stats.LongestStreak != 4 {
		t.Errorf("same-day attempt must leave streak at 4, got %d", stats.CurrentStreak)
	}
	if stats.TotalQuestionsCorrect > stats.TotalQuestionsAttempted {
		t.Error("correct count exceeds attempted count")
	}
}

func TestApplyAttemptToStats_FirstActivity(t *testing.T) {
	stats := models.StatsRecord{UserID: 7}

	ApplyAttemptToStats(&stats, true, day("2026-03-02"))

	if stats.TotalQuestionsAttempted != 1 || stats.TotalQuestionsCorrect != 1 {
		t.Errorf("counters: %+v", stats)
	}
	if stats.CurrentStreak != 1 || stats.LongestStreak != 1 {
		t.Errorf("first activity streaks: %d/%d", stats.CurrentStreak, stats.LongestStreak)
	}
}
