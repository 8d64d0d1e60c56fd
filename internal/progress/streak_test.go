package progress

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func TestNextStreak_ConsecutiveDay(t *testing.T) {
	yesterday := day("2026-03-01")
	current, longest := NextStreak(&yesterday, 3, 5, day("2026-03-02"))

	if current != 4 {
		t.Errorf("expected streak 4, got %d", current)
	}
	if longest != 5 {
		t.Errorf("expected longest 5, got %d", longest)
	}
}

func TestNextStreak_ConsecutiveDayExtendsLongest(t *testing.T) {
	yesterday := day("2026-03-01")
	current, longest := NextStreak(&yesterday, 5, 5, day("2026-03-02"))

	if current != 6 || longest != 6 {
		t.Errorf("expected 6/6, got %d/%d", current, longest)
	}
}

func TestNextStreak_SameDayUnchanged(t *testing.T) {
	earlier := day("2026-03-02")
	current, longest := NextStreak(&earlier, 4, 4, day("2026-03-02").Add(6*time.Hour))

	if current != 4 || longest != 4 {
		t.Errorf("same-day attempt should not change streaks, got %d/%d", current, longest)
	}
}

func TestNextStreak_GapResets(t *testing.T) {
	lastWeek := day("2026-02-20")
	current, longest := NextStreak(&lastWeek, 9, 9, day("2026-03-02"))

	if current != 1 {
		t.Errorf("gap should reset streak to 1, got %d", current)
	}
	if longest != 9 {
		t.Errorf("longest streak must survive the reset, got %d", longest)
	}
}

func TestNextStreak_FirstActivity(t *testing.T) {
	current, longest := NextStreak(nil, 0, 0, day("2026-03-02"))

	if current != 1 || longest != 1 {
		t.Errorf("first activity should start the streak at 1, got %d/%d", current, longest)
	}
}

func TestNextStreak_TimeOfDayIgnored(t *testing.T) {
	// 23:59 yesterday followed by 00:01 today is still a consecutive day.
	lateYesterday := day("2026-03-01").Add(23*time.Hour + 59*time.Minute)
	current, _ := NextStreak(&lateYesterday, 2, 2, day("2026-03-02").Add(time.Minute))

	if current != 3 {
		t.Errorf("expected streak 3 across midnight boundary, got %d", current)
	}
}
