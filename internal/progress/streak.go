package progress

import "time"

// NextStreak applies the calendar-day streak rule (UTC days):
// activity on the day after the last activity extends the streak, activity
// on the same day changes nothing, and anything else — a gap or the first
// ever activity — restarts the streak at 1. The longest streak only grows.
func NextStreak(lastActivity *time.Time, currentStreak, longestStreak int, now time.Time) (int, int) {
	today := truncateToDay(now)

	current := 1
	if lastActivity != nil {
		switch daysBetween(truncateToDay(*lastActivity), today) {
		case 0:
			current = currentStreak
		case 1:
			current = currentStreak + 1
		}
	}

	longest := longestStreak
	if current > longest {
		longest = current
	}
	return current, longest
}

func truncateToDay(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
