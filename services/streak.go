package services

import (
	"time"

	"github.com/alphabatem/common/context"
)

// StreakService computes consecutive-day learning streaks. Pure reads
// over the append-only quiz attempt history, recomputed on every call;
// nothing here is cached because any write to the history can change
// the answer retroactively.
type StreakService struct {
	context.DefaultService

	sqlSvc *PostgresService
}

const STREAK_SVC = "streak_svc"

func (svc StreakService) Id() string {
	return STREAK_SVC
}

func (svc *StreakService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *StreakService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	return nil
}

// CurrentStreak returns the length of the run of consecutive calendar
// days ending at the user's most recent passing submission. No history
// yields 0.
func (svc *StreakService) CurrentStreak(userID string) (int, error) {
	times, err := svc.sqlSvc.GetPassingAttemptTimes(userID)
	if err != nil {
		return 0, err
	}
	return streakFromTimes(times), nil
}

// LongestStreak returns the longest consecutive-day run anywhere in the
// user's history.
func (svc *StreakService) LongestStreak(userID string) (int, error) {
	times, err := svc.sqlSvc.GetPassingAttemptTimes(userID)
	if err != nil {
		return 0, err
	}
	return longestStreakFromTimes(times), nil
}

// streakFromTimes walks timestamps sorted newest-first, normalized to
// local midnight and deduplicated per day, and counts while each day is
// exactly one before the previous. The first gap larger than a day
// stops the walk.
func streakFromTimes(times []time.Time) int {
	days := uniqueDays(times)
	if len(days) == 0 {
		return 0
	}

	streak := 1
	for i := 1; i < len(days); i++ {
		if !previousDay(days[i-1], days[i]) {
			break
		}
		streak++
	}
	return streak
}

func longestStreakFromTimes(times []time.Time) int {
	days := uniqueDays(times)
	if len(days) == 0 {
		return 0
	}

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if previousDay(days[i-1], days[i]) {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 1
		}
	}
	return longest
}

// previousDay reports whether candidate is exactly one calendar day
// before day. Calendar arithmetic, not 24h deltas, so DST transitions
// do not break a streak.
func previousDay(day, candidate time.Time) bool {
	return day.AddDate(0, 0, -1).Equal(candidate)
}

// uniqueDays normalizes each timestamp to its calendar day and drops
// same-day duplicates. Input is newest-first; output keeps that order.
func uniqueDays(times []time.Time) []time.Time {
	days := make([]time.Time, 0, len(times))
	for _, t := range times {
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		if len(days) > 0 && days[len(days)-1].Equal(day) {
			continue
		}
		days = append(days, day)
	}
	return days
}
