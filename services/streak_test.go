package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(offset int) time.Time {
	base := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.Local)
	return base.AddDate(0, 0, offset)
}

func TestStreakFromTimes(t *testing.T) {
	tests := []struct {
		name  string
		times []time.Time
		want  int
	}{
		{
			name: "empty history",
			want: 0,
		},
		{
			name:  "single day",
			times: []time.Time{day(0)},
			want:  1,
		},
		{
			name:  "three consecutive days",
			times: []time.Time{day(0), day(-1), day(-2)},
			want:  3,
		},
		{
			name:  "gap stops the walk",
			times: []time.Time{day(0), day(-1), day(-2), day(-5)},
			want:  3,
		},
		{
			name:  "same day attempts count once",
			times: []time.Time{day(0), day(0).Add(-2 * time.Hour), day(-1)},
			want:  2,
		},
		{
			name:  "streak anchored at most recent attempt",
			times: []time.Time{day(-3), day(-4)},
			want:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, streakFromTimes(tt.times))
		})
	}
}

func TestLongestStreakFromTimes(t *testing.T) {
	tests := []struct {
		name  string
		times []time.Time
		want  int
	}{
		{
			name: "empty history",
			want: 0,
		},
		{
			name:  "longest run is behind a gap",
			times: []time.Time{day(0), day(-3), day(-4), day(-5)},
			want:  3,
		},
		{
			name:  "current run is the longest",
			times: []time.Time{day(0), day(-1), day(-2), day(-9)},
			want:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, longestStreakFromTimes(tt.times))
		})
	}
}

func TestPreviousDayAcrossMonthBoundary(t *testing.T) {
	first := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.Local)
	lastOfFeb := time.Date(2025, time.February, 28, 0, 0, 0, 0, time.Local)
	assert.True(t, previousDay(first, lastOfFeb))
	assert.False(t, previousDay(first, lastOfFeb.AddDate(0, 0, -1)))
}

func TestCurrentStreakFromStore(t *testing.T) {
	store := newTestStore(t)
	svc := newStreakService(store)

	seedHierarchy(t, store)
	seedUser(t, store, "u1")

	streak, err := svc.CurrentStreak("u1")
	require.NoError(t, err)
	assert.Equal(t, 0, streak)

	passLesson(t, store, "u1", "l1", day(-2))
	passLesson(t, store, "u1", "l2", day(-1))
	passLesson(t, store, "u1", "l3", day(0))

	streak, err = svc.CurrentStreak("u1")
	require.NoError(t, err)
	assert.Equal(t, 3, streak)

	longest, err := svc.LongestStreak("u1")
	require.NoError(t, err)
	assert.Equal(t, 3, longest)
}

func TestStreakIgnoresFailedAttempts(t *testing.T) {
	store := newTestStore(t)
	svc := newStreakService(store)

	seedHierarchy(t, store)
	seedUser(t, store, "u1")

	passLesson(t, store, "u1", "l1", day(0))
	require.NoError(t, store.CreateQuizAttempt(failedAttempt("u1", "l2", day(-1))))

	streak, err := svc.CurrentStreak("u1")
	require.NoError(t, err)
	assert.Equal(t, 1, streak)
}
