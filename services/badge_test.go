package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ascent-learning/ascent_api/model"
)

func seedBadge(t *testing.T, store *PostgresService, badge model.Badge) {
	t.Helper()
	badge.IsActive = true
	_, err := store.CreateBadge(&badge)
	require.NoError(t, err)
}

func TestAwardBadgeIdempotent(t *testing.T) {
	store := newTestStore(t)

	seedUser(t, store, "u1")
	seedBadge(t, store, model.Badge{
		ID:           "b1",
		Name:         "First Steps",
		Scope:        model.ScopeLesson,
		CriteriaType: model.CriteriaFirstLesson,
	})

	awarded, err := store.AwardBadge("u1", "b1")
	require.NoError(t, err)
	assert.True(t, awarded)

	// Second award is a silent no-op, not an error.
	awarded, err = store.AwardBadge("u1", "b1")
	require.NoError(t, err)
	assert.False(t, awarded)

	badges, err := store.GetUserBadges("u1")
	require.NoError(t, err)
	assert.Len(t, badges, 1)
}

func TestCascadeAwardsAndReruns(t *testing.T) {
	store := newTestStore(t)
	svc := newBadgeService(store)

	seedHierarchy(t, store)
	seedUser(t, store, "u1")
	seedBadge(t, store, model.Badge{
		ID:             "b_first",
		Name:           "First Steps",
		Scope:          model.ScopeLesson,
		XPBonus:        25,
		CriteriaType:   model.CriteriaFirstLesson,
		CriteriaParams: model.MustParams(model.FirstLessonCriteria{}),
	})
	seedBadge(t, store, model.Badge{
		ID:             "b_high",
		Name:           "High Flyer",
		Scope:          model.ScopeAccuracy,
		XPBonus:        40,
		CriteriaType:   model.CriteriaHighScore,
		CriteriaParams: model.MustParams(model.HighScoreCriteria{Threshold: 95}),
	})

	passLesson(t, store, "u1", "l1", time.Now())

	sig := CascadeSignal{
		LessonID:     "l1",
		CourseID:     "c1",
		ProgramID:    "prog1",
		ScorePercent: 96,
		Difficulty:   model.DifficultyBeginner,
	}

	result := svc.RunCascade("u1", sig)
	require.Len(t, result.NewBadges, 2)
	assert.Equal(t, 65, result.TotalXPAwarded)

	// Re-running the same cascade awards nothing new.
	result = svc.RunCascade("u1", sig)
	assert.Empty(t, result.NewBadges)
	assert.Equal(t, 0, result.TotalXPAwarded)
}

func TestCascadeCourseAndProgramBadges(t *testing.T) {
	store := newTestStore(t)
	svc := newBadgeService(store)

	seedHierarchy(t, store)
	seedUser(t, store, "u1")
	seedBadge(t, store, model.Badge{
		ID:             "b_course",
		Name:           "Course Done",
		Scope:          model.ScopeCourse,
		XPBonus:        100,
		CriteriaType:   model.CriteriaCompleteCourse,
		CriteriaParams: model.MustParams(model.CompleteCourseCriteria{CourseID: "c1"}),
	})
	seedBadge(t, store, model.Badge{
		ID:             "b_program",
		Name:           "Program Done",
		Scope:          model.ScopeProgram,
		XPBonus:        500,
		CriteriaType:   model.CriteriaCompleteProgram,
		CriteriaParams: model.MustParams(model.CompleteProgramCriteria{ProgramID: "prog1"}),
	})

	sig := CascadeSignal{CourseID: "c1", ProgramID: "prog1", ScorePercent: 80}

	passLesson(t, store, "u1", "l1", time.Now())
	result := svc.RunCascade("u1", sig)
	assert.Empty(t, result.NewBadges)

	passLesson(t, store, "u1", "l2", time.Now())
	result = svc.RunCascade("u1", sig)
	require.Len(t, result.NewBadges, 1)
	assert.Equal(t, "b_course", result.NewBadges[0].ID)

	passLesson(t, store, "u1", "l3", time.Now())
	passLesson(t, store, "u1", "l4", time.Now())
	result = svc.RunCascade("u1", CascadeSignal{CourseID: "c2", ProgramID: "prog1", ScorePercent: 80})
	require.Len(t, result.NewBadges, 1)
	assert.Equal(t, "b_program", result.NewBadges[0].ID)
}

func TestStreakBadge(t *testing.T) {
	store := newTestStore(t)
	svc := newBadgeService(store)

	seedHierarchy(t, store)
	seedUser(t, store, "u1")
	seedBadge(t, store, model.Badge{
		ID:             "b_streak",
		Name:           "Consistency",
		Scope:          model.ScopeStreak,
		CriteriaType:   model.CriteriaStreak,
		CriteriaParams: model.MustParams(model.StreakCriteria{Days: 3}),
	})

	passLesson(t, store, "u1", "l1", day(-1))
	passLesson(t, store, "u1", "l2", day(0))

	result, err := svc.CheckAndAwardBadges("u1", model.ScopeLesson, CascadeSignal{})
	require.NoError(t, err)
	assert.Empty(t, result.NewBadges)

	passLesson(t, store, "u1", "l3", day(1))

	result, err = svc.CheckAndAwardBadges("u1", model.ScopeLesson, CascadeSignal{})
	require.NoError(t, err)
	require.Len(t, result.NewBadges, 1)
	assert.Equal(t, "b_streak", result.NewBadges[0].ID)
}

func TestDifficultyBadge(t *testing.T) {
	store := newTestStore(t)
	svc := newBadgeService(store)

	seedHierarchy(t, store)
	seedUser(t, store, "u1")
	seedBadge(t, store, model.Badge{
		ID:             "b_adv",
		Name:           "Advanced Learner",
		Scope:          model.ScopeDifficulty,
		CriteriaType:   model.CriteriaDifficultyLessons,
		CriteriaParams: model.MustParams(model.DifficultyLessonsCriteria{Difficulty: model.DifficultyAdvanced, Count: 2}),
	})

	// l1 is beginner; it must not count toward the advanced tally.
	passLesson(t, store, "u1", "l1", time.Now())
	passLesson(t, store, "u1", "l3", time.Now())

	result, err := svc.CheckAndAwardBadges("u1", model.ScopeLesson, CascadeSignal{})
	require.NoError(t, err)
	assert.Empty(t, result.NewBadges)

	passLesson(t, store, "u1", "l4", time.Now())

	result, err = svc.CheckAndAwardBadges("u1", model.ScopeLesson, CascadeSignal{})
	require.NoError(t, err)
	require.Len(t, result.NewBadges, 1)
	assert.Equal(t, "b_adv", result.NewBadges[0].ID)
}

func TestUnknownCriteriaTypeIsSkipped(t *testing.T) {
	store := newTestStore(t)
	svc := newBadgeService(store)

	seedHierarchy(t, store)
	seedUser(t, store, "u1")
	seedBadge(t, store, model.Badge{
		ID:           "b_bogus",
		Name:         "Mystery",
		Scope:        model.ScopeLesson,
		CriteriaType: "NOT_A_REAL_TYPE",
	})

	passLesson(t, store, "u1", "l1", time.Now())

	// The malformed badge is logged and skipped; it is never awarded
	// and never sinks the scan.
	result, err := svc.CheckAndAwardBadges("u1", model.ScopeLesson, CascadeSignal{ScorePercent: 100})
	require.NoError(t, err)
	assert.Empty(t, result.NewBadges)

	owned, err := store.GetUserBadgeIDs("u1")
	require.NoError(t, err)
	assert.False(t, owned["b_bogus"])
}

func TestParseCriteriaRejectsUnknownType(t *testing.T) {
	badge := &model.Badge{CriteriaType: "NOT_A_REAL_TYPE"}
	_, err := badge.ParseCriteria()
	require.Error(t, err)
}

func TestBadgeCatalogEarnedState(t *testing.T) {
	store := newTestStore(t)
	svc := newBadgeService(store)

	seedUser(t, store, "u1")
	seedBadge(t, store, model.Badge{ID: "b1", Name: "One", Scope: model.ScopeLesson, CriteriaType: model.CriteriaFirstLesson})
	seedBadge(t, store, model.Badge{ID: "b2", Name: "Two", Scope: model.ScopeLesson, CriteriaType: model.CriteriaFirstLesson})

	_, err := store.AwardBadge("u1", "b1")
	require.NoError(t, err)

	catalog, err := svc.GetCatalog("u1")
	require.NoError(t, err)
	assert.Equal(t, 2, catalog.Total)
	assert.Equal(t, 1, catalog.Earned)

	for _, b := range catalog.Badges {
		if b.ID == "b1" {
			assert.NotNil(t, b.EarnedAt)
		} else {
			assert.Nil(t, b.EarnedAt)
		}
	}
}
