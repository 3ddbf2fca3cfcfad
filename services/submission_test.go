package services

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ascent-learning/ascent_api/dto"
	"github.com/ascent-learning/ascent_api/model"
	"github.com/ascent-learning/ascent_api/shared"
)

func submitReq(lessonID string, score, maxScore int) dto.SubmitLessonRequest {
	courseID := "c1"
	if lessonID == "l3" || lessonID == "l4" {
		courseID = "c2"
	}
	return dto.SubmitLessonRequest{
		ProgramID: "prog1",
		CourseID:  courseID,
		LessonID:  lessonID,
		Score:     score,
		MaxScore:  maxScore,
		TimeSpent: 120,
	}
}

func TestSubmitLessonFirstPass(t *testing.T) {
	store := newTestStore(t)
	svc := newSubmissionService(store)

	seedHierarchy(t, store)
	seedUser(t, store, "u1")
	enrollUser(t, store, "u1", "prog1")

	resp, err := svc.SubmitLesson("u1", submitReq("l1", 8, 10))
	require.NoError(t, err)

	assert.True(t, resp.Passed)
	assert.True(t, resp.NewlyPassed)
	assert.Equal(t, 80, resp.ScorePercent)

	// Beginner lesson at level 1, no performance bonus.
	require.NotNil(t, resp.XP)
	assert.Equal(t, 100, resp.XP.TotalXP)
	assert.Equal(t, 100, resp.TotalXP)

	// 100 XP is exactly the level 2 boundary.
	assert.Equal(t, 2, resp.Level)
	assert.True(t, resp.LeveledUp)

	assert.Equal(t, 50, resp.CourseProgress)
	assert.Equal(t, 25, resp.ProgramProgress)
	assert.Equal(t, 1, resp.Streak)
}

func TestSubmitLessonNoXPFarming(t *testing.T) {
	store := newTestStore(t)
	svc := newSubmissionService(store)

	seedHierarchy(t, store)
	seedUser(t, store, "u1")
	enrollUser(t, store, "u1", "prog1")

	first, err := svc.SubmitLesson("u1", submitReq("l1", 8, 10))
	require.NoError(t, err)

	// A repeat pass records the attempt but earns nothing.
	second, err := svc.SubmitLesson("u1", submitReq("l1", 10, 10))
	require.NoError(t, err)

	assert.True(t, second.Passed)
	assert.False(t, second.NewlyPassed)
	assert.Nil(t, second.XP)
	assert.Equal(t, first.TotalXP, second.TotalXP)
	assert.Equal(t, first.Level, second.Level)
	assert.False(t, second.LeveledUp)
}

func TestSubmitLessonFailThenPass(t *testing.T) {
	store := newTestStore(t)
	svc := newSubmissionService(store)

	seedHierarchy(t, store)
	seedUser(t, store, "u1")
	enrollUser(t, store, "u1", "prog1")

	failed, err := svc.SubmitLesson("u1", submitReq("l1", 4, 10))
	require.NoError(t, err)
	assert.False(t, failed.Passed)
	assert.False(t, failed.NewlyPassed)
	assert.Nil(t, failed.XP)
	assert.Equal(t, 0, failed.TotalXP)
	assert.Equal(t, 0, failed.CourseProgress)

	passed, err := svc.SubmitLesson("u1", submitReq("l1", 7, 10))
	require.NoError(t, err)
	assert.True(t, passed.Passed)
	assert.True(t, passed.NewlyPassed)
	require.NotNil(t, passed.XP)
}

func TestSubmitLessonFailedRetryKeepsPass(t *testing.T) {
	store := newTestStore(t)
	svc := newSubmissionService(store)

	seedHierarchy(t, store)
	seedUser(t, store, "u1")
	enrollUser(t, store, "u1", "prog1")

	_, err := svc.SubmitLesson("u1", submitReq("l1", 8, 10))
	require.NoError(t, err)

	// A failed retry reports the failure but does not revoke the pass.
	resp, err := svc.SubmitLesson("u1", submitReq("l1", 2, 10))
	require.NoError(t, err)
	assert.False(t, resp.Passed)
	assert.Equal(t, 50, resp.CourseProgress)

	attempt, err := store.GetLessonAttempt("u1", "l1")
	require.NoError(t, err)
	assert.True(t, attempt.Passed)
}

func TestSubmitLessonLockedIsRejected(t *testing.T) {
	store := newTestStore(t)
	svc := newSubmissionService(store)

	seedHierarchy(t, store)
	seedUser(t, store, "u1")
	enrollUser(t, store, "u1", "prog1")

	_, err := svc.SubmitLesson("u1", submitReq("l2", 10, 10))
	require.Error(t, err)

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, appErr.StatusCode)

	// Nothing was recorded for the locked lesson.
	_, err = store.GetLessonAttempt("u1", "l2")
	require.Error(t, err)
}

func TestSubmitLessonNotEnrolledIsRejected(t *testing.T) {
	store := newTestStore(t)
	svc := newSubmissionService(store)

	seedHierarchy(t, store)
	seedUser(t, store, "u1")

	_, err := svc.SubmitLesson("u1", submitReq("l1", 10, 10))
	require.Error(t, err)

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, appErr.StatusCode)
}

func TestSubmitLessonZeroMaxScore(t *testing.T) {
	store := newTestStore(t)
	svc := newSubmissionService(store)

	seedHierarchy(t, store)
	seedUser(t, store, "u1")
	enrollUser(t, store, "u1", "prog1")

	resp, err := svc.SubmitLesson("u1", submitReq("l1", 5, 0))
	require.NoError(t, err)
	assert.False(t, resp.Passed)
	assert.Equal(t, 0, resp.ScorePercent)
}

func TestSubmitLessonBadgeXPAdds(t *testing.T) {
	store := newTestStore(t)
	svc := newSubmissionService(store)

	seedHierarchy(t, store)
	seedUser(t, store, "u1")
	enrollUser(t, store, "u1", "prog1")

	_, err := store.CreateBadge(&model.Badge{
		ID:             "b_first",
		Name:           "First Steps",
		Scope:          model.ScopeLesson,
		XPBonus:        25,
		CriteriaType:   model.CriteriaFirstLesson,
		CriteriaParams: model.MustParams(model.FirstLessonCriteria{}),
		IsActive:       true,
	})
	require.NoError(t, err)

	resp, err := svc.SubmitLesson("u1", submitReq("l1", 10, 10))
	require.NoError(t, err)

	// Perfect beginner pass at level 1: round(100 x 1.0 x 1.0) + 50.
	require.NotNil(t, resp.XP)
	assert.Equal(t, 150, resp.XP.TotalXP)
	require.Len(t, resp.NewBadges, 1)
	assert.Equal(t, 25, resp.TotalBadgeXP)
	assert.Equal(t, 175, resp.TotalXP)

	user, err := store.GetUser("u1")
	require.NoError(t, err)
	assert.Equal(t, 175, user.XP)
	assert.Equal(t, 1, user.PerfectQuizCount)
	assert.Equal(t, 1, user.ExcellentQuizCount)
}

func TestSubmitLessonFullCascadeInOneCall(t *testing.T) {
	store := newTestStore(t)
	svc := newSubmissionService(store)

	seedHierarchy(t, store)
	seedUser(t, store, "u1")
	enrollUser(t, store, "u1", "prog1")

	badges := []model.Badge{
		{
			ID:             "b_lessons",
			Name:           "Four Lessons",
			Scope:          model.ScopeLesson,
			XPBonus:        30,
			CriteriaType:   model.CriteriaTotalLessons,
			CriteriaParams: model.MustParams(model.TotalLessonsCriteria{Count: 4}),
			IsActive:       true,
		},
		{
			ID:             "b_course",
			Name:           "Course Done",
			Scope:          model.ScopeCourse,
			XPBonus:        40,
			CriteriaType:   model.CriteriaCompleteCourse,
			CriteriaParams: model.MustParams(model.CompleteCourseCriteria{CourseID: "c2"}),
			IsActive:       true,
		},
		{
			ID:             "b_program",
			Name:           "Program Done",
			Scope:          model.ScopeProgram,
			XPBonus:        60,
			CriteriaType:   model.CriteriaCompleteProgram,
			CriteriaParams: model.MustParams(model.CompleteProgramCriteria{}),
			IsActive:       true,
		},
	}
	for i := range badges {
		_, err := store.CreateBadge(&badges[i])
		require.NoError(t, err)
	}

	now := time.Now()
	passLesson(t, store, "u1", "l1", now.Add(-3*time.Hour))
	passLesson(t, store, "u1", "l2", now.Add(-2*time.Hour))
	passLesson(t, store, "u1", "l3", now.Add(-time.Hour))

	// The last submission completes the lesson count, the course and
	// the program at once; all three badges must land in this call.
	resp, err := svc.SubmitLesson("u1", submitReq("l4", 8, 10))
	require.NoError(t, err)

	require.True(t, resp.Passed)
	require.True(t, resp.NewlyPassed)

	require.Len(t, resp.NewBadges, 3)
	assert.Equal(t, "b_lessons", resp.NewBadges[0].ID)
	assert.Equal(t, "b_course", resp.NewBadges[1].ID)
	assert.Equal(t, "b_program", resp.NewBadges[2].ID)
	assert.Equal(t, 130, resp.TotalBadgeXP)

	// Advanced lesson at level 1, 80%: round(100 x 1.5 x 1.0).
	require.NotNil(t, resp.XP)
	assert.Equal(t, 150, resp.XP.TotalXP)

	// Lesson XP and all badge XP fold into the same response.
	assert.Equal(t, 280, resp.TotalXP)
	assert.Equal(t, 3, resp.Level)
	assert.True(t, resp.LeveledUp)
	assert.Equal(t, 100, resp.CourseProgress)
	assert.Equal(t, 100, resp.ProgramProgress)

	user, err := store.GetUser("u1")
	require.NoError(t, err)
	assert.Equal(t, 280, user.XP)
	assert.Equal(t, 3, user.Level)
}

func TestGetUserProgressSummary(t *testing.T) {
	store := newTestStore(t)
	svc := newSubmissionService(store)

	seedHierarchy(t, store)
	seedUser(t, store, "u1")
	enrollUser(t, store, "u1", "prog1")

	_, err := svc.SubmitLesson("u1", submitReq("l1", 9, 10))
	require.NoError(t, err)

	summary, err := svc.GetUserProgress("u1")
	require.NoError(t, err)

	assert.Equal(t, "u1", summary.UserID)
	assert.Greater(t, summary.XP, 0)
	assert.GreaterOrEqual(t, summary.Level, 2)
	assert.Equal(t, 1, summary.CurrentStreak)
	assert.Equal(t, 1, summary.LongestStreak)
	assert.Greater(t, summary.XPToNextLevel, 0)
	assert.Equal(t, 1, summary.ExcellentQuizCount)
}

func TestScorePercentageRounding(t *testing.T) {
	assert.Equal(t, 0, scorePercentage(0, 10))
	assert.Equal(t, 67, scorePercentage(2, 3))
	assert.Equal(t, 33, scorePercentage(1, 3))
	assert.Equal(t, 100, scorePercentage(10, 10))
	assert.Equal(t, 0, scorePercentage(5, 0))
}
