package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ascent-learning/ascent_api/dto"
	"github.com/ascent-learning/ascent_api/model"
	"github.com/ascent-learning/ascent_api/shared"
)

// SubmissionService orchestrates a lesson submission end to end: access
// gate, attempt writes, XP award, badge cascade, response assembly. The
// attempt upsert and XP update are authoritative; badge and streak
// failures degrade to log lines and the learner still sees the lesson
// complete.
type SubmissionService struct {
	context.DefaultService

	sqlSvc      *PostgresService
	accessSvc   *AccessService
	progressSvc *ProgressService
	xpSvc       *XPService
	badgeSvc    *BadgeService
	streakSvc   *StreakService
}

const SUBMISSION_SVC = "submission_svc"

func (svc SubmissionService) Id() string {
	return SUBMISSION_SVC
}

func (svc *SubmissionService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *SubmissionService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.accessSvc = svc.Service(ACCESS_SVC).(*AccessService)
	svc.progressSvc = svc.Service(PROGRESS_SVC).(*ProgressService)
	svc.xpSvc = svc.Service(XP_SVC).(*XPService)
	svc.badgeSvc = svc.Service(BADGE_SVC).(*BadgeService)
	svc.streakSvc = svc.Service(STREAK_SVC).(*StreakService)
	return nil
}

func (svc *SubmissionService) SubmitLesson(userID string, req dto.SubmitLessonRequest) (*dto.SubmitLessonResponse, error) {
	access, err := svc.accessSvc.CheckLessonAccess(userID, req.ProgramID, req.CourseID, req.LessonID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to verify lesson access")
	}
	if !access.CanAccess {
		return nil, svc.accessError(access.Reason)
	}

	lesson, err := svc.sqlSvc.GetLesson(req.LessonID)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Lesson not found")
	}

	scorePercent := scorePercentage(req.Score, req.MaxScore)
	passed := scorePercent >= lesson.MinScore

	previous, err := svc.sqlSvc.GetLessonAttempt(userID, req.LessonID)
	previouslyPassed := false
	if err == nil {
		previouslyPassed = previous.Passed
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.NewInternalError(err, "Failed to load lesson attempt")
	}

	// A failed retry never revokes an earlier pass; progress and
	// unlocking stay monotone.
	now := time.Now()
	attempt := &model.LessonAttempt{
		UserID:       userID,
		LessonID:     req.LessonID,
		Passed:       passed || previouslyPassed,
		QuizScore:    req.Score,
		QuizMaxScore: req.MaxScore,
		TimeSpent:    req.TimeSpent,
	}
	if attempt.Passed {
		attempt.CompletedAt = &now
	}
	if err := svc.sqlSvc.UpsertLessonAttempt(attempt); err != nil {
		return nil, shared.NewInternalError(err, "Failed to record lesson attempt")
	}

	quizAttempt := &model.QuizAttempt{
		UserID:   userID,
		LessonID: req.LessonID,
		Score:    req.Score,
		MaxScore: req.MaxScore,
		Passed:   passed,
	}
	if err := svc.sqlSvc.CreateQuizAttempt(quizAttempt); err != nil {
		return nil, shared.NewInternalError(err, "Failed to record quiz attempt")
	}

	recordSubmission(passed)

	resp := &dto.SubmitLessonResponse{
		Passed:       passed,
		ScorePercent: scorePercent,
		NewlyPassed:  passed && !previouslyPassed,
		NewBadges:    []dto.BadgeResponse{},
	}

	user, err := svc.sqlSvc.GetUser(userID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load user")
	}
	levelBefore := user.Level
	resp.Level = user.Level
	resp.TotalXP = user.XP

	// XP is earned on the first passing attempt only; retries of an
	// already-passed lesson cannot farm it.
	if resp.NewlyPassed {
		breakdown := svc.xpSvc.AwardXP(BaseLessonXP, lesson.Difficulty, user.Level, scorePercent)
		resp.XP = &breakdown

		perfectInc, excellentInc := 0, 0
		if scorePercent == 100 {
			perfectInc = 1
		}
		if scorePercent >= 90 {
			excellentInc = 1
		}

		user, err = svc.applyXP(user, breakdown.TotalXP, perfectInc, excellentInc)
		if err != nil {
			return nil, shared.NewInternalError(err, "Failed to apply XP award")
		}
		resp.Level = user.Level
		resp.TotalXP = user.XP
	}

	// Badge cascade: best-effort relative to the attempt record above.
	cascade := svc.badgeSvc.RunCascade(userID, CascadeSignal{
		LessonID:     req.LessonID,
		CourseID:     req.CourseID,
		ProgramID:    req.ProgramID,
		ScorePercent: scorePercent,
		Difficulty:   lesson.Difficulty,
	})
	resp.NewBadges = cascade.NewBadges
	resp.TotalBadgeXP = cascade.TotalXPAwarded

	if cascade.TotalXPAwarded > 0 {
		user, err = svc.applyXP(user, cascade.TotalXPAwarded, 0, 0)
		if err != nil {
			log.WithError(err).WithField("user_id", userID).Error("Failed to apply badge XP")
		} else {
			resp.Level = user.Level
			resp.TotalXP = user.XP
		}
	}

	resp.LeveledUp = resp.Level > levelBefore

	svc.fillReadSide(userID, req, resp)
	return resp, nil
}

// applyXP adds the delta plus counters, recomputes the level from the
// post-update XP and reports whether the user leveled up.
func (svc *SubmissionService) applyXP(user *model.User, delta, perfectInc, excellentInc int) (*model.User, error) {
	previousLevel := user.Level

	updated, err := svc.sqlSvc.AddUserXP(user.ID, delta, perfectInc, excellentInc)
	if err != nil {
		return user, err
	}

	newLevel := svc.xpSvc.CalculateLevel(updated.XP)
	if newLevel > updated.Level {
		if err := svc.sqlSvc.SetUserLevelIfHigher(user.ID, newLevel); err != nil {
			return updated, err
		}
		updated.Level = newLevel
	}

	if updated.Level > previousLevel {
		recordLevelUp()
		log.WithFields(log.Fields{
			"user_id": user.ID,
			"level":   updated.Level,
		}).Info("User leveled up")
	}

	recordXPAwarded(delta)
	return updated, nil
}

// fillReadSide decorates the response with progress and streak. These
// are display values; failures are logged, never surfaced.
func (svc *SubmissionService) fillReadSide(userID string, req dto.SubmitLessonRequest, resp *dto.SubmitLessonResponse) {
	if courseProgress, err := svc.progressSvc.CourseProgress(userID, req.CourseID); err == nil {
		resp.CourseProgress = courseProgress
	} else {
		log.WithError(err).WithField("user_id", userID).Warn("Failed to compute course progress")
	}

	if programProgress, err := svc.progressSvc.ProgramProgress(userID, req.ProgramID); err == nil {
		resp.ProgramProgress = programProgress
	} else {
		log.WithError(err).WithField("user_id", userID).Warn("Failed to compute program progress")
	}

	if streak, err := svc.streakSvc.CurrentStreak(userID); err == nil {
		resp.Streak = streak
	} else {
		log.WithError(err).WithField("user_id", userID).Warn("Failed to compute streak")
	}
}

// GetUserProgress assembles the dashboard summary.
func (svc *SubmissionService) GetUserProgress(userID string) (*dto.UserProgressResponse, error) {
	user, err := svc.sqlSvc.GetUser(userID)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "User not found")
	}

	currentStreak, err := svc.streakSvc.CurrentStreak(userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Failed to compute streak")
	}
	longestStreak, err := svc.streakSvc.LongestStreak(userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Failed to compute longest streak")
	}

	badges, err := svc.badgeSvc.GetUserBadges(userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Failed to load user badges")
		badges = []dto.BadgeResponse{}
	}

	recent := badges
	const recentWindow = 7 * 24 * time.Hour
	filtered := make([]dto.BadgeResponse, 0, len(recent))
	for _, b := range recent {
		if b.EarnedAt != nil && time.Since(*b.EarnedAt) <= recentWindow {
			filtered = append(filtered, b)
		}
	}

	return &dto.UserProgressResponse{
		UserID:             userID,
		XP:                 user.XP,
		Level:              user.Level,
		XPToNextLevel:      svc.xpSvc.XPToNextLevel(user.XP),
		PerfectQuizCount:   user.PerfectQuizCount,
		ExcellentQuizCount: user.ExcellentQuizCount,
		CurrentStreak:      currentStreak,
		LongestStreak:      longestStreak,
		RecentBadges:       filtered,
	}, nil
}

func (svc *SubmissionService) accessError(reason string) error {
	data := dto.LessonAccessResponse{CanAccess: false, Reason: reason}
	switch reason {
	case shared.AccessReasonNotFound:
		return shared.NewNotFoundError(fmt.Errorf("lesson access: %s", reason), "Lesson not found").WithData(data)
	case shared.AccessReasonNotEnrolled:
		return shared.NewForbiddenError(fmt.Errorf("lesson access: %s", reason), "Not enrolled in this program").WithData(data)
	case shared.AccessReasonNotInHierarchy:
		return shared.NewBadRequestError(fmt.Errorf("lesson access: %s", reason), "Lesson is not part of this course").WithData(data)
	case shared.AccessReasonLocked:
		return shared.NewForbiddenError(fmt.Errorf("lesson access: %s", reason), "Lesson is locked").WithData(data)
	default:
		return shared.NewForbiddenError(fmt.Errorf("lesson access: %s", reason), "Access denied").WithData(data)
	}
}

func scorePercentage(score, maxScore int) int {
	if maxScore <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(score) / float64(maxScore)))
}
