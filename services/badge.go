package services

import (
	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"

	"github.com/ascent-learning/ascent_api/dto"
	"github.com/ascent-learning/ascent_api/model"
)

// BadgeService evaluates the declarative badge catalog against a user's
// aggregate state and awards anything newly satisfied. Awarding is
// insert-if-absent on the (user, badge) unique index, so re-evaluation
// is always safe.
type BadgeService struct {
	context.DefaultService

	sqlSvc      *PostgresService
	progressSvc *ProgressService
	streakSvc   *StreakService
}

const BADGE_SVC = "badge_svc"

// CascadeSignal carries the facts of the triggering submission into
// criteria evaluation.
type CascadeSignal struct {
	LessonID     string
	CourseID     string
	ProgramID    string
	ScorePercent int
	Difficulty   string
}

// cascadeScopes is the pipeline order. Lesson-scope badges must land
// before course and program scopes so that count-based criteria see the
// just-written attempt, and their XP accumulates in order.
var cascadeScopes = []string{model.ScopeLesson, model.ScopeCourse, model.ScopeProgram}

// scopeCategories widens each cascade stage to the catalog categories
// whose signals are freshest at that point. Accuracy, difficulty,
// streak and special badges ride along with the lesson stage.
var scopeCategories = map[string][]string{
	model.ScopeLesson:  {model.ScopeLesson, model.ScopeAccuracy, model.ScopeDifficulty, model.ScopeStreak, model.ScopeSpecial},
	model.ScopeCourse:  {model.ScopeCourse},
	model.ScopeProgram: {model.ScopeProgram},
}

func (svc BadgeService) Id() string {
	return BADGE_SVC
}

func (svc *BadgeService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *BadgeService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.progressSvc = svc.Service(PROGRESS_SVC).(*ProgressService)
	svc.streakSvc = svc.Service(STREAK_SVC).(*StreakService)
	return nil
}

// RunCascade processes the lesson → course → program scopes in order,
// accumulating newly awarded badges and their XP. Errors inside a scope
// are already degraded per badge; an error fetching a scope's catalog
// is logged and the remaining scopes still run.
func (svc *BadgeService) RunCascade(userID string, sig CascadeSignal) *dto.BadgeAwardResult {
	result := &dto.BadgeAwardResult{NewBadges: []dto.BadgeResponse{}}

	for _, scope := range cascadeScopes {
		scopeResult, err := svc.CheckAndAwardBadges(userID, scope, sig)
		if err != nil {
			log.WithError(err).WithFields(log.Fields{
				"user_id": userID,
				"scope":   scope,
			}).Error("Badge scope evaluation failed")
			continue
		}
		result.NewBadges = append(result.NewBadges, scopeResult.NewBadges...)
		result.TotalXPAwarded += scopeResult.TotalXPAwarded
	}

	return result
}

// CheckAndAwardBadges scans the catalog for one scope and awards every
// badge whose criteria newly hold and which the user does not already
// own. A badge that fails to evaluate or award is logged and skipped,
// never fatal to the rest of the scan.
func (svc *BadgeService) CheckAndAwardBadges(userID, scope string, sig CascadeSignal) (*dto.BadgeAwardResult, error) {
	categories, ok := scopeCategories[scope]
	if !ok {
		categories = []string{scope}
	}

	badges, err := svc.sqlSvc.GetActiveBadgesByScopes(categories)
	if err != nil {
		return nil, err
	}

	owned, err := svc.sqlSvc.GetUserBadgeIDs(userID)
	if err != nil {
		return nil, err
	}

	result := &dto.BadgeAwardResult{NewBadges: []dto.BadgeResponse{}}

	for i := range badges {
		badge := &badges[i]
		if owned[badge.ID] {
			continue
		}

		satisfied, err := svc.evaluate(userID, badge, sig)
		if err != nil {
			log.WithError(err).WithFields(log.Fields{
				"user_id":  userID,
				"badge_id": badge.ID,
			}).Error("Failed to evaluate badge criteria")
			continue
		}
		if !satisfied {
			continue
		}

		awarded, err := svc.sqlSvc.AwardBadge(userID, badge.ID)
		if err != nil {
			log.WithError(err).WithFields(log.Fields{
				"user_id":  userID,
				"badge_id": badge.ID,
			}).Error("Failed to award badge")
			continue
		}
		if !awarded {
			// A concurrent submission won the insert. Not an error.
			continue
		}

		recordBadgeAwarded(badge.Scope)
		result.NewBadges = append(result.NewBadges, dto.BadgeResponse{
			ID:          badge.ID,
			Name:        badge.Name,
			Description: badge.Description,
			Scope:       badge.Scope,
			Tier:        badge.Tier,
			XPBonus:     badge.XPBonus,
		})
		result.TotalXPAwarded += badge.XPBonus
	}

	return result, nil
}

// evaluate dispatches over the decoded criteria sum type.
func (svc *BadgeService) evaluate(userID string, badge *model.Badge, sig CascadeSignal) (bool, error) {
	criteria, err := badge.ParseCriteria()
	if err != nil {
		return false, err
	}

	switch c := criteria.(type) {
	case model.FirstLessonCriteria:
		count, err := svc.sqlSvc.CountPassedAttempts(userID)
		return count >= 1, err

	case model.TotalLessonsCriteria:
		count, err := svc.sqlSvc.CountPassedAttempts(userID)
		return count >= c.Count, err

	case model.PerfectScoreCriteria:
		user, err := svc.sqlSvc.GetUser(userID)
		if err != nil {
			return false, err
		}
		return user.PerfectQuizCount >= max(c.Count, 1), nil

	case model.ExcellentScoreCriteria:
		user, err := svc.sqlSvc.GetUser(userID)
		if err != nil {
			return false, err
		}
		return user.ExcellentQuizCount >= max(c.Count, 1), nil

	case model.StreakCriteria:
		streak, err := svc.streakSvc.CurrentStreak(userID)
		return streak >= c.Days, err

	case model.HighScoreCriteria:
		return sig.ScorePercent >= c.Threshold, nil

	case model.DifficultyLessonsCriteria:
		count, err := svc.sqlSvc.CountPassedAttemptsByDifficulty(userID, c.Difficulty)
		return count >= c.Count, err

	case model.CompleteCourseCriteria:
		courseID := c.CourseID
		if courseID == "" {
			courseID = sig.CourseID
		}
		if courseID == "" {
			return false, nil
		}
		progress, err := svc.progressSvc.CourseProgress(userID, courseID)
		return progress == 100, err

	case model.CompleteProgramCriteria:
		programID := c.ProgramID
		if programID == "" {
			programID = sig.ProgramID
		}
		if programID == "" {
			return false, nil
		}
		progress, err := svc.progressSvc.ProgramProgress(userID, programID)
		return progress == 100, err

	default:
		// ParseCriteria already rejects unknown types; this is the
		// compiler's exhaustiveness escape hatch.
		return false, nil
	}
}

// GetCatalog returns every active badge with the user's earned state.
func (svc *BadgeService) GetCatalog(userID string) (*dto.BadgeCatalogResponse, error) {
	badges, err := svc.sqlSvc.GetActiveBadges()
	if err != nil {
		return nil, err
	}

	userBadges, err := svc.sqlSvc.GetUserBadges(userID)
	if err != nil {
		return nil, err
	}

	earnedAt := make(map[string]*model.UserBadge, len(userBadges))
	for i := range userBadges {
		earnedAt[userBadges[i].BadgeID] = &userBadges[i]
	}

	responses := make([]dto.BadgeResponse, len(badges))
	earned := 0
	for i, badge := range badges {
		responses[i] = dto.BadgeResponse{
			ID:          badge.ID,
			Name:        badge.Name,
			Description: badge.Description,
			Scope:       badge.Scope,
			Tier:        badge.Tier,
			XPBonus:     badge.XPBonus,
		}
		if ub, ok := earnedAt[badge.ID]; ok {
			t := ub.EarnedAt
			responses[i].EarnedAt = &t
			earned++
		}
	}

	return &dto.BadgeCatalogResponse{
		Badges: responses,
		Total:  len(responses),
		Earned: earned,
	}, nil
}

// GetUserBadges returns only the user's earned badges, newest first.
func (svc *BadgeService) GetUserBadges(userID string) ([]dto.BadgeResponse, error) {
	userBadges, err := svc.sqlSvc.GetUserBadges(userID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.BadgeResponse, len(userBadges))
	for i, ub := range userBadges {
		t := ub.EarnedAt
		responses[i] = dto.BadgeResponse{
			ID:          ub.Badge.ID,
			Name:        ub.Badge.Name,
			Description: ub.Badge.Description,
			Scope:       ub.Badge.Scope,
			Tier:        ub.Badge.Tier,
			XPBonus:     ub.Badge.XPBonus,
			EarnedAt:    &t,
		}
	}
	return responses, nil
}
