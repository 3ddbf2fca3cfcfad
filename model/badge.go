package model

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	ScopeLesson     = "lesson"
	ScopeCourse     = "course"
	ScopeProgram    = "program"
	ScopeAccuracy   = "accuracy"
	ScopeDifficulty = "difficulty"
	ScopeStreak     = "streak"
	ScopeSpecial    = "special"
)

const (
	TierBronze = "bronze"
	TierSilver = "silver"
	TierGold   = "gold"
)

const (
	CriteriaFirstLesson       = "FIRST_LESSON"
	CriteriaPerfectScore      = "PERFECT_SCORE"
	CriteriaExcellentScore    = "EXCELLENT_SCORE"
	CriteriaTotalLessons      = "TOTAL_LESSONS"
	CriteriaStreak            = "STREAK"
	CriteriaCompleteCourse    = "COMPLETE_COURSE"
	CriteriaCompleteProgram   = "COMPLETE_PROGRAM"
	CriteriaHighScore         = "HIGH_SCORE"
	CriteriaDifficultyLessons = "DIFFICULTY_LESSONS"
)

// Badge is a declaratively defined achievement. The criteria are stored
// as a (type, params) pair and decoded into exactly one Criteria
// variant; an unknown type is rejected when the row is parsed, not
// silently evaluated to false.
type Badge struct {
	ID             string          `json:"id" gorm:"primaryKey"`
	Name           string          `json:"name" gorm:"not null"`
	Description    string          `json:"description"`
	Scope          string          `json:"scope" gorm:"not null;index"` // lesson, course, program, accuracy, difficulty, streak, special
	Tier           string          `json:"tier" gorm:"default:bronze"`
	XPBonus        int             `json:"xp_bonus" gorm:"default:0"`
	CriteriaType   string          `json:"criteria_type" gorm:"not null"`
	CriteriaParams json.RawMessage `json:"criteria_params" gorm:"type:text"`
	IsActive       bool            `json:"is_active" gorm:"default:true"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// UserBadge records a single award. The composite unique index is the
// idempotency guard: insert-if-absent, at most one row per (user,
// badge), never deleted by the engine.
type UserBadge struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"not null;uniqueIndex:idx_user_badge"`
	BadgeID   string    `json:"badge_id" gorm:"not null;uniqueIndex:idx_user_badge"`
	EarnedAt  time.Time `json:"earned_at"`
	CreatedAt time.Time `json:"created_at"`

	User  User  `json:"-" gorm:"foreignKey:UserID"`
	Badge Badge `json:"badge" gorm:"foreignKey:BadgeID"`
}

// Criteria is the decoded form of a badge's unlock condition, one
// variant per criteria type.
type Criteria interface {
	CriteriaType() string
}

type FirstLessonCriteria struct{}

type PerfectScoreCriteria struct {
	Count int `json:"count"`
}

type ExcellentScoreCriteria struct {
	Count int `json:"count"`
}

type TotalLessonsCriteria struct {
	Count int `json:"count"`
}

type StreakCriteria struct {
	Days int `json:"days"`
}

// CompleteCourseCriteria matches a specific course when CourseID is
// set, otherwise the course the triggering submission belongs to.
type CompleteCourseCriteria struct {
	CourseID string `json:"course_id,omitempty"`
}

type CompleteProgramCriteria struct {
	ProgramID string `json:"program_id,omitempty"`
}

type HighScoreCriteria struct {
	Threshold int `json:"threshold"`
}

type DifficultyLessonsCriteria struct {
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"`
}

func (FirstLessonCriteria) CriteriaType() string       { return CriteriaFirstLesson }
func (PerfectScoreCriteria) CriteriaType() string      { return CriteriaPerfectScore }
func (ExcellentScoreCriteria) CriteriaType() string    { return CriteriaExcellentScore }
func (TotalLessonsCriteria) CriteriaType() string      { return CriteriaTotalLessons }
func (StreakCriteria) CriteriaType() string            { return CriteriaStreak }
func (CompleteCourseCriteria) CriteriaType() string    { return CriteriaCompleteCourse }
func (CompleteProgramCriteria) CriteriaType() string   { return CriteriaCompleteProgram }
func (HighScoreCriteria) CriteriaType() string         { return CriteriaHighScore }
func (DifficultyLessonsCriteria) CriteriaType() string { return CriteriaDifficultyLessons }

// ParseCriteria decodes the stored (type, params) pair into its
// Criteria variant.
func (b *Badge) ParseCriteria() (Criteria, error) {
	params := b.CriteriaParams
	if len(params) == 0 {
		params = json.RawMessage("{}")
	}

	switch b.CriteriaType {
	case CriteriaFirstLesson:
		return FirstLessonCriteria{}, nil
	case CriteriaPerfectScore:
		var c PerfectScoreCriteria
		return c, json.Unmarshal(params, &c)
	case CriteriaExcellentScore:
		var c ExcellentScoreCriteria
		return c, json.Unmarshal(params, &c)
	case CriteriaTotalLessons:
		var c TotalLessonsCriteria
		return c, json.Unmarshal(params, &c)
	case CriteriaStreak:
		var c StreakCriteria
		return c, json.Unmarshal(params, &c)
	case CriteriaCompleteCourse:
		var c CompleteCourseCriteria
		return c, json.Unmarshal(params, &c)
	case CriteriaCompleteProgram:
		var c CompleteProgramCriteria
		return c, json.Unmarshal(params, &c)
	case CriteriaHighScore:
		var c HighScoreCriteria
		return c, json.Unmarshal(params, &c)
	case CriteriaDifficultyLessons:
		var c DifficultyLessonsCriteria
		return c, json.Unmarshal(params, &c)
	default:
		return nil, fmt.Errorf("unknown badge criteria type %q", b.CriteriaType)
	}
}

// MustParams marshals a criteria variant back into the params column.
// Used by the seeder and tests.
func MustParams(c Criteria) json.RawMessage {
	b, err := json.Marshal(c)
	if err != nil {
		panic(err)
	}
	return b
}
