package dto

import "time"

// Lesson access

type LessonAccessResponse struct {
	CanAccess bool   `json:"can_access"`
	Reason    string `json:"reason,omitempty"` // NOT_FOUND, NOT_ENROLLED, NOT_IN_HIERARCHY, LOCKED
}

type CourseAccessResponse struct {
	CanAccess bool   `json:"can_access"`
	Reason    string `json:"reason,omitempty"`
}

// Submission

type SubmitLessonRequest struct {
	ProgramID string `json:"program_id" validate:"required"`
	CourseID  string `json:"course_id" validate:"required"`
	LessonID  string `json:"lesson_id" validate:"required"`
	Score     int    `json:"score" validate:"min=0"`
	MaxScore  int    `json:"max_score" validate:"min=0"`
	TimeSpent int    `json:"time_spent" validate:"min=0"` // seconds
}

func (r SubmitLessonRequest) Validate() error {
	return GetValidator().Struct(r)
}

// XPBreakdown reports every factor of an XP award so the client can
// render the formula.
type XPBreakdown struct {
	BaseXP               int     `json:"base_xp"`
	DifficultyMultiplier float64 `json:"difficulty_multiplier"`
	LevelMultiplier      float64 `json:"level_multiplier"`
	PerformanceBonus     int     `json:"performance_bonus"`
	PerformanceLabel     string  `json:"performance_label,omitempty"`
	TotalXP              int     `json:"total_xp"`
	Formula              string  `json:"formula"`
}

type SubmitLessonResponse struct {
	Passed       bool `json:"passed"`
	ScorePercent int  `json:"score_percent"`
	NewlyPassed  bool `json:"newly_passed"`

	XP        *XPBreakdown `json:"xp,omitempty"`
	LeveledUp bool         `json:"leveled_up"`
	Level     int          `json:"level"`
	TotalXP   int          `json:"total_xp"`

	NewBadges    []BadgeResponse `json:"new_badges"`
	TotalBadgeXP int             `json:"total_badge_xp"`

	CourseProgress  int `json:"course_progress"`
	ProgramProgress int `json:"program_progress"`
	Streak          int `json:"streak"`
}

// Progress views

type UserProgressResponse struct {
	UserID             string          `json:"user_id"`
	XP                 int             `json:"xp"`
	Level              int             `json:"level"`
	XPToNextLevel      int             `json:"xp_to_next_level"`
	PerfectQuizCount   int             `json:"perfect_quiz_count"`
	ExcellentQuizCount int             `json:"excellent_quiz_count"`
	CurrentStreak      int             `json:"current_streak"`
	LongestStreak      int             `json:"longest_streak"`
	RecentBadges       []BadgeResponse `json:"recent_badges"`
}

type CourseProgressResponse struct {
	CourseID       string         `json:"course_id"`
	Progress       int            `json:"progress"` // [0,100]
	TotalLessons   int            `json:"total_lessons"`
	PassedLessons  int            `json:"passed_lessons"`
	LessonStatuses []LessonStatus `json:"lesson_statuses"`
}

type LessonStatus struct {
	LessonID    string     `json:"lesson_id"`
	Order       int        `json:"order"`
	Passed      bool       `json:"passed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type ProgramProgressResponse struct {
	ProgramID string                   `json:"program_id"`
	Progress  int                      `json:"progress"` // [0,100]
	Courses   []CourseProgressResponse `json:"courses"`
}
