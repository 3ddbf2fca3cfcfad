package model

import "time"

// LessonAttempt is the single current-state record of a user's
// relationship to a lesson. One row per (user, lesson), enforced by the
// composite unique index; re-submission upserts, it never appends.
type LessonAttempt struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	UserID       string     `json:"user_id" gorm:"not null;uniqueIndex:idx_user_lesson"`
	LessonID     string     `json:"lesson_id" gorm:"not null;uniqueIndex:idx_user_lesson"`
	Passed       bool       `json:"passed" gorm:"not null;default:false"`
	QuizScore    int        `json:"quiz_score" gorm:"not null;default:0"`
	QuizMaxScore int        `json:"quiz_max_score" gorm:"not null;default:0"`
	TimeSpent    int        `json:"time_spent" gorm:"not null;default:0"` // seconds
	CompletedAt  *time.Time `json:"completed_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	User   User   `json:"-" gorm:"foreignKey:UserID"`
	Lesson Lesson `json:"-" gorm:"foreignKey:LessonID"`
}

// QuizAttempt is the append-only history of individual quiz
// submissions, one row per submission. Feeds the streak tracker and the
// accuracy counters; distinct from the single current LessonAttempt.
type QuizAttempt struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"not null;index"`
	LessonID  string    `json:"lesson_id" gorm:"not null;index"`
	Score     int       `json:"score" gorm:"not null"`
	MaxScore  int       `json:"max_score" gorm:"not null"`
	Passed    bool      `json:"passed" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`

	User   User   `json:"-" gorm:"foreignKey:UserID"`
	Lesson Lesson `json:"-" gorm:"foreignKey:LessonID"`
}
