// model/content.go
package model

import (
	"encoding/json"
	"time"
)

const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// Program is the top level of the authored content hierarchy.
type Program struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description" gorm:"type:text"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Course struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description" gorm:"type:text"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Lesson is an individual unit of learning content, optionally carrying
// a quiz (JSON array of questions).
type Lesson struct {
	ID         string          `json:"id" gorm:"primaryKey"`
	Title      string          `json:"title" gorm:"not null"`
	Content    string          `json:"content" gorm:"type:text"`
	Difficulty string          `json:"difficulty" gorm:"default:beginner"` // beginner, intermediate, advanced
	Quiz       json.RawMessage `json:"quiz" gorm:"type:text"`
	MinScore   int             `json:"min_score" gorm:"default:60"` // minimum score percent to pass
	IsActive   bool            `json:"is_active" gorm:"default:true"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ProgramCourse orders courses within a program. Order is zero-based,
// unique per program and contiguous after any removal; it is the
// backbone of the course unlock state machine.
type ProgramCourse struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	ProgramID string    `json:"program_id" gorm:"not null;uniqueIndex:idx_program_course;uniqueIndex:idx_program_course_order"`
	CourseID  string    `json:"course_id" gorm:"not null;uniqueIndex:idx_program_course"`
	Order     int       `json:"order" gorm:"not null;uniqueIndex:idx_program_course_order"`
	CreatedAt time.Time `json:"created_at"`

	Program Program `json:"-" gorm:"foreignKey:ProgramID"`
	Course  Course  `json:"-" gorm:"foreignKey:CourseID"`
}

// CourseLesson orders lessons within a course. Same contract as
// ProgramCourse one level down.
type CourseLesson struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	CourseID  string    `json:"course_id" gorm:"not null;uniqueIndex:idx_course_lesson;uniqueIndex:idx_course_lesson_order"`
	LessonID  string    `json:"lesson_id" gorm:"not null;uniqueIndex:idx_course_lesson"`
	Order     int       `json:"order" gorm:"not null;uniqueIndex:idx_course_lesson_order"`
	CreatedAt time.Time `json:"created_at"`

	Course Course `json:"-" gorm:"foreignKey:CourseID"`
	Lesson Lesson `json:"-" gorm:"foreignKey:LessonID"`
}
