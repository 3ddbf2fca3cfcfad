package model

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID       string `json:"id" gorm:"primaryKey"`
	Email    string `json:"email" gorm:"unique;not null"`
	Username string `json:"username" gorm:"unique;not null"`
	Password string `json:"-"`
	Role     string `json:"role" gorm:"default:user"`

	// Gamification aggregates. Owned by the XP engine; monotonically
	// non-decreasing for the lifetime of the account.
	XP                 int `json:"xp" gorm:"default:0"`
	Level              int `json:"level" gorm:"default:1"`
	PerfectQuizCount   int `json:"perfect_quiz_count" gorm:"default:0"`
	ExcellentQuizCount int `json:"excellent_quiz_count" gorm:"default:0"`

	IsActive  bool      `json:"is_active" gorm:"default:true"`
	LastLogin time.Time `json:"last_login"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	AssignmentSourceDirect   = "direct"
	AssignmentSourceCategory = "category"
)

// ProgramAssignment enrolls a user into a program. Created by the
// enrollment service; the progression engine only reads is_active.
type ProgramAssignment struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"not null;uniqueIndex:idx_user_program"`
	ProgramID string    `json:"program_id" gorm:"not null;uniqueIndex:idx_user_program"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	Source    string    `json:"source" gorm:"default:direct"` // direct, category
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User    User    `json:"-" gorm:"foreignKey:UserID"`
	Program Program `json:"-" gorm:"foreignKey:ProgramID"`
}
