package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ascent-learning/ascent_api/dto"
)

type AuthServiceInterface interface {
	Register(req dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(req dto.LoginRequest) (*dto.LoginResponse, error)
	GetUserInfo(userID string) (*dto.UserInfo, error)
	RequiredAuth() fiber.Handler
	RequireRole(role string) fiber.Handler
}

type SubmissionServiceInterface interface {
	SubmitLesson(userID string, req dto.SubmitLessonRequest) (*dto.SubmitLessonResponse, error)
	GetUserProgress(userID string) (*dto.UserProgressResponse, error)
}

type AccessServiceInterface interface {
	CheckLessonAccess(userID, programID, courseID, lessonID string) (*dto.LessonAccessResponse, error)
	CheckCourseAccess(userID, programID, courseID string) (*dto.CourseAccessResponse, error)
}

type ProgressServiceInterface interface {
	CourseProgressDetail(userID, courseID string) (*dto.CourseProgressResponse, error)
	ProgramProgressDetail(userID, programID string) (*dto.ProgramProgressResponse, error)
}

type BadgeServiceInterface interface {
	GetCatalog(userID string) (*dto.BadgeCatalogResponse, error)
	GetUserBadges(userID string) ([]dto.BadgeResponse, error)
}

type LeaderboardServiceInterface interface {
	GetLeaderboard(userID, period string) (*dto.LeaderboardResponse, error)
	InvalidateCache()
}
