package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/ascent-learning/ascent_api/shared"
)

type UserHandler struct {
	submissionSvc SubmissionServiceInterface
}

func NewUserHandler(submissionSvc SubmissionServiceInterface) *UserHandler {
	return &UserHandler{
		submissionSvc: submissionSvc,
	}
}

// @Summary Get user progress summary
// @Description XP, level, streaks and recent badges for the authenticated user
// @Tags user
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=dto.UserProgressResponse}
// @Router /api/v1/user/progress [get]
func (h *UserHandler) GetProgress(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.submissionSvc.GetUserProgress(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}
