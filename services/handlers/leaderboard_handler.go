package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/ascent-learning/ascent_api/shared"
)

type LeaderboardHandler struct {
	leaderboardSvc LeaderboardServiceInterface
}

func NewLeaderboardHandler(leaderboardSvc LeaderboardServiceInterface) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardSvc: leaderboardSvc,
	}
}

// @Summary Get leaderboard
// @Description XP leaderboard for a period plus the caller's own rank
// @Tags leaderboard
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param period query string false "weekly, monthly or all_time" default(all_time)
// @Success 200 {object} shared.Response{data=dto.LeaderboardResponse}
// @Router /api/v1/leaderboard [get]
func (h *LeaderboardHandler) GetLeaderboard(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)
	period := c.Query("period")

	resp, err := h.leaderboardSvc.GetLeaderboard(userID, period)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Refresh leaderboard cache
// @Description Drops the cached boards so the next read rebuilds them
// @Tags leaderboard
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Admin Bearer Token" default(Bearer <admin_token>)
// @Success 200 {object} shared.Response{data=string}
// @Router /api/v1/admin/leaderboard/refresh [post]
func (h *LeaderboardHandler) Refresh(c *fiber.Ctx) error {
	h.leaderboardSvc.InvalidateCache()

	return shared.ResponseJSON(c, http.StatusOK, "Success", "Leaderboard cache invalidated")
}
