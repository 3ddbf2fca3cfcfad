package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/ascent-learning/ascent_api/shared"
)

type BadgeHandler struct {
	badgeSvc BadgeServiceInterface
}

func NewBadgeHandler(badgeSvc BadgeServiceInterface) *BadgeHandler {
	return &BadgeHandler{
		badgeSvc: badgeSvc,
	}
}

// @Summary Get badge catalog
// @Description Full badge catalog with earned state for the authenticated user
// @Tags badges
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=dto.BadgeCatalogResponse}
// @Router /api/v1/badges [get]
func (h *BadgeHandler) GetCatalog(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.badgeSvc.GetCatalog(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Get earned badges
// @Description Badges the authenticated user has earned, newest first
// @Tags badges
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=[]dto.BadgeResponse}
// @Router /api/v1/user/badges [get]
func (h *BadgeHandler) GetUserBadges(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.badgeSvc.GetUserBadges(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}
