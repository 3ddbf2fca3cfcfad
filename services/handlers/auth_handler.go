package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/ascent-learning/ascent_api/dto"
	"github.com/ascent-learning/ascent_api/shared"
)

type AuthHandler struct {
	authSvc AuthServiceInterface
}

func NewAuthHandler(authSvc AuthServiceInterface) *AuthHandler {
	return &AuthHandler{
		authSvc: authSvc,
	}
}

// @Summary Register a new user
// @Description Create a new user account
// @Tags auth
// @Accept json
// @Produce json
// @Param registerRequest body dto.RegisterRequest true "Registration details"
// @Success 201 {object} shared.Response{data=dto.RegisterResponse}
// @Router /api/v1/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.authSvc.Register(req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "User registered successfully", resp)
}

// @Summary Login user
// @Description Authenticate user and return access token
// @Tags auth
// @Accept json
// @Produce json
// @Param loginRequest body dto.LoginRequest true "Login credentials"
// @Success 200 {object} shared.Response{data=dto.LoginResponse}
// @Router /api/v1/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.authSvc.Login(req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Login successful", resp)
}

// @Summary Get current user
// @Description Return profile info for the authenticated user
// @Tags auth
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=dto.UserInfo}
// @Router /api/v1/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.authSvc.GetUserInfo(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}
