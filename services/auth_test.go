package services

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ascent-learning/ascent_api/model"
)

func roleApp(role string) *fiber.App {
	svc := &AuthService{}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", role)
		return c.Next()
	})
	app.Get("/admin/ping", svc.RequireRole(model.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestRequireRoleRejectsNonAdmin(t *testing.T) {
	app := roleApp(model.RoleUser)

	resp, err := app.Test(httptest.NewRequest("GET", "/admin/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequireRoleAllowsAdmin(t *testing.T) {
	app := roleApp(model.RoleAdmin)

	resp, err := app.Test(httptest.NewRequest("GET", "/admin/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
