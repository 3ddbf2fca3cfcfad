package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ascent-learning/ascent_api/dto"
)

type stubLeaderboardService struct {
	invalidated int
	board       *dto.LeaderboardResponse
}

func (s *stubLeaderboardService) GetLeaderboard(userID, period string) (*dto.LeaderboardResponse, error) {
	return s.board, nil
}

func (s *stubLeaderboardService) InvalidateCache() {
	s.invalidated++
}

func TestRefreshInvalidatesCache(t *testing.T) {
	stub := &stubLeaderboardService{}
	handler := NewLeaderboardHandler(stub)

	app := fiber.New()
	app.Post("/admin/leaderboard/refresh", handler.Refresh)

	resp, err := app.Test(httptest.NewRequest("POST", "/admin/leaderboard/refresh", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, stub.invalidated)
}
