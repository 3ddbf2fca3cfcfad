package services

import (
	"context"
	"fmt"
	"time"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"

	"github.com/ascent-learning/ascent_api/dto"
	"github.com/ascent-learning/ascent_api/shared"
)

// LeaderboardService ranks users by XP over a period window. Boards are
// cached in redis for a short TTL; a cold or unavailable cache falls
// through to the database.
type LeaderboardService struct {
	appContext.DefaultService

	sqlSvc   *PostgresService
	redisSvc *RedisService
}

const LEADERBOARD_SVC = "leaderboard_svc"

const (
	leaderboardCacheTTL = 5 * time.Minute
	leaderboardLimit    = 50
)

func (svc LeaderboardService) Id() string {
	return LEADERBOARD_SVC
}

func (svc *LeaderboardService) Configure(ctx *appContext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *LeaderboardService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	return nil
}

// GetLeaderboard returns the top board for the period plus the calling
// user's own rank row. Period defaults to all_time.
func (svc *LeaderboardService) GetLeaderboard(userID, period string) (*dto.LeaderboardResponse, error) {
	since, err := periodStart(period)
	if err != nil {
		return nil, shared.NewBadRequestError(err, "Invalid leaderboard period")
	}
	if period == "" {
		period = shared.LeaderboardAllTime
	}

	top, err := svc.topUsers(period, since)
	if err != nil {
		return nil, err
	}

	current, err := svc.currentUserRow(userID, top)
	if err != nil {
		return nil, err
	}

	return &dto.LeaderboardResponse{
		Period:      period,
		CurrentUser: *current,
		TopUsers:    top,
	}, nil
}

func (svc *LeaderboardService) topUsers(period string, since *time.Time) ([]dto.LeaderboardUserResponse, error) {
	ctx := context.Background()
	cacheKey := fmt.Sprintf("leaderboard:%s", period)

	var cached []dto.LeaderboardUserResponse
	if err := svc.redisSvc.GetJSON(ctx, cacheKey, &cached); err != nil {
		log.WithError(err).Warn("Leaderboard cache read failed")
	} else if len(cached) > 0 {
		return cached, nil
	}

	users, err := svc.sqlSvc.GetLeaderboardUsers(since, leaderboardLimit)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load leaderboard")
	}

	top := make([]dto.LeaderboardUserResponse, 0, len(users))
	for i, u := range users {
		top = append(top, dto.LeaderboardUserResponse{
			UserID:   u.ID,
			Username: u.Username,
			Level:    u.Level,
			XP:       u.XP,
			Rank:     i + 1,
		})
	}

	if err := svc.redisSvc.Set(ctx, cacheKey, top, leaderboardCacheTTL); err != nil {
		log.WithError(err).Warn("Leaderboard cache write failed")
	}
	return top, nil
}

func (svc *LeaderboardService) currentUserRow(userID string, top []dto.LeaderboardUserResponse) (*dto.LeaderboardUserResponse, error) {
	for i := range top {
		if top[i].UserID == userID {
			return &top[i], nil
		}
	}

	user, err := svc.sqlSvc.GetUser(userID)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "User not found")
	}
	rank, err := svc.sqlSvc.GetUserRank(userID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to compute rank")
	}

	return &dto.LeaderboardUserResponse{
		UserID:   user.ID,
		Username: user.Username,
		Level:    user.Level,
		XP:       user.XP,
		Rank:     rank,
	}, nil
}

// InvalidateCache drops the cached boards. Exposed on the admin
// refresh route; ordinary staleness is handled by the TTL.
func (svc *LeaderboardService) InvalidateCache() {
	ctx := context.Background()
	keys := []string{
		fmt.Sprintf("leaderboard:%s", shared.LeaderboardWeekly),
		fmt.Sprintf("leaderboard:%s", shared.LeaderboardMonthly),
		fmt.Sprintf("leaderboard:%s", shared.LeaderboardAllTime),
	}
	if err := svc.redisSvc.Delete(ctx, keys...); err != nil {
		log.WithError(err).Warn("Leaderboard cache invalidation failed")
	}
}

func periodStart(period string) (*time.Time, error) {
	now := time.Now()
	switch period {
	case shared.LeaderboardWeekly:
		since := now.AddDate(0, 0, -7)
		return &since, nil
	case shared.LeaderboardMonthly:
		since := now.AddDate(0, -1, 0)
		return &since, nil
	case shared.LeaderboardAllTime, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown period: %s", period)
	}
}
