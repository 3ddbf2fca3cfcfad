package main

import (
	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/ascent-learning/ascent_api/services"
)

// @title Ascent Learning API
// @version 1.0
// @description Progression and gamification engine for corporate e-learning.
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
func main() {
	err := godotenv.Load()
	if err != nil {
		log.Warn().Err(err).Msg("Error loading .env file")
	}

	ctx, err := context.NewCtx(
		&services.PostgresService{},
		&services.RedisService{},
		&services.JWTService{},
		&services.AuthService{},
		&services.MonitoringService{},

		&services.XPService{},
		&services.AccessService{},
		&services.ProgressService{},
		&services.StreakService{},
		&services.BadgeService{},
		&services.SubmissionService{},
		&services.LeaderboardService{},

		&services.HttpService{},
	)
	if err != nil {
		log.Fatal().Err(err)
		return
	}

	err = ctx.Run()
	if err != nil {
		log.Fatal().Err(err)
		return
	}
}
