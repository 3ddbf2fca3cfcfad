package services

import (
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"

	"github.com/alphabatem/common/context"

	docs "github.com/ascent-learning/ascent_api/docs"
	"github.com/ascent-learning/ascent_api/model"
	"github.com/ascent-learning/ascent_api/services/handlers"
	"github.com/ascent-learning/ascent_api/shared"
)

type HttpService struct {
	context.DefaultService

	authSvc        *AuthService
	monitoringSvc  *MonitoringService
	submissionSvc  *SubmissionService
	accessSvc      *AccessService
	progressSvc    *ProgressService
	badgeSvc       *BadgeService
	leaderboardSvc *LeaderboardService

	port   int
	server *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.authSvc = svc.Service(AUTH_SVC).(*AuthService)
	svc.monitoringSvc = svc.Service(MONITORING_SVC).(*MonitoringService)
	svc.submissionSvc = svc.Service(SUBMISSION_SVC).(*SubmissionService)
	svc.accessSvc = svc.Service(ACCESS_SVC).(*AccessService)
	svc.progressSvc = svc.Service(PROGRESS_SVC).(*ProgressService)
	svc.badgeSvc = svc.Service(BADGE_SVC).(*BadgeService)
	svc.leaderboardSvc = svc.Service(LEADERBOARD_SVC).(*LeaderboardService)

	docs.SwaggerInfo.BasePath = ""

	app := fiber.New(fiber.Config{
		ErrorHandler: svc.handleError,
	})
	app.Use(recover.New())

	if os.Getenv("LOG_LEVEL") == "TRACE" {
		app.Use(logger.New())
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(MonitoringMiddleware(svc.monitoringSvc))

	app.Get("/ping", svc.ping)
	app.Get("/swagger/*", swagger.HandlerDefault)

	svc.registerRoutes(app)

	app.Use(func(c *fiber.Ctx) error {
		return shared.ResponseNotFound(c)
	})

	svc.server = app
	return app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) registerRoutes(app *fiber.App) {
	authHandler := handlers.NewAuthHandler(svc.authSvc)
	progressionHandler := handlers.NewProgressionHandler(svc.submissionSvc, svc.accessSvc, svc.progressSvc)
	userHandler := handlers.NewUserHandler(svc.submissionSvc)
	badgeHandler := handlers.NewBadgeHandler(svc.badgeSvc)
	leaderboardHandler := handlers.NewLeaderboardHandler(svc.leaderboardSvc)

	v1 := app.Group("/api/v1")

	v1.Get("/ping", svc.ping)
	v1.Post("/register", authHandler.Register)
	v1.Post("/login", authHandler.Login)

	auth := v1.Group("", svc.authSvc.RequiredAuth())

	auth.Get("/me", authHandler.Me)
	auth.Get("/user/progress", userHandler.GetProgress)
	auth.Get("/user/badges", badgeHandler.GetUserBadges)
	auth.Get("/badges", badgeHandler.GetCatalog)
	auth.Get("/leaderboard", leaderboardHandler.GetLeaderboard)

	auth.Post("/lessons/submit", progressionHandler.SubmitLesson)
	auth.Get("/programs/:programId/progress", progressionHandler.GetProgramProgress)
	auth.Get("/programs/:programId/courses/:courseId/access", progressionHandler.CheckCourseAccess)
	auth.Get("/programs/:programId/courses/:courseId/lessons/:lessonId/access", progressionHandler.CheckLessonAccess)
	auth.Get("/courses/:courseId/progress", progressionHandler.GetCourseProgress)

	admin := auth.Group("/admin", svc.authSvc.RequireRole(model.RoleAdmin))
	admin.Post("/leaderboard/refresh", leaderboardHandler.Refresh)
}

func (svc *HttpService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set("Cache-Control", "max-age=10")

	return shared.ResponseJSON(c, http.StatusOK, "Success", "pong")
}

func (svc *HttpService) handleError(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	if fiberErr, ok := err.(*fiber.Error); ok {
		return shared.ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	return shared.ResponseInternalError(c, err)
}
