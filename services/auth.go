package services

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/alphabatem/common/context"

	"github.com/ascent-learning/ascent_api/dto"
	"github.com/ascent-learning/ascent_api/model"
	"github.com/ascent-learning/ascent_api/shared"
)

// AuthService owns registration, login and the request auth middleware.
type AuthService struct {
	context.DefaultService

	sqlSvc *PostgresService
	jwtSvc *JWTService
}

const AUTH_SVC = "auth_svc"

func (svc AuthService) Id() string {
	return AUTH_SVC
}

func (svc *AuthService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *AuthService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.jwtSvc = svc.Service(JWT_SVC).(*JWTService)
	return nil
}

func (svc *AuthService) Register(req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	if _, err := svc.sqlSvc.GetUserByEmail(req.Email); err == nil {
		return nil, shared.NewConflictError(errors.New("email taken"), "Email is already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.NewInternalError(err, "Failed to check existing users")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to hash password")
	}

	user := &model.User{
		Email:    req.Email,
		Username: req.Username,
		Password: string(hashed),
		Role:     model.RoleUser,
		Level:    1,
		IsActive: true,
	}
	created, err := svc.sqlSvc.CreateUser(user)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id": created.ID,
		"email":   created.Email,
	}).Info("User registered")

	return &dto.RegisterResponse{
		UserID:   created.ID,
		Email:    created.Email,
		Username: created.Username,
	}, nil
}

func (svc *AuthService) Login(req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := svc.sqlSvc.GetUserByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewUnauthorizedError(err, "Invalid email or password")
		}
		return nil, shared.NewInternalError(err, "Failed to load user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, shared.NewUnauthorizedError(err, "Invalid email or password")
	}

	tokens, err := svc.jwtSvc.GenerateTokenPair(user.ID, user.Role)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to issue token")
	}

	if err := svc.sqlSvc.UpdateUserLastLogin(user.ID); err != nil {
		log.WithError(err).WithField("user_id", user.ID).Warn("Failed to update last login")
	}

	return &dto.LoginResponse{
		UserID:      user.ID,
		Username:    user.Username,
		AccessToken: tokens.AccessToken,
		ExpiresIn:   tokens.ExpiresIn,
	}, nil
}

func (svc *AuthService) GetUserInfo(userID string) (*dto.UserInfo, error) {
	user, err := svc.sqlSvc.GetUser(userID)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "User not found")
	}
	return &dto.UserInfo{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}, nil
}

// RequiredAuth validates the bearer token and stores the user id in the
// request locals under shared.UserID.
func (svc *AuthService) RequiredAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		token, err := svc.jwtSvc.ExtractTokenFromHeader(authHeader)
		if err != nil {
			return shared.ResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", err.Error())
		}

		claims, err := svc.jwtSvc.VerifyJWTToken(token)
		if err != nil {
			return shared.ResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", "Invalid JWT token")
		}
		if claims.UserID == "" {
			return shared.ResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", "Invalid user ID in token")
		}

		c.Locals(shared.UserID, claims.UserID)
		c.Locals("role", claims.Role)
		return c.Next()
	}
}

// RequireRole guards admin routes. Must run after RequiredAuth.
func (svc *AuthService) RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		current, _ := c.Locals("role").(string)
		if current != role {
			return shared.ResponseJSON(c, fiber.StatusForbidden, "Forbidden", "Insufficient permissions")
		}
		return c.Next()
	}
}
