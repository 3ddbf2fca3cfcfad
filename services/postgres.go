package services

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ascent-learning/ascent_api/model"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type PostgresService struct {
	context.DefaultService
	db *gorm.DB

	database string
}

const POSTGRES_SVC = "postgres_svc"

func (ds PostgresService) Id() string {
	return POSTGRES_SVC
}

func (ds PostgresService) Db() *gorm.DB {
	return ds.db
}

func (ds *PostgresService) Configure(ctx *context.Context) error {
	ds.database = os.Getenv("DATABASE_URL")
	if ds.database == "" {
		host := os.Getenv("DB_HOST")
		if host == "" {
			host = "localhost"
		}
		port := os.Getenv("DB_PORT")
		if port == "" {
			port = "5432"
		}
		user := os.Getenv("DB_USER")
		if user == "" {
			user = "postgres"
		}
		password := os.Getenv("DB_PASSWORD")
		if password == "" {
			password = "postgres"
		}
		dbname := os.Getenv("DB_NAME")
		if dbname == "" {
			dbname = "ascent_api"
		}
		sslmode := os.Getenv("DB_SSLMODE")
		if sslmode == "" {
			sslmode = "disable"
		}
		timezone := os.Getenv("DB_TIMEZONE")
		if timezone == "" {
			timezone = "UTC"
		}

		ds.database = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
			host, user, password, dbname, port, sslmode, timezone)
	}

	return ds.DefaultService.Configure(ctx)
}

// Models returns every table the store owns. Shared with the seed tool
// and the test helpers so the schema stays in one place.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.ProgramAssignment{},

		&model.Program{},
		&model.Course{},
		&model.Lesson{},
		&model.ProgramCourse{},
		&model.CourseLesson{},

		&model.LessonAttempt{},
		&model.QuizAttempt{},

		&model.Badge{},
		&model.UserBadge{},
	}
}

func (ds *PostgresService) Start() (err error) {
	maxRetries := 10
	retryDelay := time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		log.Printf("Attempting to connect to database (attempt %d/%d)...", attempt, maxRetries)

		ds.db, err = gorm.Open(postgres.Open(ds.database), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Error),
		})

		if err == nil {
			sqlDB, dbErr := ds.db.DB()
			if dbErr == nil {
				pingErr := sqlDB.Ping()
				if pingErr == nil {
					log.Println("Successfully connected to database")
					break
				}
				err = pingErr
			} else {
				err = dbErr
			}
		}

		if attempt == maxRetries {
			log.Printf("Failed to connect to database after %d attempts: %v", maxRetries, err)
			return err
		}

		log.Printf("Database connection failed: %v. Retrying in %v...", err, retryDelay)
		time.Sleep(retryDelay)

		retryDelay *= 2
		if retryDelay > 10*time.Second {
			retryDelay = 10 * time.Second
		}
	}

	err = ds.db.AutoMigrate(Models()...)
	if err != nil {
		log.Printf("Failed to migrate database: %v", err)
		return err
	}

	log.Println("Database connected and migrated successfully")
	return nil
}

func (ds *PostgresService) Shutdown() {
	sqlDB, err := ds.db.DB()
	if err == nil {
		sqlDB.Close()
	}
}

func (ds *PostgresService) HandleError(err error) error {
	if err == nil {
		return nil
	}

	var statusCode int
	var errorType string

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		statusCode = http.StatusNotFound // 404
		errorType = "NOT_FOUND"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		statusCode = http.StatusConflict // 409
		errorType = "CONFLICT"
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		statusCode = http.StatusBadRequest // 400
		errorType = "FOREIGN_KEY_VIOLATION"
	case errors.Is(err, gorm.ErrInvalidTransaction):
		statusCode = http.StatusInternalServerError // 500
		errorType = "TRANSACTION_ERROR"
	default:
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") ||
			strings.Contains(err.Error(), "UNIQUE constraint failed") {
			statusCode = http.StatusConflict // 409
			errorType = "UNIQUE_CONSTRAINT"
		} else if strings.Contains(err.Error(), "connection refused") {
			statusCode = http.StatusServiceUnavailable // 503
			errorType = "DATABASE_CONNECTION_ERROR"
		} else {
			statusCode = http.StatusInternalServerError // 500
			errorType = "INTERNAL_ERROR"
		}
	}

	logEntry := log.WithFields(log.Fields{
		"status_code": statusCode,
		"error_type":  errorType,
		"error":       err.Error(),
	})

	if statusCode >= 500 {
		logEntry.Error("Database error occurred")
	} else {
		logEntry.Warn("Database operation failed")
	}

	return fmt.Errorf("%s: %w", errorType, err)
}

// ==================== USERS ====================

func (ds *PostgresService) CreateUser(user *model.User) (*model.User, error) {
	if user.ID == "" {
		id, _ := uuid.NewV7()
		user.ID = id.String()
	}
	if user.Level == 0 {
		user.Level = 1
	}
	if err := ds.db.Create(user).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return user, nil
}

func (ds *PostgresService) GetUser(userID string) (*model.User, error) {
	var user model.User
	if err := ds.db.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return &user, nil
}

func (ds *PostgresService) GetUserByEmail(email string) (*model.User, error) {
	var user model.User
	if err := ds.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (ds *PostgresService) UpdateUserLastLogin(userID string) error {
	return ds.db.Model(&model.User{}).Where("id = ?", userID).
		Update("last_login", time.Now()).Error
}

// AddUserXP applies the XP delta and counter increments as atomic
// in-place updates, then reads the row back. Two racing submissions for
// the same user both land their deltas; neither overwrites the other.
func (ds *PostgresService) AddUserXP(userID string, xpDelta, perfectInc, excellentInc int) (*model.User, error) {
	updates := map[string]interface{}{
		"xp":         gorm.Expr("xp + ?", xpDelta),
		"updated_at": time.Now(),
	}
	if perfectInc > 0 {
		updates["perfect_quiz_count"] = gorm.Expr("perfect_quiz_count + ?", perfectInc)
	}
	if excellentInc > 0 {
		updates["excellent_quiz_count"] = gorm.Expr("excellent_quiz_count + ?", excellentInc)
	}

	if err := ds.db.Model(&model.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return nil, ds.HandleError(err)
	}

	return ds.GetUser(userID)
}

// SetUserLevelIfHigher persists a recomputed level. The guard keeps the
// level monotone when a concurrent submission already wrote a higher one.
func (ds *PostgresService) SetUserLevelIfHigher(userID string, level int) error {
	err := ds.db.Model(&model.User{}).
		Where("id = ? AND level < ?", userID, level).
		Update("level", level).Error
	if err != nil {
		return ds.HandleError(err)
	}
	return nil
}

// GetLeaderboardUsers returns users ordered by XP. With a since bound,
// only users with a passing submission in the window are ranked.
func (ds *PostgresService) GetLeaderboardUsers(since *time.Time, limit int) ([]model.User, error) {
	var users []model.User

	query := ds.db.Model(&model.User{}).Where("is_active = ?", true)
	if since != nil {
		query = query.Where(
			"id IN (?)",
			ds.db.Model(&model.QuizAttempt{}).
				Select("user_id").
				Where("passed = ? AND created_at >= ?", true, *since),
		)
	}

	if err := query.Order("xp DESC").Limit(limit).Find(&users).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return users, nil
}

func (ds *PostgresService) GetUserRank(userID string) (int, error) {
	user, err := ds.GetUser(userID)
	if err != nil {
		return 0, err
	}

	var ahead int64
	if err := ds.db.Model(&model.User{}).
		Where("is_active = ? AND xp > ?", true, user.XP).
		Count(&ahead).Error; err != nil {
		return 0, ds.HandleError(err)
	}
	return int(ahead) + 1, nil
}

// ==================== CONTENT HIERARCHY ====================

func (ds *PostgresService) CreateProgram(program *model.Program) (*model.Program, error) {
	if program.ID == "" {
		id, _ := uuid.NewV7()
		program.ID = id.String()
	}
	if err := ds.db.Create(program).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return program, nil
}

func (ds *PostgresService) GetProgram(id string) (*model.Program, error) {
	var program model.Program
	if err := ds.db.Where("id = ? AND is_active = ?", id, true).First(&program).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return &program, nil
}

func (ds *PostgresService) CreateCourse(course *model.Course) (*model.Course, error) {
	if course.ID == "" {
		id, _ := uuid.NewV7()
		course.ID = id.String()
	}
	if err := ds.db.Create(course).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return course, nil
}

func (ds *PostgresService) GetCourse(id string) (*model.Course, error) {
	var course model.Course
	if err := ds.db.Where("id = ? AND is_active = ?", id, true).First(&course).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return &course, nil
}

func (ds *PostgresService) CreateLesson(lesson *model.Lesson) (*model.Lesson, error) {
	if lesson.ID == "" {
		id, _ := uuid.NewV7()
		lesson.ID = id.String()
	}
	if err := ds.db.Create(lesson).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return lesson, nil
}

func (ds *PostgresService) GetLesson(id string) (*model.Lesson, error) {
	var lesson model.Lesson
	if err := ds.db.Where("id = ? AND is_active = ?", id, true).First(&lesson).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return &lesson, nil
}

func (ds *PostgresService) AddCourseToProgram(programID, courseID string, order int) (*model.ProgramCourse, error) {
	id, _ := uuid.NewV7()
	pc := &model.ProgramCourse{
		ID:        id.String(),
		ProgramID: programID,
		CourseID:  courseID,
		Order:     order,
	}
	if err := ds.db.Create(pc).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return pc, nil
}

func (ds *PostgresService) AddLessonToCourse(courseID, lessonID string, order int) (*model.CourseLesson, error) {
	id, _ := uuid.NewV7()
	cl := &model.CourseLesson{
		ID:       id.String(),
		CourseID: courseID,
		LessonID: lessonID,
		Order:    order,
	}
	if err := ds.db.Create(cl).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return cl, nil
}

func (ds *PostgresService) GetProgramCourse(programID, courseID string) (*model.ProgramCourse, error) {
	var pc model.ProgramCourse
	err := ds.db.Where("program_id = ? AND course_id = ?", programID, courseID).First(&pc).Error
	if err != nil {
		return nil, err
	}
	return &pc, nil
}

func (ds *PostgresService) GetProgramCourseByOrder(programID string, order int) (*model.ProgramCourse, error) {
	var pc model.ProgramCourse
	err := ds.db.Where("program_id = ? AND \"order\" = ?", programID, order).First(&pc).Error
	if err != nil {
		return nil, err
	}
	return &pc, nil
}

func (ds *PostgresService) GetProgramCourses(programID string) ([]model.ProgramCourse, error) {
	var pcs []model.ProgramCourse
	err := ds.db.Where("program_id = ?", programID).Order("\"order\" ASC").Find(&pcs).Error
	if err != nil {
		return nil, ds.HandleError(err)
	}
	return pcs, nil
}

func (ds *PostgresService) GetCourseLesson(courseID, lessonID string) (*model.CourseLesson, error) {
	var cl model.CourseLesson
	err := ds.db.Where("course_id = ? AND lesson_id = ?", courseID, lessonID).First(&cl).Error
	if err != nil {
		return nil, err
	}
	return &cl, nil
}

func (ds *PostgresService) GetCourseLessonByOrder(courseID string, order int) (*model.CourseLesson, error) {
	var cl model.CourseLesson
	err := ds.db.Where("course_id = ? AND \"order\" = ?", courseID, order).First(&cl).Error
	if err != nil {
		return nil, err
	}
	return &cl, nil
}

func (ds *PostgresService) GetCourseLessons(courseID string) ([]model.CourseLesson, error) {
	var cls []model.CourseLesson
	err := ds.db.Where("course_id = ?", courseID).Order("\"order\" ASC").Find(&cls).Error
	if err != nil {
		return nil, ds.HandleError(err)
	}
	return cls, nil
}

// ==================== ENROLLMENT ====================

func (ds *PostgresService) CreateAssignment(assignment *model.ProgramAssignment) (*model.ProgramAssignment, error) {
	if assignment.ID == "" {
		id, _ := uuid.NewV7()
		assignment.ID = id.String()
	}
	if err := ds.db.Create(assignment).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return assignment, nil
}

func (ds *PostgresService) GetActiveAssignment(userID, programID string) (*model.ProgramAssignment, error) {
	var assignment model.ProgramAssignment
	err := ds.db.Where("user_id = ? AND program_id = ? AND is_active = ?", userID, programID, true).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// ==================== ATTEMPTS ====================

func (ds *PostgresService) GetLessonAttempt(userID, lessonID string) (*model.LessonAttempt, error) {
	var attempt model.LessonAttempt
	err := ds.db.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (ds *PostgresService) GetLessonAttemptsByLessons(userID string, lessonIDs []string) ([]model.LessonAttempt, error) {
	var attempts []model.LessonAttempt
	if len(lessonIDs) == 0 {
		return attempts, nil
	}
	err := ds.db.Where("user_id = ? AND lesson_id IN ?", userID, lessonIDs).Find(&attempts).Error
	if err != nil {
		return nil, ds.HandleError(err)
	}
	return attempts, nil
}

// UpsertLessonAttempt writes the single current attempt row for
// (user, lesson). The conflict target is the composite unique index, so
// concurrent duplicate submissions collapse into one row, last write
// wins.
func (ds *PostgresService) UpsertLessonAttempt(attempt *model.LessonAttempt) error {
	if attempt.ID == "" {
		id, _ := uuid.NewV7()
		attempt.ID = id.String()
	}
	attempt.UpdatedAt = time.Now()

	err := ds.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"passed", "quiz_score", "quiz_max_score", "time_spent", "completed_at", "updated_at",
		}),
	}).Create(attempt).Error
	if err != nil {
		return ds.HandleError(err)
	}
	return nil
}

func (ds *PostgresService) CountPassedAttempts(userID string) (int, error) {
	var count int64
	err := ds.db.Model(&model.LessonAttempt{}).
		Where("user_id = ? AND passed = ?", userID, true).
		Count(&count).Error
	if err != nil {
		return 0, ds.HandleError(err)
	}
	return int(count), nil
}

func (ds *PostgresService) CountPassedAttemptsByDifficulty(userID, difficulty string) (int, error) {
	var count int64
	err := ds.db.Model(&model.LessonAttempt{}).
		Joins("JOIN lessons ON lessons.id = lesson_attempts.lesson_id").
		Where("lesson_attempts.user_id = ? AND lesson_attempts.passed = ? AND lessons.difficulty = ?",
			userID, true, difficulty).
		Count(&count).Error
	if err != nil {
		return 0, ds.HandleError(err)
	}
	return int(count), nil
}

func (ds *PostgresService) CreateQuizAttempt(attempt *model.QuizAttempt) error {
	if attempt.ID == "" {
		id, _ := uuid.NewV7()
		attempt.ID = id.String()
	}
	if err := ds.db.Create(attempt).Error; err != nil {
		return ds.HandleError(err)
	}
	return nil
}

// GetPassingAttemptTimes returns the timestamps of every passing quiz
// submission, newest first. The append-only history feeds the streak
// walk; the upserted LessonAttempt cannot, it only remembers the most
// recent day per lesson.
func (ds *PostgresService) GetPassingAttemptTimes(userID string) ([]time.Time, error) {
	var times []time.Time
	err := ds.db.Model(&model.QuizAttempt{}).
		Where("user_id = ? AND passed = ?", userID, true).
		Order("created_at DESC").
		Pluck("created_at", &times).Error
	if err != nil {
		return nil, ds.HandleError(err)
	}
	return times, nil
}

// ==================== BADGES ====================

func (ds *PostgresService) CreateBadge(badge *model.Badge) (*model.Badge, error) {
	if badge.ID == "" {
		id, _ := uuid.NewV7()
		badge.ID = id.String()
	}
	if err := ds.db.Create(badge).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return badge, nil
}

func (ds *PostgresService) GetActiveBadgesByScopes(scopes []string) ([]model.Badge, error) {
	var badges []model.Badge
	err := ds.db.Where("is_active = ? AND scope IN ?", true, scopes).
		Order("created_at ASC").
		Find(&badges).Error
	if err != nil {
		return nil, ds.HandleError(err)
	}
	return badges, nil
}

func (ds *PostgresService) GetActiveBadges() ([]model.Badge, error) {
	var badges []model.Badge
	err := ds.db.Where("is_active = ?", true).Order("created_at ASC").Find(&badges).Error
	if err != nil {
		return nil, ds.HandleError(err)
	}
	return badges, nil
}

func (ds *PostgresService) GetUserBadges(userID string) ([]model.UserBadge, error) {
	var userBadges []model.UserBadge
	err := ds.db.Preload("Badge").
		Where("user_id = ?", userID).
		Order("earned_at DESC").
		Find(&userBadges).Error
	if err != nil {
		return nil, ds.HandleError(err)
	}
	return userBadges, nil
}

func (ds *PostgresService) GetUserBadgeIDs(userID string) (map[string]bool, error) {
	var badgeIDs []string
	err := ds.db.Model(&model.UserBadge{}).
		Where("user_id = ?", userID).
		Pluck("badge_id", &badgeIDs).Error
	if err != nil {
		return nil, ds.HandleError(err)
	}

	owned := make(map[string]bool, len(badgeIDs))
	for _, id := range badgeIDs {
		owned[id] = true
	}
	return owned, nil
}

// AwardBadge inserts the (user, badge) award row if absent. Returns
// whether this call actually inserted it: under a double-submit race the
// unique index lets exactly one caller through and the loser gets
// awarded=false, which is a no-op, not an error.
func (ds *PostgresService) AwardBadge(userID, badgeID string) (bool, error) {
	id, _ := uuid.NewV7()
	now := time.Now()
	userBadge := &model.UserBadge{
		ID:       id.String(),
		UserID:   userID,
		BadgeID:  badgeID,
		EarnedAt: now,
	}

	result := ds.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_id"}},
		DoNothing: true,
	}).Create(userBadge)
	if result.Error != nil {
		return false, ds.HandleError(result.Error)
	}

	return result.RowsAffected == 1, nil
}
