package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ascent-learning/ascent_api/model"
)

// newTestStore opens a throwaway in-memory database with the full
// schema migrated. Capped at one connection so the whole test sees the
// same in-memory database.
func newTestStore(t *testing.T) *PostgresService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(Models()...))

	return &PostgresService{db: db}
}

func newAccessService(store *PostgresService) *AccessService {
	return &AccessService{sqlSvc: store}
}

func newProgressService(store *PostgresService) *ProgressService {
	return &ProgressService{sqlSvc: store}
}

func newStreakService(store *PostgresService) *StreakService {
	return &StreakService{sqlSvc: store}
}

func newBadgeService(store *PostgresService) *BadgeService {
	return &BadgeService{
		sqlSvc:      store,
		progressSvc: newProgressService(store),
		streakSvc:   newStreakService(store),
	}
}

func newSubmissionService(store *PostgresService) *SubmissionService {
	return &SubmissionService{
		sqlSvc:      store,
		accessSvc:   newAccessService(store),
		progressSvc: newProgressService(store),
		xpSvc:       &XPService{},
		badgeSvc:    newBadgeService(store),
		streakSvc:   newStreakService(store),
	}
}

// seedHierarchy builds one program with two ordered courses of two
// ordered lessons each:
//
//	prog1 -> c1 [l1 beginner, l2 intermediate]
//	      -> c2 [l3 advanced,  l4 advanced]
func seedHierarchy(t *testing.T, store *PostgresService) {
	t.Helper()

	_, err := store.CreateProgram(&model.Program{ID: "prog1", Title: "Onboarding", IsActive: true})
	require.NoError(t, err)

	_, err = store.CreateCourse(&model.Course{ID: "c1", Title: "Basics", IsActive: true})
	require.NoError(t, err)
	_, err = store.CreateCourse(&model.Course{ID: "c2", Title: "Advanced Topics", IsActive: true})
	require.NoError(t, err)

	lessons := []model.Lesson{
		{ID: "l1", Title: "Intro", Difficulty: model.DifficultyBeginner, MinScore: 60, IsActive: true},
		{ID: "l2", Title: "Next", Difficulty: model.DifficultyIntermediate, MinScore: 60, IsActive: true},
		{ID: "l3", Title: "Deep Dive", Difficulty: model.DifficultyAdvanced, MinScore: 70, IsActive: true},
		{ID: "l4", Title: "Capstone", Difficulty: model.DifficultyAdvanced, MinScore: 70, IsActive: true},
	}
	for i := range lessons {
		_, err = store.CreateLesson(&lessons[i])
		require.NoError(t, err)
	}

	_, err = store.AddCourseToProgram("prog1", "c1", 0)
	require.NoError(t, err)
	_, err = store.AddCourseToProgram("prog1", "c2", 1)
	require.NoError(t, err)

	_, err = store.AddLessonToCourse("c1", "l1", 0)
	require.NoError(t, err)
	_, err = store.AddLessonToCourse("c1", "l2", 1)
	require.NoError(t, err)
	_, err = store.AddLessonToCourse("c2", "l3", 0)
	require.NoError(t, err)
	_, err = store.AddLessonToCourse("c2", "l4", 1)
	require.NoError(t, err)
}

func seedUser(t *testing.T, store *PostgresService, id string) *model.User {
	t.Helper()

	user, err := store.CreateUser(&model.User{
		ID:       id,
		Email:    id + "@example.com",
		Username: id,
		Role:     model.RoleUser,
		IsActive: true,
	})
	require.NoError(t, err)
	return user
}

func enrollUser(t *testing.T, store *PostgresService, userID, programID string) {
	t.Helper()

	_, err := store.CreateAssignment(&model.ProgramAssignment{
		UserID:    userID,
		ProgramID: programID,
		IsActive:  true,
		Source:    model.AssignmentSourceDirect,
	})
	require.NoError(t, err)
}

func failedAttempt(userID, lessonID string, at time.Time) *model.QuizAttempt {
	return &model.QuizAttempt{
		UserID:    userID,
		LessonID:  lessonID,
		Score:     2,
		MaxScore:  10,
		Passed:    false,
		CreatedAt: at,
	}
}

// passLesson writes a passing attempt pair directly, bypassing the
// submission orchestrator, for tests that only need the state.
func passLesson(t *testing.T, store *PostgresService, userID, lessonID string, at time.Time) {
	t.Helper()

	completedAt := at
	require.NoError(t, store.UpsertLessonAttempt(&model.LessonAttempt{
		UserID:       userID,
		LessonID:     lessonID,
		Passed:       true,
		QuizScore:    9,
		QuizMaxScore: 10,
		CompletedAt:  &completedAt,
	}))
	require.NoError(t, store.CreateQuizAttempt(&model.QuizAttempt{
		UserID:    userID,
		LessonID:  lessonID,
		Score:     9,
		MaxScore:  10,
		Passed:    true,
		CreatedAt: at,
	}))
}
