// seeders/badge_seeder.go
package seeders

import (
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/ascent-learning/ascent_api/model"
)

// BadgeSeeder handles seeding the badge catalog
type BadgeSeeder struct {
	db *gorm.DB
}

// NewBadgeSeeder creates a new badge seeder
func NewBadgeSeeder(db *gorm.DB) *BadgeSeeder {
	return &BadgeSeeder{db: db}
}

// SeedBadges seeds the default badge catalog
func (s *BadgeSeeder) SeedBadges() error {
	for _, badge := range s.getBadges() {
		var existing model.Badge
		if err := s.db.Where("id = ?", badge.ID).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				if err := s.db.Create(&badge).Error; err != nil {
					log.Printf("Error creating badge %s: %v", badge.Name, err)
					return err
				}
				log.Printf("Created badge: %s", badge.Name)
			} else {
				return err
			}
		} else {
			log.Printf("Badge %s already exists, skipping", badge.Name)
		}
	}

	log.Println("Badge seeding completed successfully")
	return nil
}

func (s *BadgeSeeder) getBadges() []model.Badge {
	now := time.Now()

	return []model.Badge{
		{
			ID:             "badge_first_steps",
			Name:           "First Steps",
			Description:    "Pass your first lesson.",
			Scope:          model.ScopeLesson,
			Tier:           model.TierBronze,
			XPBonus:        25,
			CriteriaType:   model.CriteriaFirstLesson,
			CriteriaParams: model.MustParams(model.FirstLessonCriteria{}),
			IsActive:       true,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
		{
			ID:             "badge_ten_lessons",
			Name:           "Getting Serious",
			Description:    "Pass ten lessons.",
			Scope:          model.ScopeLesson,
			Tier:           model.TierSilver,
			XPBonus:        100,
			CriteriaType:   model.CriteriaTotalLessons,
			CriteriaParams: model.MustParams(model.TotalLessonsCriteria{Count: 10}),
			IsActive:       true,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
		{
			ID:             "badge_perfectionist",
			Name:           "Perfectionist",
			Description:    "Score 100% on a quiz.",
			Scope:          model.ScopeAccuracy,
			Tier:           model.TierSilver,
			XPBonus:        75,
			CriteriaType:   model.CriteriaPerfectScore,
			CriteriaParams: model.MustParams(model.PerfectScoreCriteria{Count: 1}),
			IsActive:       true,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
		{
			ID:             "badge_high_flyer",
			Name:           "High Flyer",
			Description:    "Score at least 95% on a quiz.",
			Scope:          model.ScopeAccuracy,
			Tier:           model.TierBronze,
			XPBonus:        40,
			CriteriaType:   model.CriteriaHighScore,
			CriteriaParams: model.MustParams(model.HighScoreCriteria{Threshold: 95}),
			IsActive:       true,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
		{
			ID:             "badge_week_streak",
			Name:           "Consistency",
			Description:    "Pass a lesson seven days in a row.",
			Scope:          model.ScopeStreak,
			Tier:           model.TierGold,
			XPBonus:        200,
			CriteriaType:   model.CriteriaStreak,
			CriteriaParams: model.MustParams(model.StreakCriteria{Days: 7}),
			IsActive:       true,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
		{
			ID:             "badge_security_basics",
			Name:           "Security Aware",
			Description:    "Complete the Security Basics course.",
			Scope:          model.ScopeCourse,
			Tier:           model.TierSilver,
			XPBonus:        150,
			CriteriaType:   model.CriteriaCompleteCourse,
			CriteriaParams: model.MustParams(model.CompleteCourseCriteria{CourseID: "course_security_basics"}),
			IsActive:       true,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
		{
			ID:             "badge_onboarding_complete",
			Name:           "Fully Onboarded",
			Description:    "Complete the whole Security Onboarding program.",
			Scope:          model.ScopeProgram,
			Tier:           model.TierGold,
			XPBonus:        500,
			CriteriaType:   model.CriteriaCompleteProgram,
			CriteriaParams: model.MustParams(model.CompleteProgramCriteria{ProgramID: "program_security_onboarding"}),
			IsActive:       true,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
		{
			ID:             "badge_advanced_learner",
			Name:           "Advanced Learner",
			Description:    "Pass five advanced lessons.",
			Scope:          model.ScopeDifficulty,
			Tier:           model.TierGold,
			XPBonus:        250,
			CriteriaType:   model.CriteriaDifficultyLessons,
			CriteriaParams: model.MustParams(model.DifficultyLessonsCriteria{Difficulty: model.DifficultyAdvanced, Count: 5}),
			IsActive:       true,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
	}
}
