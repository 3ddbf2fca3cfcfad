package seeders

import (
	"log"

	"gorm.io/gorm"
)

// MainSeeder coordinates all seeding operations
type MainSeeder struct {
	db *gorm.DB
}

// NewMainSeeder creates a new main seeder
func NewMainSeeder(db *gorm.DB) *MainSeeder {
	return &MainSeeder{db: db}
}

// SeedAll runs all seeders in the correct order
func (s *MainSeeder) SeedAll() error {
	log.Println("Starting database seeding...")

	// 1. Content hierarchy first (programs, courses, lessons)
	contentSeeder := NewContentSeeder(s.db)
	if err := contentSeeder.SeedContent(); err != nil {
		log.Printf("Content seeding failed: %v", err)
		return err
	}

	// 2. Badge catalog (no dependency on content beyond course ids)
	badgeSeeder := NewBadgeSeeder(s.db)
	if err := badgeSeeder.SeedBadges(); err != nil {
		log.Printf("Badge seeding failed: %v", err)
		return err
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

// SeedContentOnly seeds only the content hierarchy
func (s *MainSeeder) SeedContentOnly() error {
	contentSeeder := NewContentSeeder(s.db)
	return contentSeeder.SeedContent()
}

// SeedBadgesOnly seeds only the badge catalog
func (s *MainSeeder) SeedBadgesOnly() error {
	badgeSeeder := NewBadgeSeeder(s.db)
	return badgeSeeder.SeedBadges()
}
