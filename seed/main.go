package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ascent-learning/ascent_api/seed/seeders"
	"github.com/ascent-learning/ascent_api/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	var (
		seedType   = flag.String("type", "all", "Type of seeding: all, content, badges")
		sqlitePath = flag.String("sqlite", "", "Seed a local sqlite file instead of postgres")
		help       = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	db, err := openDatabase(*sqlitePath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(services.Models()...); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	mainSeeder := seeders.NewMainSeeder(db)

	switch *seedType {
	case "all":
		log.Println("Running complete database seeding...")
		if err := mainSeeder.SeedAll(); err != nil {
			log.Fatalf("Failed to seed database: %v", err)
		}
	case "content":
		log.Println("Seeding content only...")
		if err := mainSeeder.SeedContentOnly(); err != nil {
			log.Fatalf("Failed to seed content: %v", err)
		}
	case "badges":
		log.Println("Seeding badge catalog only...")
		if err := mainSeeder.SeedBadgesOnly(); err != nil {
			log.Fatalf("Failed to seed badges: %v", err)
		}
	default:
		log.Fatalf("Unknown seed type: %s. Use 'all', 'content', or 'badges'", *seedType)
	}

	log.Println("Seeding operation completed successfully!")
}

func openDatabase(sqlitePath string) (*gorm.DB, error) {
	config := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	}

	if sqlitePath != "" {
		log.Printf("Connecting to sqlite database: %s", sqlitePath)
		return gorm.Open(sqlite.Open(sqlitePath), config)
	}

	dsn := os.Getenv("DATABASE_URL")
	log.Println("Connecting to postgres database")
	return gorm.Open(postgres.Open(dsn), config)
}

func showHelp() {
	log.Println(`
Database Seeding Tool for the Ascent Learning API

Usage: go run seed/main.go [flags]

Flags:
  -type string
        Type of seeding to perform (default "all")
        Options: all, content, badges
  -sqlite string
        Seed a local sqlite file instead of postgres
  -help
        Show this help message

Examples:
  # Seed everything against DATABASE_URL
  go run seed/main.go

  # Seed only the badge catalog
  go run seed/main.go -type=badges

  # Seed a local development database
  go run seed/main.go -sqlite=./local.db

Environment Variables:
  DATABASE_URL - Postgres connection string
`)
}
