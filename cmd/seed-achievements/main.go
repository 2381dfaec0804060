// cmd/seed-achievements/main.go - Upserts the achievement definition table.
//
// Usage: seed-achievements [defs.json]
// Without an argument the stock definition list is seeded. Slugs present in
// the table but missing from the list are retired together with their
// unlocks.
package main

import (
	"log"
	"os"

	"proost/database"
	"proost/services"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	database.InitDB()
	defer database.CloseDB()

	defs := services.DefaultAchievementDefs()
	if len(os.Args) > 1 {
		loaded, err := services.LoadAchievementDefs(os.Args[1])
		if err != nil {
			log.Fatalf("Failed to load definitions from %s: %v", os.Args[1], err)
		}
		defs = loaded
	}

	svc := services.NewAchievementService(database.GetDB(), nil)
	if err := svc.Seed(defs); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d achievement definitions", len(defs))
}
