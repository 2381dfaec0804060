// database/migrate.go - Database Migration Runner
package database

import (
	"log"
	"proost/models"
)

// RunMigrations runs all database migrations
func RunMigrations() {
	db := GetDB()
	log.Println("🔄 Running database migrations...")

	if err := db.AutoMigrate(
		&models.User{},
		&models.Connection{},
		&models.Group{},
		&models.GroupMember{},
		&models.GroupJoinRequest{},
		&models.Post{},
		&models.PostGroup{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.Competition{},
		&models.CompetitionParticipant{},
		&models.CompetitionProgress{},
	); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}

	createIndexes()

	log.Println("✅ All migrations completed successfully")
}

// createIndexes creates the composite indexes the hot queries need
func createIndexes() {
	db := GetDB()

	// Connection lookups by endpoint + status
	db.Exec("CREATE INDEX IF NOT EXISTS idx_connections_requester_status ON connections(requester_id, status)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_connections_addressee_status ON connections(addressee_id, status)")

	// Post scans per owner and per group share
	db.Exec("CREATE INDEX IF NOT EXISTS idx_posts_created ON posts(created_at DESC)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_post_groups_group_post ON post_groups(group_id, post_id)")

	// Competition progress per participant
	db.Exec("CREATE INDEX IF NOT EXISTS idx_comp_progress_comp_user ON competition_progress(competition_id, user_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_comp_participants_comp_user ON competition_participants(competition_id, user_id)")

	// Unlock listings
	db.Exec("CREATE INDEX IF NOT EXISTS idx_user_achievements_user ON user_achievements(user_id)")
}
