// handlers/handlers.go - Shared service wiring for the HTTP layer.
package handlers

import (
	"errors"
	"log"

	"proost/database"
	"proost/services"

	"github.com/gofiber/fiber/v2"
)

var (
	statsService       *services.StatsService
	achievementService *services.AchievementService
	competitionService *services.CompetitionService
	postService        *services.PostService
	connectionService  *services.ConnectionService
	groupService       *services.GroupService
	leaderboardService *services.LeaderboardService
	visibilityService  *services.VisibilityService
	liveHub            *services.Hub
	badgeCache         *services.BadgeCache
)

// Init wires the handler package to its services. Call once after InitDB.
func Init() {
	db := database.GetDB()

	rules, err := services.TierRulesFromEnv()
	if err != nil {
		log.Fatalf("FATAL: invalid achievement rules: %v", err)
	}

	statsService = services.NewStatsService(db)
	achievementService = services.NewAchievementService(db, rules)
	competitionService = services.NewCompetitionService(db)
	postService = services.NewPostService(db, competitionService, achievementService)
	connectionService = services.NewConnectionService(db)
	groupService = services.NewGroupService(db)
	leaderboardService = services.NewLeaderboardService(db)
	visibilityService = services.NewVisibilityService(db)
	liveHub = services.NewHub()
	badgeCache = services.NewBadgeCache()
}

// serviceError maps service sentinels onto HTTP responses.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Not found"})
	case errors.Is(err, services.ErrInvalidState):
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request"})
	case errors.Is(err, services.ErrNotMember):
		return c.Status(403).JSON(fiber.Map{"success": false, "error": "Not a group member"})
	case errors.Is(err, services.ErrAlreadyParticipant):
		return c.Status(409).JSON(fiber.Map{"success": false, "error": "Already participating"})
	case errors.Is(err, services.ErrNotParticipant):
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Not participating"})
	}
	return c.Status(500).JSON(fiber.Map{"success": false, "error": "Internal server error"})
}
