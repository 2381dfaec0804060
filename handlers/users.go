// handlers/users.go - Profiles, search and the stats panel.
package handlers

import (
	"strings"

	"proost/database"
	"proost/middleware"
	"proost/models"
	"proost/services"

	"github.com/gofiber/fiber/v2"
)

// GetUserProfile returns another user's profile with connection status and
// headline stats.
func GetUserProfile(c *fiber.Ctx) error {
	viewerID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	targetID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var user models.User
	if err := database.GetDB().First(&user, targetID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "User not found"})
	}

	status, err := connectionService.Status(viewerID, targetID)
	if err != nil {
		return serviceError(c, err)
	}

	profile := fiber.Map{
		"id":                user.ID,
		"username":          user.Username,
		"display_name":      user.DisplayName,
		"bio":               user.Bio,
		"avatar":            user.Avatar,
		"is_private":        user.IsPrivate,
		"connection_status": status,
	}

	// Stats stay hidden on private profiles unless viewer and target are
	// connected.
	connected := status == models.ConnectionStatusAccepted
	if viewerID == targetID || connected || !user.IsPrivate {
		stats, err := statsService.AchievementStats(targetID)
		if err != nil {
			return serviceError(c, err)
		}
		profile["stats"] = statsPanel(stats)
	}

	return c.JSON(fiber.Map{"success": true, "user": profile})
}

// GetUserStats returns the caller's own stats panel.
func GetUserStats(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	stats, err := statsService.AchievementStats(userID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "stats": statsPanel(stats)})
}

func statsPanel(stats *services.AchievementStats) fiber.Map {
	return fiber.Map{
		"total_beers":      stats.TotalBeers,
		"fastest_time":     stats.Fastest,
		"week_posts":       stats.WeekPosts,
		"month_posts":      stats.MonthPosts,
		"personal_bests":   stats.PersonalBests,
		"challenges":       stats.ChallengeCount,
		"connections":      stats.Connections,
		"competition_wins": stats.CompetitionWins,
		"max_streak":       stats.MaxStreak,
	}
}

// SearchUsers finds users by username or display name prefix.
func SearchUsers(c *fiber.Ctx) error {
	if _, err := middleware.GetUserID(c); err != nil {
		return err
	}

	query := strings.TrimSpace(c.Query("q"))
	if len(query) < 2 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Query must be at least 2 characters"})
	}

	var users []models.User
	err := database.GetDB().
		Where("username LIKE ? OR display_name LIKE ?", query+"%", query+"%").
		Limit(20).
		Find(&users).Error
	if err != nil {
		return serviceError(c, err)
	}

	results := make([]fiber.Map, 0, len(users))
	for _, u := range users {
		results = append(results, fiber.Map{
			"id":           u.ID,
			"username":     u.Username,
			"display_name": u.DisplayName,
			"avatar":       u.Avatar,
		})
	}

	return c.JSON(fiber.Map{"success": true, "users": results})
}
