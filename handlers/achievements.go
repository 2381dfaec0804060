// handlers/achievements.go - Unlock listings and the unseen-badge counter.
package handlers

import (
	"proost/database"
	"proost/middleware"
	"proost/models"

	"github.com/gofiber/fiber/v2"
)

// GetUserAchievements returns every definition with the caller's unlock
// state, grouped by category. Viewing the page clears the unseen counter.
func GetUserAchievements(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	db := database.GetDB()

	var defs []models.Achievement
	if err := db.Order("id ASC").Find(&defs).Error; err != nil {
		return serviceError(c, err)
	}

	var unlocks []models.UserAchievement
	if err := db.Where("user_id = ?", userID).Find(&unlocks).Error; err != nil {
		return serviceError(c, err)
	}

	unlockedAt := make(map[string]models.UserAchievement, len(unlocks))
	for _, ua := range unlocks {
		unlockedAt[ua.AchievementSlug] = ua
	}

	categories := make(map[string][]fiber.Map)
	unlockedCount := 0
	for _, def := range defs {
		entry := fiber.Map{
			"slug":        def.Slug,
			"name":        def.Name,
			"icon":        def.Icon,
			"description": def.Description,
			"unlocked":    false,
		}
		if ua, ok := unlockedAt[def.Slug]; ok {
			entry["unlocked"] = true
			entry["unlocked_at"] = ua.UnlockedAt
			unlockedCount++
		}
		cat := def.Category()
		categories[cat] = append(categories[cat], entry)
	}

	badgeCache.Invalidate(userID)

	return c.JSON(fiber.Map{
		"success":    true,
		"categories": categories,
		"unlocked":   unlockedCount,
		"total":      len(defs),
	})
}

// GetAchievementBadge returns how many unlocks the caller has not seen yet.
func GetAchievementBadge(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "count": badgeCache.Count(userID)})
}
