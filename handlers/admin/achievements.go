// handlers/admin/achievements.go - Definition management.
package admin

import (
	"strconv"
	"strings"

	"proost/database"
	"proost/models"
	"proost/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AchievementRequest struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

// GetAchievements lists every definition with unlock counts.
func GetAchievements(c *fiber.Ctx) error {
	db := database.GetDB()

	var defs []models.Achievement
	if err := db.Order("id ASC").Find(&defs).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to load achievements"})
	}

	type countRow struct {
		AchievementSlug string
		Count           int64
	}
	var counts []countRow
	db.Model(&models.UserAchievement{}).
		Select("achievement_slug, COUNT(*) as count").
		Group("achievement_slug").
		Scan(&counts)

	bySlug := make(map[string]int64, len(counts))
	for _, row := range counts {
		bySlug[row.AchievementSlug] = row.Count
	}

	result := make([]fiber.Map, 0, len(defs))
	for _, def := range defs {
		result = append(result, fiber.Map{
			"id":          def.ID,
			"slug":        def.Slug,
			"name":        def.Name,
			"icon":        def.Icon,
			"description": def.Description,
			"category":    def.Category(),
			"unlocks":     bySlug[def.Slug],
		})
	}

	return c.JSON(fiber.Map{"success": true, "achievements": result})
}

// CreateAchievement adds one definition.
func CreateAchievement(c *fiber.Ctx) error {
	var req AchievementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	req.Slug = strings.TrimSpace(req.Slug)
	if req.Slug == "" || req.Name == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Slug and name are required"})
	}

	ach := models.Achievement{
		Slug:        req.Slug,
		Name:        req.Name,
		Icon:        req.Icon,
		Description: req.Description,
	}
	if err := database.GetDB().Create(&ach).Error; err != nil {
		return c.Status(409).JSON(fiber.Map{"success": false, "error": "Slug already exists"})
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "achievement": ach})
}

// UpdateAchievement edits a definition's display fields. The slug is
// immutable; unlocks reference it.
func UpdateAchievement(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid ID"})
	}

	var req AchievementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	db := database.GetDB()

	var ach models.Achievement
	if err := db.First(&ach, uint(id)).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Achievement not found"})
	}

	if req.Name != "" {
		ach.Name = req.Name
	}
	if req.Icon != "" {
		ach.Icon = req.Icon
	}
	if req.Description != "" {
		ach.Description = req.Description
	}

	if err := db.Save(&ach).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to update achievement"})
	}

	return c.JSON(fiber.Map{"success": true, "achievement": ach})
}

// DeleteAchievement retires a definition together with every unlock of it.
func DeleteAchievement(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid ID"})
	}

	db := database.GetDB()

	var ach models.Achievement
	if err := db.First(&ach, uint(id)).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Achievement not found"})
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("achievement_slug = ?", ach.Slug).
			Delete(&models.UserAchievement{}).Error; err != nil {
			return err
		}
		return tx.Delete(&ach).Error
	})
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to delete achievement"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// ReseedAchievements resets the definition table to the stock list, or to a
// JSON file named in the request.
func ReseedAchievements(c *fiber.Ctx) error {
	var req struct {
		Path string `json:"path"`
	}
	_ = c.BodyParser(&req)

	defs := services.DefaultAchievementDefs()
	if req.Path != "" {
		loaded, err := services.LoadAchievementDefs(req.Path)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"success": false, "error": "Failed to load definitions"})
		}
		defs = loaded
	}

	svc := services.NewAchievementService(database.GetDB(), nil)
	if err := svc.Seed(defs); err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to seed achievements"})
	}

	return c.JSON(fiber.Map{"success": true, "seeded": len(defs)})
}
