// handlers/leaderboard.go
package handlers

import (
	"strconv"

	"proost/middleware"
	"proost/services"

	"github.com/gofiber/fiber/v2"
)

// GetGlobalLeaderboard ranks all users over their publicly flagged posts.
// Query params: metric (fastest|total|average|wins), period (all|week|month),
// limit.
func GetGlobalLeaderboard(c *fiber.Ctx) error {
	metric := services.ParseMetric(c.Query("metric"))
	period := services.ParsePeriod(c.Query("period"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	rows, err := leaderboardService.GlobalRankings(metric, period, limit)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"metric":   metric,
		"period":   period,
		"rankings": rows,
	})
}

// GetGroupLeaderboard ranks a group's members over posts shared to that
// group. Members only.
func GetGroupLeaderboard(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	groupID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	member, err := groupService.IsMember(userID, groupID)
	if err != nil {
		return serviceError(c, err)
	}
	if !member {
		return c.Status(403).JSON(fiber.Map{"success": false, "error": "Not a group member"})
	}

	metric := services.ParseMetric(c.Query("metric"))
	period := services.ParsePeriod(c.Query("period"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	rows, err := leaderboardService.GroupRankings(groupID, metric, period, limit)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"metric":   metric,
		"period":   period,
		"rankings": rows,
	})
}
