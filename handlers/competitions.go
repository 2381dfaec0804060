// handlers/competitions.go
package handlers

import (
	"strings"

	"proost/middleware"
	"proost/models"
	"proost/services"

	"github.com/gofiber/fiber/v2"
)

// competitionAccess fetches a competition and checks the caller belongs to
// its group.
func competitionAccess(userID, compID uint) (*models.Competition, error) {
	comp, err := competitionService.Get(compID)
	if err != nil {
		return nil, err
	}

	member, err := groupService.IsMember(userID, comp.GroupID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, services.ErrNotMember
	}
	return comp, nil
}

type CreateCompetitionRequest struct {
	GroupID     uint   `json:"group_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	TargetBeers int    `json:"target_beers"`
}

// CreateCompetition starts a race in one of the caller's groups. The caller
// joins automatically.
func CreateCompetition(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var req CreateCompetitionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || len(req.Title) > 100 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Title must be 1-100 characters"})
	}
	if req.TargetBeers < 1 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Target must be at least 1"})
	}

	comp, err := competitionService.Create(req.GroupID, userID, req.Title, req.Description, req.TargetBeers)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "competition": comp})
}

// GetGroupCompetitions lists a group's competitions, active first.
func GetGroupCompetitions(c *fiber.Ctx) error {
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

	comps, err := competitionService.ListForGroup(groupID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "competitions": comps})
}

// GetCompetitionStandings returns the live standings of one competition.
func GetCompetitionStandings(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	compID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	comp, err := competitionAccess(userID, compID)
	if err != nil {
		return serviceError(c, err)
	}

	standings, err := competitionService.Standings(compID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"competition": comp,
		"standings":   standings,
	})
}

// JoinCompetition adds the caller to an active competition in their group.
func JoinCompetition(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	compID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := competitionService.Join(compID, userID); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// LeaveCompetition removes the caller and their progress from an active
// competition.
func LeaveCompetition(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	compID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := competitionService.Leave(compID, userID); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// DeleteCompetition removes a competition. Group admins only.
func DeleteCompetition(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	compID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	comp, err := competitionAccess(userID, compID)
	if err != nil {
		return serviceError(c, err)
	}

	admin, err := groupService.IsAdmin(userID, comp.GroupID)
	if err != nil {
		return serviceError(c, err)
	}
	if !admin && comp.CreatedByID != userID {
		return c.Status(403).JSON(fiber.Map{"success": false, "error": "Not allowed"})
	}

	if err := competitionService.Delete(compID); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}
