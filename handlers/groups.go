// handlers/groups.go
package handlers

import (
	"strings"

	"proost/middleware"

	"github.com/gofiber/fiber/v2"
)

type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPrivate   bool   `json:"is_private"`
}

// CreateGroup makes a group with the caller as admin.
func CreateGroup(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var req CreateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || len(req.Name) > 50 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Group name must be 1-50 characters"})
	}

	group, err := groupService.Create(userID, req.Name, req.Description, req.IsPrivate)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "group": group})
}

// JoinGroup joins a group via its invite code. Joining twice is a no-op.
func JoinGroup(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var req struct {
		InviteCode string `json:"invite_code"`
	}
	if err := c.BodyParser(&req); err != nil || req.InviteCode == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invite code required"})
	}

	group, err := groupService.JoinByCode(userID, strings.ToUpper(strings.TrimSpace(req.InviteCode)))
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "group": group})
}

// GetUserGroups lists the caller's groups.
func GetUserGroups(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	groups, err := groupService.UserGroups(userID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "groups": groups})
}

// GetGroup returns one group with its members. Members only.
func GetGroup(c *fiber.Ctx) error {
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

	group, err := groupService.Get(groupID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "group": group})
}

// RequestJoinGroup asks to join a group without an invite code.
func RequestJoinGroup(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	groupID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := groupService.RequestJoin(userID, groupID); err != nil {
		return serviceError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"success": true})
}

// GetGroupJoinRequests lists pending join requests. Group admins only.
func GetGroupJoinRequests(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	groupID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	admin, err := groupService.IsAdmin(userID, groupID)
	if err != nil {
		return serviceError(c, err)
	}
	if !admin {
		return c.Status(403).JSON(fiber.Map{"success": false, "error": "Not a group admin"})
	}

	requests, err := groupService.JoinRequests(groupID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "requests": requests})
}

// ResolveGroupJoinRequest approves or rejects a join request. Group admins
// only.
func ResolveGroupJoinRequest(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	groupID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	targetID, err := paramID(c, "userId")
	if err != nil {
		return err
	}

	var req struct {
		Approve bool `json:"approve"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	admin, err := groupService.IsAdmin(userID, groupID)
	if err != nil {
		return serviceError(c, err)
	}
	if !admin {
		return c.Status(403).JSON(fiber.Map{"success": false, "error": "Not a group admin"})
	}

	if err := groupService.ResolveJoinRequest(groupID, targetID, req.Approve); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// LeaveGroup removes the caller's membership.
func LeaveGroup(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	groupID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := groupService.Leave(userID, groupID); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}
