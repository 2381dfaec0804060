// handlers/connections.go
package handlers

import (
	"proost/middleware"

	"github.com/gofiber/fiber/v2"
)

// SendConnectionRequest creates a pending request to another user.
func SendConnectionRequest(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var req struct {
		UserID uint `json:"user_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.UserID == 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	if err := connectionService.Request(userID, req.UserID); err != nil {
		return serviceError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"success": true})
}

// AcceptConnectionRequest accepts a pending request addressed to the caller.
func AcceptConnectionRequest(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	requesterID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := connectionService.Accept(userID, requesterID); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// RejectConnectionRequest rejects a pending request addressed to the caller.
func RejectConnectionRequest(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	requesterID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := connectionService.Reject(userID, requesterID); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// RemoveConnection drops both directions of an existing connection.
func RemoveConnection(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	otherID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := connectionService.Remove(userID, otherID); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// GetConnections lists the caller's connected users.
func GetConnections(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	users, err := connectionService.Connections(userID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "connections": users})
}

// GetPendingRequests lists requests awaiting the caller's answer.
func GetPendingRequests(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	requests, err := connectionService.PendingRequests(userID)
	if err != nil {
		return serviceError(c, err)
	}
	count, err := connectionService.PendingCount(userID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "requests": requests, "count": count})
}
