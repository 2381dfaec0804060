// handlers/live.go - Websocket feed of competition progress.
package handlers

import (
	"proost/middleware"
	"proost/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// LiveUpgrade rejects non-websocket requests before the upgrade handler runs.
func LiveUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// LiveCompetition streams progress updates for one competition. Membership
// was checked by the auth middleware chain; the subscription lives until the
// client disconnects.
func LiveCompetition() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		compID := conn.Locals("competitionId").(uint)

		liveHub.Subscribe(compID, conn)
		defer liveHub.Unsubscribe(compID, conn)

		// Reads only serve to detect the close; inbound frames are ignored.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}

// LiveCompetitionAccess validates the competition and the caller's group
// membership, then stashes the ID for the upgrade handler.
func LiveCompetitionAccess(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	compID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if _, err := competitionAccess(userID, compID); err != nil {
		return serviceError(c, err)
	}

	c.Locals("competitionId", compID)
	return c.Next()
}

// BroadcastProgress pushes one update to the hub. Exposed for callers outside
// the request path (tests, future workers).
func BroadcastProgress(update services.ProgressUpdate) {
	liveHub.Broadcast(update)
}
