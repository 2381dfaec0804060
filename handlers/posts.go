// handlers/posts.go - Post creation, editing and viewer-resolved reads.
package handlers

import (
	"log"
	"strconv"
	"time"

	"proost/middleware"
	"proost/models"
	"proost/services"

	"github.com/gofiber/fiber/v2"
)

type CreatePostRequest struct {
	BeerCount        int      `json:"beer_count"`
	DrinkTimeSeconds *float64 `json:"drink_time_seconds"`
	IsVDL            bool     `json:"is_vdl"`
	Category         *string  `json:"category"`
	Caption          string   `json:"caption"`
	PhotoFilename    *string  `json:"photo_filename"`
	IsPublic         bool     `json:"is_public"`
	GroupIDs         []uint   `json:"group_ids"`
}

// CreatePost records a beer. Competition progress is pushed to live
// subscribers and fresh unlocks bump the badge counter, both after the
// write has committed.
func CreatePost(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var req CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	result, err := postService.Create(services.CreatePostInput{
		UserID:           userID,
		BeerCount:        req.BeerCount,
		DrinkTimeSeconds: req.DrinkTimeSeconds,
		IsVDL:            req.IsVDL,
		Category:         req.Category,
		Caption:          req.Caption,
		PhotoFilename:    req.PhotoFilename,
		IsPublic:         req.IsPublic,
		GroupIDs:         req.GroupIDs,
	})
	if err != nil {
		if result == nil {
			return serviceError(c, err)
		}
		// The post committed; the unlocks that did not land complete on the
		// next evaluation.
		log.Printf("posts: achievement evaluation for user %d incomplete: %v", userID, err)
	}

	for _, update := range result.Progress {
		liveHub.Broadcast(update)
	}
	badgeCache.Add(userID, len(result.Unlocked))

	return c.Status(201).JSON(fiber.Map{
		"success":      true,
		"post":         result.Post,
		"progress":     result.Progress,
		"achievements": result.Unlocked,
	})
}

// UpdatePostTiming corrects a post's drink time or VDL marker.
func UpdatePostTiming(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	postID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		DrinkTimeSeconds *float64 `json:"drink_time_seconds"`
		IsVDL            bool     `json:"is_vdl"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	post, err := postService.UpdateTiming(postID, userID, req.DrinkTimeSeconds, req.IsVDL)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "post": post})
}

// UpdatePostGroups replaces which groups a post is shared with.
func UpdatePostGroups(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	postID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		GroupIDs []uint `json:"group_ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	if err := postService.UpdateGroups(postID, userID, req.GroupIDs); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// DeletePost removes a post and rolls back the progress it contributed to
// still-active competitions.
func DeletePost(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	postID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := postService.Delete(postID, userID); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// RemovePostPhoto detaches a post's photo, leaving a placeholder for the
// audience that could see it.
func RemovePostPhoto(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	postID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := postService.RemovePhoto(postID, userID); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// GetPost returns one post with its fields resolved for the viewer.
func GetPost(c *fiber.Ctx) error {
	viewerID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	postID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	post, err := postService.Get(postID)
	if err != nil {
		return serviceError(c, err)
	}

	view, visible, err := postView(viewerID, post)
	if err != nil {
		return serviceError(c, err)
	}
	if !visible {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Not found"})
	}

	return c.JSON(fiber.Map{"success": true, "post": view})
}

// GetUserPosts lists a user's posts, resolved for the viewer. Posts whose
// caption the viewer may not see are dropped entirely.
func GetUserPosts(c *fiber.Ctx) error {
	viewerID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	targetID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var since *time.Time
	if days, err := strconv.Atoi(c.Query("days")); err == nil && days > 0 {
		t := time.Now().UTC().AddDate(0, 0, -days)
		since = &t
	}
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	posts, err := postService.EventsForUser(targetID, since, limit)
	if err != nil {
		return serviceError(c, err)
	}

	views := make([]fiber.Map, 0, len(posts))
	for i := range posts {
		view, visible, err := postView(viewerID, &posts[i])
		if err != nil {
			return serviceError(c, err)
		}
		if visible {
			views = append(views, view)
		}
	}

	return c.JSON(fiber.Map{"success": true, "posts": views})
}

// GetFeed returns the viewer's feed: own posts, connections' posts and
// group-shared posts, each resolved through the visibility rules.
func GetFeed(c *fiber.Ctx) error {
	viewerID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	posts, err := postService.FeedFor(viewerID, limit)
	if err != nil {
		return serviceError(c, err)
	}

	views := make([]fiber.Map, 0, len(posts))
	for i := range posts {
		view, visible, err := postView(viewerID, &posts[i])
		if err != nil {
			return serviceError(c, err)
		}
		if visible {
			views = append(views, view)
		}
	}

	return c.JSON(fiber.Map{"success": true, "posts": views})
}

// postView resolves one post for a viewer. The second return is false when
// the viewer may not see the post at all.
func postView(viewerID uint, post *models.Post) (fiber.Map, bool, error) {
	captionOK, err := visibilityService.CaptionVisible(viewerID, post)
	if err != nil {
		return nil, false, err
	}
	if !captionOK {
		return nil, false, nil
	}

	view := fiber.Map{
		"id":                 post.ID,
		"user_id":            post.UserID,
		"beer_count":         post.BeerCount,
		"drink_time_seconds": post.DrinkTimeSeconds,
		"is_vdl":             post.IsVDL,
		"category":           post.Category,
		"caption":            post.Caption,
		"is_personal_best":   post.IsPersonalBest,
		"created_at":         post.CreatedAt,
	}
	if post.User != nil {
		view["user"] = fiber.Map{
			"id":           post.User.ID,
			"username":     post.User.Username,
			"display_name": post.User.DisplayName,
			"avatar":       post.User.Avatar,
		}
	}

	photoOK, err := visibilityService.PhotoVisible(viewerID, post)
	if err != nil {
		return nil, false, err
	}
	if photoOK {
		view["photo_filename"] = *post.PhotoFilename
	} else {
		removed, err := visibilityService.PhotoWasRemoved(viewerID, post)
		if err != nil {
			return nil, false, err
		}
		view["photo_removed"] = removed
	}

	return view, true, nil
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, fiber.NewError(400, "Invalid ID")
	}
	return uint(id), nil
}
