// services/visibility_service.go - Per-post audience resolution.
//
// The caption and the photo of a post have different audiences: captions are
// visible to connections, to everyone when the owner is not private, and to
// group-mates of any group the post was shared to. The photo is narrower:
// the connection / not-private path additionally requires the post's own
// public flag, while the shared-group path does not.
package services

import (
	"errors"

	"proost/models"

	"gorm.io/gorm"
)

type VisibilityService struct {
	db *gorm.DB
}

func NewVisibilityService(db *gorm.DB) *VisibilityService {
	return &VisibilityService{db: db}
}

// CaptionVisible reports whether the viewer may see the post's caption and
// timing.
func (s *VisibilityService) CaptionVisible(viewerID uint, post *models.Post) (bool, error) {
	if post.UserID == viewerID {
		return true, nil
	}

	owner, err := s.owner(post)
	if err != nil {
		return false, err
	}

	connected, err := s.Connected(viewerID, post.UserID)
	if err != nil {
		return false, err
	}
	if connected {
		return true, nil
	}
	if !owner.IsPrivate {
		return true, nil
	}

	return s.sharesGroup(viewerID, post.ID)
}

// PhotoVisible reports whether the viewer may see the post's photo.
func (s *VisibilityService) PhotoVisible(viewerID uint, post *models.Post) (bool, error) {
	if post.PhotoFilename == nil {
		return false, nil
	}
	return s.photoAudience(viewerID, post)
}

// PhotoWasRemoved reports whether a since-deleted photo would have been
// visible to this viewer, to decide between a "photo removed" placeholder
// and nothing at all.
func (s *VisibilityService) PhotoWasRemoved(viewerID uint, post *models.Post) (bool, error) {
	if !post.PhotoRemoved {
		return false, nil
	}
	if post.PhotoFilename != nil {
		return false, nil
	}
	return s.photoAudience(viewerID, post)
}

// photoAudience is the shared photo rule: owner, the public-flag gated
// connection / not-private path, or group membership.
func (s *VisibilityService) photoAudience(viewerID uint, post *models.Post) (bool, error) {
	if post.UserID == viewerID {
		return true, nil
	}

	if post.IsPublic {
		connected, err := s.Connected(viewerID, post.UserID)
		if err != nil {
			return false, err
		}
		if connected {
			return true, nil
		}

		owner, err := s.owner(post)
		if err != nil {
			return false, err
		}
		if !owner.IsPrivate {
			return true, nil
		}
	}

	return s.sharesGroup(viewerID, post.ID)
}

// Connected reports whether the two users have an accepted connection.
// Accepted pairs are stored as mirrored rows, so one matching row suffices.
func (s *VisibilityService) Connected(a, b uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.Connection{}).
		Where("status = ?", models.ConnectionStatusAccepted).
		Where("(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)",
			a, b, b, a).
		Count(&count).Error
	return count > 0, err
}

func (s *VisibilityService) sharesGroup(viewerID, postID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.PostGroup{}).
		Joins("JOIN group_members ON group_members.group_id = post_groups.group_id").
		Where("post_groups.post_id = ? AND group_members.user_id = ?", postID, viewerID).
		Count(&count).Error
	return count > 0, err
}

func (s *VisibilityService) owner(post *models.Post) (*models.User, error) {
	if post.User != nil {
		return post.User, nil
	}

	var owner models.User
	if err := s.db.First(&owner, post.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	post.User = &owner
	return &owner, nil
}
