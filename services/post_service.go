// services/post_service.go - Post lifecycle: the engine's write path.
package services

import (
	"errors"
	"time"

	"proost/models"

	"gorm.io/gorm"
)

// MaxBeersPerPost caps a single post's quantity.
const MaxBeersPerPost = 24

type PostService struct {
	db           *gorm.DB
	stats        *StatsService
	competitions *CompetitionService
	achievements *AchievementService
}

func NewPostService(db *gorm.DB, competitions *CompetitionService, achievements *AchievementService) *PostService {
	return &PostService{
		db:           db,
		stats:        NewStatsService(db),
		competitions: competitions,
		achievements: achievements,
	}
}

type CreatePostInput struct {
	UserID           uint
	BeerCount        int
	DrinkTimeSeconds *float64
	IsVDL            bool
	Category         *string
	Caption          string
	PhotoFilename    *string
	IsPublic         bool
	GroupIDs         []uint
}

// CreatePostResult carries the post plus everything the caller owes the
// outside world after commit: progress broadcasts and unlock notifications.
type CreatePostResult struct {
	Post     *models.Post
	Progress []ProgressUpdate
	Unlocked []models.Achievement
}

// Create persists a post, counts it toward active competitions in the same
// transaction, and evaluates achievements after the commit. Achievement
// evaluation failures do not undo the post; the unlocks complete on the next
// evaluation.
func (s *PostService) Create(in CreatePostInput) (*CreatePostResult, error) {
	// A post either carries a timing or is explicitly marked VDL.
	if !in.IsVDL && in.DrinkTimeSeconds == nil {
		return nil, ErrInvalidState
	}
	if in.IsVDL {
		in.DrinkTimeSeconds = nil
	}

	beerCount := in.BeerCount
	if beerCount < 1 {
		beerCount = 1
	}
	if beerCount > MaxBeersPerPost {
		beerCount = MaxBeersPerPost
	}

	groupIDs, err := s.memberGroups(in.UserID, in.GroupIDs)
	if err != nil {
		return nil, err
	}

	isPB := false
	if in.DrinkTimeSeconds != nil {
		best, err := s.stats.PersonalBest(in.UserID)
		if err != nil {
			return nil, err
		}
		isPB = best == nil || *in.DrinkTimeSeconds < *best
	}

	post := &models.Post{
		UserID:           in.UserID,
		BeerCount:        beerCount,
		DrinkTimeSeconds: in.DrinkTimeSeconds,
		IsVDL:            in.IsVDL,
		Category:         in.Category,
		Caption:          in.Caption,
		PhotoFilename:    in.PhotoFilename,
		IsPublic:         in.IsPublic,
		IsPersonalBest:   isPB,
		CreatedAt:        time.Now().UTC(),
	}

	var progress []ProgressUpdate
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}

		for _, groupID := range groupIDs {
			link := models.PostGroup{PostID: post.ID, GroupID: groupID}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}

		var err error
		progress, err = s.competitions.RecordPost(tx, post)
		return err
	})
	if err != nil {
		return nil, err
	}

	unlocked, err := s.achievements.Evaluate(in.UserID)
	if err != nil {
		// The post is committed; surface the unlocks we did get.
		return &CreatePostResult{Post: post, Progress: progress, Unlocked: unlocked}, err
	}

	return &CreatePostResult{Post: post, Progress: progress, Unlocked: unlocked}, nil
}

// memberGroups filters the requested share targets down to groups the owner
// actually belongs to.
func (s *PostService) memberGroups(userID uint, groupIDs []uint) ([]uint, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}

	var valid []uint
	err := s.db.Model(&models.GroupMember{}).
		Where("user_id = ? AND group_id IN ?", userID, groupIDs).
		Pluck("group_id", &valid).Error
	return valid, err
}

// UpdateTiming corrects a post's timing or VDL marker. Owner only.
func (s *PostService) UpdateTiming(postID, userID uint, drinkTime *float64, isVDL bool) (*models.Post, error) {
	post, err := s.ownedPost(postID, userID)
	if err != nil {
		return nil, err
	}

	if !isVDL && drinkTime == nil {
		return nil, ErrInvalidState
	}
	if isVDL {
		drinkTime = nil
	}

	post.DrinkTimeSeconds = drinkTime
	post.IsVDL = isVDL
	if err := s.db.Save(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// UpdateGroups replaces a post's group shares. Owner only.
func (s *PostService) UpdateGroups(postID, userID uint, groupIDs []uint) error {
	post, err := s.ownedPost(postID, userID)
	if err != nil {
		return err
	}

	valid, err := s.memberGroups(userID, groupIDs)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostGroup{}).Error; err != nil {
			return err
		}
		for _, groupID := range valid {
			link := models.PostGroup{PostID: post.ID, GroupID: groupID}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a post and cascades to its group links and competition
// progress. Owner only.
func (s *PostService) Delete(postID, userID uint) error {
	post, err := s.ownedPost(postID, userID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.competitions.RemovePost(tx, post.ID); err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostGroup{}).Error; err != nil {
			return err
		}
		return tx.Delete(post).Error
	})
}

// RemovePhoto detaches a post's photo but remembers that one existed, so the
// original audience still gets a placeholder.
func (s *PostService) RemovePhoto(postID, userID uint) error {
	post, err := s.ownedPost(postID, userID)
	if err != nil {
		return err
	}
	if post.PhotoFilename == nil {
		return ErrInvalidState
	}

	return s.db.Model(post).Updates(map[string]interface{}{
		"photo_filename": nil,
		"photo_removed":  true,
	}).Error
}

// EventsForUser returns a user's posts, newest first, optionally restricted
// to a trailing window.
func (s *PostService) EventsForUser(userID uint, since *time.Time, limit int) ([]models.Post, error) {
	q := s.db.Where("user_id = ?", userID).Order("created_at DESC")
	if since != nil {
		q = q.Where("created_at >= ?", *since)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var posts []models.Post
	err := q.Find(&posts).Error
	return posts, err
}

// FeedFor returns the candidate feed for a viewer: their own posts, their
// connections' posts, and posts shared to their groups, newest first. The
// caller still runs per-post visibility resolution; this only bounds the
// candidate set.
func (s *PostService) FeedFor(viewerID uint, limit int) ([]models.Post, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var posts []models.Post
	err := s.db.Preload("User").
		Where(`posts.user_id = ?
			OR posts.user_id IN (SELECT addressee_id FROM connections WHERE requester_id = ? AND status = ?)
			OR posts.id IN (SELECT post_id FROM post_groups JOIN group_members ON group_members.group_id = post_groups.group_id WHERE group_members.user_id = ?)`,
			viewerID, viewerID, models.ConnectionStatusAccepted, viewerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

// Get fetches one post with its owner and group links.
func (s *PostService) Get(postID uint) (*models.Post, error) {
	var post models.Post
	err := s.db.Preload("User").Preload("GroupLinks").First(&post, postID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (s *PostService) ownedPost(postID, userID uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if post.UserID != userID {
		return nil, ErrNotFound
	}
	return &post, nil
}
