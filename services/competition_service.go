// services/competition_service.go - Competition lifecycle and progress
// tracking.
package services

import (
	"errors"
	"sync"
	"time"

	"proost/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressUpdate describes one progress write, for caller-side broadcasting
// after the surrounding transaction commits.
type ProgressUpdate struct {
	CompetitionID uint   `json:"competition_id"`
	Title         string `json:"title"`
	UserID        uint   `json:"user_id"`
	Total         int    `json:"total"`
	Target        int    `json:"target"`
	Completed     bool   `json:"completed"`
}

type CompetitionService struct {
	db *gorm.DB

	// One mutex per competition. The winner declaration is check-then-act on
	// the status column, so concurrent recorders for the same competition
	// must serialize; the row lock below covers other processes, this covers
	// goroutines sharing this instance.
	locks sync.Map
}

func NewCompetitionService(db *gorm.DB) *CompetitionService {
	return &CompetitionService{db: db}
}

func (s *CompetitionService) lockFor(competitionID uint) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(competitionID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// sqlite has no row locks; the per-competition mutex alone serializes there.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// RecordPost counts a freshly created post toward every active competition
// its owner participates in. Must run inside the same transaction that
// persists the post. Safe under re-delivery: the (competition, post) unique
// guard makes a second recording of the same post a no-op.
func (s *CompetitionService) RecordPost(tx *gorm.DB, post *models.Post) ([]ProgressUpdate, error) {
	// Fixed iteration order so concurrent recorders acquire the per-row
	// locks in the same sequence and cannot deadlock each other.
	var participants []models.CompetitionParticipant
	err := tx.
		Joins("JOIN competitions ON competitions.id = competition_participants.competition_id").
		Where("competition_participants.user_id = ? AND competitions.status = ?",
			post.UserID, models.CompetitionStatusActive).
		Order("competition_participants.competition_id ASC").
		Find(&participants).Error
	if err != nil {
		return nil, err
	}

	updates := make([]ProgressUpdate, 0, len(participants))
	for _, participant := range participants {
		update, err := s.recordOne(tx, participant, post)
		if err != nil {
			return updates, err
		}
		if update != nil {
			updates = append(updates, *update)
		}
	}

	return updates, nil
}

// recordOne applies one post to one competition under the per-competition
// serialization point. The status is re-read under lock: the competition may
// have completed between the participant scan and now, which is a normal
// race outcome, not an error.
func (s *CompetitionService) recordOne(tx *gorm.DB, participant models.CompetitionParticipant, post *models.Post) (*ProgressUpdate, error) {
	mu := s.lockFor(participant.CompetitionID)
	mu.Lock()
	defer mu.Unlock()

	var comp models.Competition
	err := lockForUpdate(tx).First(&comp, participant.CompetitionID).Error
	if err != nil {
		return nil, err
	}
	if comp.Status != models.CompetitionStatusActive {
		return nil, nil
	}

	progress := models.CompetitionProgress{
		CompetitionID: comp.ID,
		PostID:        post.ID,
		UserID:        post.UserID,
		BeerCount:     post.BeerCount,
		CreatedAt:     time.Now().UTC(),
	}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&progress)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nil, nil
		}
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Already counted on a previous delivery.
		return nil, nil
	}

	err = tx.Model(&models.CompetitionParticipant{}).
		Where("id = ?", participant.ID).
		Update("beer_count", gorm.Expr("beer_count + ?", post.BeerCount)).Error
	if err != nil {
		return nil, err
	}

	var fresh models.CompetitionParticipant
	if err := tx.First(&fresh, participant.ID).Error; err != nil {
		return nil, err
	}

	update := ProgressUpdate{
		CompetitionID: comp.ID,
		Title:         comp.Title,
		UserID:        post.UserID,
		Total:         fresh.BeerCount,
		Target:        comp.TargetBeers,
	}

	if fresh.BeerCount >= comp.TargetBeers {
		// Guarded transition: the status predicate makes the first committer
		// the only winner even if the row lock was not honored.
		now := time.Now().UTC()
		res := tx.Model(&models.Competition{}).
			Where("id = ? AND status = ?", comp.ID, models.CompetitionStatusActive).
			Updates(map[string]interface{}{
				"status":       models.CompetitionStatusCompleted,
				"winner_id":    post.UserID,
				"completed_at": now,
			})
		if res.Error != nil {
			return nil, res.Error
		}
		update.Completed = res.RowsAffected == 1
	}

	return &update, nil
}

// RemovePost deletes a post's progress rows and walks the counters back on
// competitions that are still active. Completed competitions keep their
// final standings. Runs inside the post-deletion transaction.
func (s *CompetitionService) RemovePost(tx *gorm.DB, postID uint) error {
	var entries []models.CompetitionProgress
	if err := tx.Where("post_id = ?", postID).Find(&entries).Error; err != nil {
		return err
	}

	for _, entry := range entries {
		var comp models.Competition
		if err := tx.First(&comp, entry.CompetitionID).Error; err != nil {
			return err
		}
		if comp.Status == models.CompetitionStatusActive {
			err := tx.Model(&models.CompetitionParticipant{}).
				Where("competition_id = ? AND user_id = ?", entry.CompetitionID, entry.UserID).
				Update("beer_count", gorm.Expr("beer_count - ?", entry.BeerCount)).Error
			if err != nil {
				return err
			}
		}
		if err := tx.Delete(&entry).Error; err != nil {
			return err
		}
	}

	return nil
}

// Create starts a competition in a group. Only group admins may create one.
func (s *CompetitionService) Create(groupID, creatorID uint, title, description string, targetBeers int) (*models.Competition, error) {
	if targetBeers < 1 {
		return nil, ErrInvalidState
	}

	var member models.GroupMember
	err := s.db.Where("group_id = ? AND user_id = ?", groupID, creatorID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotMember
		}
		return nil, err
	}

	comp := &models.Competition{
		GroupID:     groupID,
		CreatedByID: creatorID,
		Title:       title,
		Description: description,
		TargetBeers: targetBeers,
		Status:      models.CompetitionStatusActive,
		CreatedAt:   time.Now().UTC(),
	}

	// The creator races too.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comp).Error; err != nil {
			return err
		}
		return tx.Create(&models.CompetitionParticipant{
			CompetitionID: comp.ID,
			UserID:        creatorID,
			JoinedAt:      time.Now().UTC(),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return comp, nil
}

// Join adds a group member to an active competition.
func (s *CompetitionService) Join(competitionID, userID uint) error {
	var comp models.Competition
	if err := s.db.First(&comp, competitionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if comp.Status != models.CompetitionStatusActive {
		return ErrInvalidState
	}

	var member models.GroupMember
	err := s.db.Where("group_id = ? AND user_id = ?", comp.GroupID, userID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotMember
		}
		return err
	}

	participant := models.CompetitionParticipant{
		CompetitionID: competitionID,
		UserID:        userID,
		JoinedAt:      time.Now().UTC(),
	}
	res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&participant)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return ErrAlreadyParticipant
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyParticipant
	}
	return nil
}

// Leave removes a participant from an active competition together with their
// progress entries, so rejoining starts from zero.
func (s *CompetitionService) Leave(competitionID, userID uint) error {
	var comp models.Competition
	if err := s.db.First(&comp, competitionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if comp.Status != models.CompetitionStatusActive {
		return ErrInvalidState
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("competition_id = ? AND user_id = ?", competitionID, userID).
			Delete(&models.CompetitionParticipant{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotParticipant
		}
		return tx.Where("competition_id = ? AND user_id = ?", competitionID, userID).
			Delete(&models.CompetitionProgress{}).Error
	})
}

// Delete removes a competition with its participants and progress entries.
func (s *CompetitionService) Delete(competitionID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("competition_id = ?", competitionID).
			Delete(&models.CompetitionProgress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("competition_id = ?", competitionID).
			Delete(&models.CompetitionParticipant{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Competition{}, competitionID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Get fetches one competition with its winner preloaded.
func (s *CompetitionService) Get(competitionID uint) (*models.Competition, error) {
	var comp models.Competition
	err := s.db.Preload("Winner").First(&comp, competitionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &comp, nil
}

// Standings returns the participants of a competition ordered by count,
// ties by join order.
func (s *CompetitionService) Standings(competitionID uint) ([]models.CompetitionParticipant, error) {
	var participants []models.CompetitionParticipant
	err := s.db.Preload("User").
		Where("competition_id = ?", competitionID).
		Order("beer_count DESC, joined_at ASC").
		Find(&participants).Error
	return participants, err
}

// ListForGroup returns a group's competitions, active first, newest first
// within each status.
func (s *CompetitionService) ListForGroup(groupID uint) ([]models.Competition, error) {
	var comps []models.Competition
	err := s.db.Preload("Winner").
		Where("group_id = ?", groupID).
		Order("status ASC, created_at DESC").
		Find(&comps).Error
	return comps, err
}
