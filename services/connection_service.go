// services/connection_service.go - Pairwise connections.
//
// An accepted connection is two rows, one per direction, both accepted.
// Accepting writes the mirror row in the same transaction so a single
// accepted row without its mirror can never be observed.
package services

import (
	"errors"
	"time"

	"proost/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConnectionService struct {
	db *gorm.DB
}

func NewConnectionService(db *gorm.DB) *ConnectionService {
	return &ConnectionService{db: db}
}

// Request creates a pending connection request from requester to addressee.
func (s *ConnectionService) Request(requesterID, addresseeID uint) error {
	if requesterID == addresseeID {
		return ErrInvalidState
	}

	var addressee models.User
	if err := s.db.First(&addressee, addresseeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	conn := models.Connection{
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      models.ConnectionStatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&conn)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return ErrInvalidState
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInvalidState
	}
	return nil
}

// Accept flips the pending request to accepted and writes the mirror row.
func (s *ConnectionService) Accept(addresseeID, requesterID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var conn models.Connection
		err := tx.Where("requester_id = ? AND addressee_id = ? AND status = ?",
			requesterID, addresseeID, models.ConnectionStatusPending).
			First(&conn).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		conn.Status = models.ConnectionStatusAccepted
		if err := tx.Save(&conn).Error; err != nil {
			return err
		}

		mirror := models.Connection{
			RequesterID: addresseeID,
			AddresseeID: requesterID,
			Status:      models.ConnectionStatusAccepted,
			CreatedAt:   time.Now().UTC(),
		}
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "requester_id"}, {Name: "addressee_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"status": models.ConnectionStatusAccepted}),
		}).Create(&mirror).Error
		return err
	})
}

// Reject marks the pending request rejected.
func (s *ConnectionService) Reject(addresseeID, requesterID uint) error {
	res := s.db.Model(&models.Connection{}).
		Where("requester_id = ? AND addressee_id = ? AND status = ?",
			requesterID, addresseeID, models.ConnectionStatusPending).
		Update("status", models.ConnectionStatusRejected)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Remove deletes both directions of a connection.
func (s *ConnectionService) Remove(a, b uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Where(
			"(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)",
			a, b, b, a,
		).Delete(&models.Connection{}).Error
	})
}

// Status returns the outgoing status from a to b, or "" when none exists.
func (s *ConnectionService) Status(a, b uint) (models.ConnectionStatus, error) {
	var conn models.Connection
	err := s.db.Where("requester_id = ? AND addressee_id = ?", a, b).First(&conn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return conn.Status, nil
}

// Connections lists the users connected to userID.
func (s *ConnectionService) Connections(userID uint) ([]models.User, error) {
	var users []models.User
	err := s.db.
		Joins("JOIN connections ON connections.addressee_id = users.id").
		Where("connections.requester_id = ? AND connections.status = ?",
			userID, models.ConnectionStatusAccepted).
		Find(&users).Error
	return users, err
}

// PendingCount returns the number of requests awaiting the user's answer.
func (s *ConnectionService) PendingCount(userID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Connection{}).
		Where("addressee_id = ? AND status = ?", userID, models.ConnectionStatusPending).
		Count(&count).Error
	return count, err
}

// PendingRequests lists incoming pending requests with requester preloaded.
func (s *ConnectionService) PendingRequests(userID uint) ([]models.Connection, error) {
	var conns []models.Connection
	err := s.db.Preload("Requester").
		Where("addressee_id = ? AND status = ?", userID, models.ConnectionStatusPending).
		Order("created_at DESC").
		Find(&conns).Error
	return conns, err
}
