// services/group_service.go - Groups and memberships.
package services

import (
	"errors"
	"strings"
	"time"

	"proost/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GroupService struct {
	db *gorm.DB
}

func NewGroupService(db *gorm.DB) *GroupService {
	return &GroupService{db: db}
}

// Create makes a group with the creator as admin.
func (s *GroupService) Create(creatorID uint, name, description string, isPrivate bool) (*models.Group, error) {
	if name == "" {
		return nil, ErrInvalidState
	}

	group := &models.Group{
		Name:        name,
		Description: description,
		InviteCode:  newInviteCode(),
		IsPrivate:   isPrivate,
		CreatedByID: creatorID,
		CreatedAt:   time.Now().UTC(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		return tx.Create(&models.GroupMember{
			GroupID:  group.ID,
			UserID:   creatorID,
			Role:     models.GroupRoleAdmin,
			JoinedAt: time.Now().UTC(),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return group, nil
}

func newInviteCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:10])
}

// JoinByCode adds the user to the group behind an invite code.
func (s *GroupService) JoinByCode(userID uint, code string) (*models.Group, error) {
	var group models.Group
	err := s.db.Where("invite_code = ?", code).First(&group).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	member := models.GroupMember{
		GroupID:  group.ID,
		UserID:   userID,
		Role:     models.GroupRoleMember,
		JoinedAt: time.Now().UTC(),
	}
	res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&member)
	if res.Error != nil && !errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return nil, res.Error
	}

	return &group, nil
}

// IsMember reports group membership.
func (s *GroupService) IsMember(userID, groupID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	return count > 0, err
}

// IsAdmin reports whether the user administers the group.
func (s *GroupService) IsAdmin(userID, groupID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ? AND role = ?", groupID, userID, models.GroupRoleAdmin).
		Count(&count).Error
	return count > 0, err
}

// GroupsOf returns the IDs of every group the user belongs to.
func (s *GroupService) GroupsOf(userID uint) ([]uint, error) {
	var ids []uint
	err := s.db.Model(&models.GroupMember{}).
		Where("user_id = ?", userID).
		Pluck("group_id", &ids).Error
	return ids, err
}

// Get fetches a group with members preloaded.
func (s *GroupService) Get(groupID uint) (*models.Group, error) {
	var group models.Group
	err := s.db.Preload("Members").Preload("Members.User").First(&group, groupID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &group, nil
}

// UserGroups lists the groups the user belongs to.
func (s *GroupService) UserGroups(userID uint) ([]models.Group, error) {
	var groups []models.Group
	err := s.db.
		Joins("JOIN group_members ON group_members.group_id = groups.id").
		Where("group_members.user_id = ?", userID).
		Find(&groups).Error
	return groups, err
}

// RequestJoin asks to join a private group without an invite code. Pending
// and re-submitted requests collapse onto the unique (user, group) row.
func (s *GroupService) RequestJoin(userID, groupID uint) error {
	var group models.Group
	if err := s.db.First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	member, err := s.IsMember(userID, groupID)
	if err != nil {
		return err
	}
	if member {
		return ErrInvalidState
	}

	req := models.GroupJoinRequest{
		UserID:    userID,
		GroupID:   groupID,
		Status:    "pending",
		CreatedAt: time.Now().UTC(),
	}
	res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&req)
	if res.Error != nil && !errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return res.Error
	}
	return nil
}

// JoinRequests lists a group's pending requests. Admin gating is the
// caller's responsibility.
func (s *GroupService) JoinRequests(groupID uint) ([]models.GroupJoinRequest, error) {
	var reqs []models.GroupJoinRequest
	err := s.db.Preload("User").
		Where("group_id = ? AND status = ?", groupID, "pending").
		Order("created_at ASC").
		Find(&reqs).Error
	return reqs, err
}

// ResolveJoinRequest approves or rejects a pending request. Approval adds
// the membership in the same transaction.
func (s *GroupService) ResolveJoinRequest(groupID, userID uint, approve bool) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		status := "rejected"
		if approve {
			status = "approved"
		}

		res := tx.Model(&models.GroupJoinRequest{}).
			Where("group_id = ? AND user_id = ? AND status = ?", groupID, userID, "pending").
			Update("status", status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		if !approve {
			return nil
		}

		member := models.GroupMember{
			GroupID:  groupID,
			UserID:   userID,
			Role:     models.GroupRoleMember,
			JoinedAt: time.Now().UTC(),
		}
		err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error
		if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		return nil
	})
}

// Leave removes the user's membership.
func (s *GroupService) Leave(userID, groupID uint) error {
	res := s.db.Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.GroupMember{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotMember
	}
	return nil
}
