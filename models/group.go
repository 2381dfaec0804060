// models/group.go
package models

import (
	"time"
)

type GroupRole string

const (
	GroupRoleMember GroupRole = "member"
	GroupRoleAdmin  GroupRole = "admin"
)

type Group struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;size:80" json:"name"`
	Description string    `gorm:"size:500" json:"description"`
	Avatar      string    `gorm:"size:255" json:"avatar"`
	InviteCode  string    `gorm:"uniqueIndex;not null;size:20" json:"invite_code"`
	IsPrivate   bool      `gorm:"default:true" json:"is_private"`
	CreatedByID uint      `gorm:"not null" json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`

	CreatedBy *User         `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	Members   []GroupMember `gorm:"foreignKey:GroupID" json:"members,omitempty"`
}

type GroupMember struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index;uniqueIndex:unique_membership" json:"user_id"`
	GroupID    uint      `gorm:"not null;index;uniqueIndex:unique_membership" json:"group_id"`
	Role       GroupRole `gorm:"not null;default:'member';size:10" json:"role"`
	JoinedAt   time.Time `json:"joined_at"`
	LastSeenAt *time.Time `json:"last_seen_at"`

	User  *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Group *Group `gorm:"foreignKey:GroupID" json:"-"`
}

type GroupJoinRequest struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:unique_join_request" json:"user_id"`
	GroupID   uint      `gorm:"not null;index;uniqueIndex:unique_join_request" json:"group_id"`
	Status    string    `gorm:"not null;default:'pending';size:10" json:"status"`
	CreatedAt time.Time `json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Group) TableName() string {
	return "groups"
}

func (GroupMember) TableName() string {
	return "group_members"
}

func (GroupJoinRequest) TableName() string {
	return "group_join_requests"
}
