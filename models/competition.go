// models/competition.go
package models

import (
	"time"
)

type CompetitionStatus string

const (
	CompetitionStatusActive    CompetitionStatus = "active"
	CompetitionStatusCompleted CompetitionStatus = "completed"
)

// Competition is a group-scoped race to a beer target. The active->completed
// transition is one-way; WinnerID and CompletedAt are set exactly when it fires.
type Competition struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	GroupID     uint              `gorm:"not null;index:idx_competitions_group_status" json:"group_id"`
	CreatedByID uint              `gorm:"not null" json:"created_by_id"`
	Title       string            `gorm:"not null;size:100" json:"title"`
	Description string            `gorm:"size:500" json:"description"`
	TargetBeers int               `gorm:"not null" json:"target_beers"`
	Status      CompetitionStatus `gorm:"not null;default:'active';size:15;index:idx_competitions_group_status" json:"status"`
	WinnerID    *uint             `json:"winner_id"`
	CreatedAt   time.Time         `json:"created_at"`
	CompletedAt *time.Time        `json:"completed_at"`

	Group        *Group                   `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	Winner       *User                    `gorm:"foreignKey:WinnerID" json:"winner,omitempty"`
	Participants []CompetitionParticipant `gorm:"foreignKey:CompetitionID" json:"participants,omitempty"`
}

type CompetitionParticipant struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CompetitionID uint      `gorm:"not null;index;uniqueIndex:unique_comp_participant" json:"competition_id"`
	UserID        uint      `gorm:"not null;index;uniqueIndex:unique_comp_participant" json:"user_id"`
	BeerCount     int       `gorm:"not null;default:0" json:"beer_count"`
	JoinedAt      time.Time `json:"joined_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// CompetitionProgress marks one post as counted toward one competition. The
// (competition_id, post_id) unique index is what makes recording idempotent.
type CompetitionProgress struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CompetitionID uint      `gorm:"not null;index;uniqueIndex:unique_comp_progress" json:"competition_id"`
	PostID        uint      `gorm:"not null;index;uniqueIndex:unique_comp_progress" json:"post_id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	BeerCount     int       `gorm:"not null;default:1" json:"beer_count"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Competition) TableName() string {
	return "competitions"
}

func (CompetitionParticipant) TableName() string {
	return "competition_participants"
}

func (CompetitionProgress) TableName() string {
	return "competition_progress"
}
