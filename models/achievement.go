// models/achievement.go
package models

import (
	"strings"
	"time"
)

// Achievement is one tier within a category. The category is the slug prefix
// before the last underscore (streak_7 -> streak).
type Achievement struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Slug        string `gorm:"uniqueIndex;not null;size:50" json:"slug"`
	Name        string `gorm:"not null;size:100" json:"name"`
	Icon        string `gorm:"not null;size:10" json:"icon"`
	Description string `gorm:"not null;size:200" json:"description"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Category returns the tier category of the slug.
func (a Achievement) Category() string {
	if i := strings.LastIndex(a.Slug, "_"); i > 0 {
		return a.Slug[:i]
	}
	return a.Slug
}

// UserAchievement records one unlock. The (user_id, achievement_slug) unique
// index is the idempotency guard for concurrent evaluations.
type UserAchievement struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;index;uniqueIndex:unique_user_achievement" json:"user_id"`
	AchievementSlug string    `gorm:"not null;size:50;uniqueIndex:unique_user_achievement" json:"achievement_slug"`
	UnlockedAt      time.Time `json:"unlocked_at"`
}

func (Achievement) TableName() string {
	return "achievements"
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}
