// models/user.go
package models

import (
	"time"
)

type User struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Username    string  `gorm:"uniqueIndex;not null;size:30" json:"username"`
	Password    string  `gorm:"not null" json:"-"`
	DisplayName string  `gorm:"not null;size:50" json:"display_name"`
	Bio         string  `gorm:"size:300" json:"bio"`
	Avatar      string  `gorm:"size:255" json:"avatar"`
	IsPrivate   bool    `gorm:"default:false" json:"is_private"`
	IsAdmin     bool    `gorm:"default:false" json:"is_admin"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Posts        []Post            `gorm:"foreignKey:UserID" json:"posts,omitempty"`
	Achievements []UserAchievement `gorm:"foreignKey:UserID" json:"achievements,omitempty"`
}

func (User) TableName() string {
	return "users"
}
