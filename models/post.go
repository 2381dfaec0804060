// models/post.go
package models

import (
	"time"
)

// Post is one recorded beer. DrinkTimeSeconds is nil exactly when the post is
// marked VDL (did not finish). Category nil means a plain beer.
type Post struct {
	ID               uint     `gorm:"primaryKey" json:"id"`
	UserID           uint     `gorm:"not null;index:idx_posts_user_created" json:"user_id"`
	BeerCount        int      `gorm:"not null;default:1" json:"beer_count"`
	DrinkTimeSeconds *float64 `json:"drink_time_seconds"`
	IsVDL            bool     `gorm:"default:false" json:"is_vdl"`
	Category         *string  `gorm:"size:50" json:"category"`
	Caption          string   `gorm:"size:500" json:"caption"`
	PhotoFilename    *string  `gorm:"size:255" json:"photo_filename,omitempty"`
	PhotoRemoved     bool     `gorm:"default:false" json:"photo_removed"`
	IsPublic         bool     `gorm:"default:false" json:"is_public"`
	IsPersonalBest   bool     `gorm:"default:false" json:"is_personal_best"`

	CreatedAt time.Time `gorm:"index:idx_posts_user_created" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User       *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	GroupLinks []PostGroup `gorm:"foreignKey:PostID" json:"group_links,omitempty"`
}

// PostGroup shares a post with a group.
type PostGroup struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	PostID  uint `gorm:"not null;index;uniqueIndex:unique_post_group" json:"post_id"`
	GroupID uint `gorm:"not null;index;uniqueIndex:unique_post_group" json:"group_id"`

	Group *Group `gorm:"foreignKey:GroupID" json:"group,omitempty"`
}

func (Post) TableName() string {
	return "posts"
}

func (PostGroup) TableName() string {
	return "post_groups"
}
