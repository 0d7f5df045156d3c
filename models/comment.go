package models

import "time"

// Comment is a reply attached to a post. Deletion is a one-way soft flag set
// by admins; no interface ever clears it.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"index;not null" json:"post_id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Content   string    `gorm:"size:200" json:"content"`
	ImageURL  string    `gorm:"size:512" json:"image_url,omitempty"`
	IsDeleted bool      `gorm:"not null;default:false;index" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      User      `json:"user"`
}

// Comment content length bounds when no image is attached.
const (
	MinCommentLen = 2
	MaxCommentLen = 200
)
