package models

import "time"

// Category is a flat taxonomy entry referenced by posts. Deleting a category
// does not cascade to posts; callers must avoid removing referenced ones.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:64;uniqueIndex;not null" json:"name"`
	Sort      int       `gorm:"not null;default:0" json:"sort"`
	Enabled   bool      `gorm:"not null;default:true" json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
