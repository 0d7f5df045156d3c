package models

import "time"

// Conversation links two distinct users. The pair is stored canonically as
// (min, max) with a unique index, so at most one conversation exists per
// pair regardless of who initiated it.
type Conversation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID1   uint      `gorm:"not null;uniqueIndex:idx_conversation_pair,priority:1" json:"user_id1"`
	UserID2   uint      `gorm:"not null;uniqueIndex:idx_conversation_pair,priority:2" json:"user_id2"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`

	User1    User      `gorm:"foreignKey:UserID1" json:"-"`
	User2    User      `gorm:"foreignKey:UserID2" json:"-"`
	Messages []Message `json:"-"`
}

// CanonicalPair orders two user ids as (min, max).
func CanonicalPair(a, b uint) (uint, uint) {
	if a < b {
		return a, b
	}
	return b, a
}

// Involves reports whether the given user participates in the conversation.
func (c *Conversation) Involves(userID uint) bool {
	return c.UserID1 == userID || c.UserID2 == userID
}

// OtherParticipant returns the id of the participant that is not the given
// user.
func (c *Conversation) OtherParticipant(userID uint) uint {
	if c.UserID1 == userID {
		return c.UserID2
	}
	return c.UserID1
}

// MaxMessageLen bounds the text content of a single message.
const MaxMessageLen = 500

// Message is a single direct message inside a conversation. IsRead flips when
// the other participant fetches the conversation's messages.
type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"index;not null" json:"conversation_id"`
	SenderID       uint      `gorm:"index;not null" json:"sender_id"`
	Content        string    `gorm:"size:500" json:"content"`
	ImageURL       string    `gorm:"size:512" json:"image_url,omitempty"`
	IsRead         bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
	Sender         User      `gorm:"foreignKey:SenderID" json:"sender"`
}
