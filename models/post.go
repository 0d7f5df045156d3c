package models

import (
	"encoding/json"
	"time"
)

// PostType distinguishes lost-item posts from found-item posts. Immutable
// after creation.
type PostType string

const (
	PostTypeLost  PostType = "LOST"
	PostTypeFound PostType = "FOUND"
)

// Valid reports whether t is a known post type.
func (t PostType) Valid() bool {
	return t == PostTypeLost || t == PostTypeFound
}

// PostStatus is the moderation axis of a post.
type PostStatus string

const (
	PostStatusPending  PostStatus = "PENDING"
	PostStatusApproved PostStatus = "APPROVED"
	PostStatusRejected PostStatus = "REJECTED"
	PostStatusRemoved  PostStatus = "REMOVED"
)

// BizStatus is the business axis: whether the real-world situation the post
// describes is still unresolved.
type BizStatus string

const (
	BizStatusOpen   BizStatus = "OPEN"
	BizStatusClosed BizStatus = "CLOSED"
)

// CloseReason explains why a post was closed. The allowed set depends on the
// post type.
type CloseReason string

const (
	CloseReasonRecovered  CloseReason = "RECOVERED"
	CloseReasonGaveUp     CloseReason = "GAVE_UP"
	CloseReasonClaimed    CloseReason = "CLAIMED"
	CloseReasonHandedOver CloseReason = "HANDED_OVER"
	CloseReasonOther      CloseReason = "OTHER"
)

// closeReasonsByType is the single source of truth for which close reasons
// each post type accepts.
var closeReasonsByType = map[PostType]map[CloseReason]struct{}{
	PostTypeLost: {
		CloseReasonRecovered: {},
		CloseReasonGaveUp:    {},
		CloseReasonOther:     {},
	},
	PostTypeFound: {
		CloseReasonClaimed:    {},
		CloseReasonHandedOver: {},
		CloseReasonOther:      {},
	},
}

// ValidCloseReason reports whether r is acceptable for posts of type t.
func (t PostType) ValidCloseReason(r CloseReason) bool {
	set, ok := closeReasonsByType[t]
	if !ok {
		return false
	}
	_, ok = set[r]
	return ok
}

// ReopenReason explains why a closed post was reopened.
type ReopenReason string

const (
	ReopenReasonMisoperation ReopenReason = "MISOPERATION"
	ReopenReasonNotSolved    ReopenReason = "NOT_SOLVED"
	ReopenReasonNewClue      ReopenReason = "NEW_CLUE"
	ReopenReasonOther        ReopenReason = "OTHER"
)

var reopenReasons = map[ReopenReason]struct{}{
	ReopenReasonMisoperation: {},
	ReopenReasonNotSolved:    {},
	ReopenReasonNewClue:      {},
	ReopenReasonOther:        {},
}

// Valid reports whether r is a known reopen reason.
func (r ReopenReason) Valid() bool {
	_, ok := reopenReasons[r]
	return ok
}

// Post is a single lost/found listing. Exactly one of CreatedByUser and
// CreatedByAdmin is set.
type Post struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Type         PostType   `gorm:"size:8;not null;index" json:"type"`
	CategoryID   uint       `gorm:"index;not null" json:"category_id"`
	Title        string     `gorm:"size:100" json:"title"`
	Description  string     `gorm:"size:500;not null" json:"description"`
	TagsJSON     string     `gorm:"column:tags_json;type:text" json:"-"`
	LocationText string     `gorm:"size:100;not null" json:"location_text"`
	LocationLat  *float64   `json:"location_lat,omitempty"`
	LocationLng  *float64   `json:"location_lng,omitempty"`
	ContactPhone string     `gorm:"size:20" json:"contact_phone"`
	Status       PostStatus `gorm:"size:16;index;default:'PENDING'" json:"status"`
	RejectReason string     `gorm:"size:200" json:"reject_reason,omitempty"`
	BizStatus    BizStatus  `gorm:"size:8;index;default:'OPEN'" json:"biz_status"`

	CreatedByUser  *uint `gorm:"index" json:"created_by_user,omitempty"`
	CreatedByAdmin *uint `json:"created_by_admin,omitempty"`

	ClosedAt        *time.Time   `json:"closed_at,omitempty"`
	ClosedReason    *CloseReason `gorm:"size:16" json:"closed_reason,omitempty"`
	ClosedRemark    string       `gorm:"size:200" json:"closed_remark,omitempty"`
	ClosedByUserID  *uint        `json:"closed_by_user_id,omitempty"`
	ClosedByAdminID *uint        `json:"closed_by_admin_id,omitempty"`

	ReopenedAt        *time.Time    `json:"reopened_at,omitempty"`
	ReopenReason      *ReopenReason `gorm:"size:16" json:"reopen_reason,omitempty"`
	ReopenRemark      string        `gorm:"size:200" json:"reopen_remark,omitempty"`
	ReopenedByUserID  *uint         `json:"reopened_by_user_id,omitempty"`
	ReopenedByAdminID *uint         `json:"reopened_by_admin_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Tags []string `gorm:"-" json:"tags"`

	Category Category    `json:"category"`
	Images   []PostImage `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"images"`
	Comments []Comment   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"comments,omitempty"`
	User     *User       `gorm:"foreignKey:CreatedByUser" json:"user,omitempty"`
	Admin    *Admin      `gorm:"foreignKey:CreatedByAdmin" json:"admin,omitempty"`
}

// PostImage is one photo of a post, ordered by Sort.
type PostImage struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	PostID uint   `gorm:"index;not null" json:"post_id"`
	URL    string `gorm:"size:512;not null" json:"url"`
	Sort   int    `gorm:"not null;default:0" json:"sort"`
}

// Image count bounds enforced at creation and full image replacement.
const (
	MinPostImages = 2
	MaxPostImages = 9
)

// OwnedBy reports whether the given user created this post.
func (p *Post) OwnedBy(userID uint) bool {
	return p.CreatedByUser != nil && *p.CreatedByUser == userID
}

// CloseUpdates builds the column assignments that close the post as the
// given actor. Re-closing an already closed post keeps the original closedAt
// while the reason and remark may be amended.
func (p *Post) CloseUpdates(actor Actor, reason CloseReason, remark string, now time.Time) map[string]interface{} {
	closedAt := now
	if p.BizStatus == BizStatusClosed && p.ClosedAt != nil {
		closedAt = *p.ClosedAt
	}
	return map[string]interface{}{
		"biz_status":         BizStatusClosed,
		"closed_at":          closedAt,
		"closed_reason":      reason,
		"closed_remark":      remark,
		"closed_by_user_id":  actor.UserID(),
		"closed_by_admin_id": actor.AdminID(),
	}
}

// ReopenUpdates builds the column assignments that reopen a closed post:
// business status back to OPEN, moderation back to PENDING, every closed-*
// field cleared and the reopen-* fields populated. Callers must verify the
// post is currently CLOSED.
func (p *Post) ReopenUpdates(actor Actor, reason ReopenReason, remark string, now time.Time) map[string]interface{} {
	return map[string]interface{}{
		"biz_status":           BizStatusOpen,
		"status":               PostStatusPending,
		"reject_reason":        "",
		"closed_at":            nil,
		"closed_reason":        nil,
		"closed_remark":        "",
		"closed_by_user_id":    nil,
		"closed_by_admin_id":   nil,
		"reopened_at":          now,
		"reopen_reason":        reason,
		"reopen_remark":        remark,
		"reopened_by_user_id":  actor.UserID(),
		"reopened_by_admin_id": actor.AdminID(),
	}
}

// ParseTags decodes a tagsJson column value, tolerating empty or malformed
// input.
func ParseTags(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return []string{}
	}
	return tags
}

// EncodeTags serializes tags for the tagsJson column. Nil encodes to the
// empty string rather than "null".
func EncodeTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return ""
	}
	return string(b)
}
