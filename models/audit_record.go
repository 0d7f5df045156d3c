package models

import "time"

// AuditAction is the decision an admin took on a post.
type AuditAction string

const (
	AuditActionApproved AuditAction = "APPROVED"
	AuditActionRejected AuditAction = "REJECTED"
	AuditActionRemoved  AuditAction = "REMOVED"
)

var auditActions = map[AuditAction]PostStatus{
	AuditActionApproved: PostStatusApproved,
	AuditActionRejected: PostStatusRejected,
	AuditActionRemoved:  PostStatusRemoved,
}

// Valid reports whether a is a known audit action.
func (a AuditAction) Valid() bool {
	_, ok := auditActions[a]
	return ok
}

// TargetStatus returns the moderation status the action transitions the post
// into.
func (a AuditAction) TargetStatus() PostStatus {
	return auditActions[a]
}

// AuditRecord is one immutable ledger entry per admin moderation decision.
// Rows are only ever inserted, in the same transaction as the post update;
// the ledger is never consulted by transition logic.
type AuditRecord struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	PostID    uint        `gorm:"index;not null" json:"post_id"`
	AdminID   uint        `gorm:"index;not null" json:"admin_id"`
	Action    AuditAction `gorm:"size:16;not null" json:"action"`
	Reason    string      `gorm:"size:200" json:"reason,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}
