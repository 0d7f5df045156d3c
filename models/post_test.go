package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCloseReasonsDependOnPostType(t *testing.T) {
	assert.True(t, PostTypeLost.ValidCloseReason(CloseReasonRecovered))
	assert.True(t, PostTypeLost.ValidCloseReason(CloseReasonGaveUp))
	assert.True(t, PostTypeLost.ValidCloseReason(CloseReasonOther))
	assert.False(t, PostTypeLost.ValidCloseReason(CloseReasonClaimed))
	assert.False(t, PostTypeLost.ValidCloseReason(CloseReasonHandedOver))

	assert.True(t, PostTypeFound.ValidCloseReason(CloseReasonClaimed))
	assert.True(t, PostTypeFound.ValidCloseReason(CloseReasonHandedOver))
	assert.True(t, PostTypeFound.ValidCloseReason(CloseReasonOther))
	assert.False(t, PostTypeFound.ValidCloseReason(CloseReasonRecovered))

	assert.False(t, PostType("X").ValidCloseReason(CloseReasonOther))
}

func TestReopenReasonValidity(t *testing.T) {
	for _, r := range []ReopenReason{ReopenReasonMisoperation, ReopenReasonNotSolved, ReopenReasonNewClue, ReopenReasonOther} {
		assert.True(t, r.Valid(), string(r))
	}
	assert.False(t, ReopenReason("RECOVERED").Valid())
	assert.False(t, ReopenReason("").Valid())
}

func TestCloseUpdatesSetsActorColumns(t *testing.T) {
	post := &Post{Type: PostTypeLost, BizStatus: BizStatusOpen}
	now := time.Now()

	updates := post.CloseUpdates(UserActor(7), CloseReasonRecovered, "found it in the library", now)
	assert.Equal(t, BizStatusClosed, updates["biz_status"])
	assert.Equal(t, now, updates["closed_at"])
	assert.Equal(t, CloseReasonRecovered, updates["closed_reason"])
	if assert.NotNil(t, updates["closed_by_user_id"]) {
		assert.Equal(t, uint(7), *updates["closed_by_user_id"].(*uint))
	}
	assert.Nil(t, updates["closed_by_admin_id"].(*uint))

	updates = post.CloseUpdates(AdminActor(3), CloseReasonOther, "", now)
	assert.Nil(t, updates["closed_by_user_id"].(*uint))
	if assert.NotNil(t, updates["closed_by_admin_id"]) {
		assert.Equal(t, uint(3), *updates["closed_by_admin_id"].(*uint))
	}
}

func TestRecloseKeepsOriginalClosedAt(t *testing.T) {
	original := time.Now().Add(-48 * time.Hour)
	post := &Post{Type: PostTypeLost, BizStatus: BizStatusClosed, ClosedAt: &original}

	updates := post.CloseUpdates(UserActor(1), CloseReasonGaveUp, "giving up", time.Now())
	assert.Equal(t, original, updates["closed_at"])
	assert.Equal(t, CloseReasonGaveUp, updates["closed_reason"])
}

func TestReopenUpdatesClearsCloseStateAndResetsModeration(t *testing.T) {
	closedAt := time.Now().Add(-time.Hour)
	reason := CloseReasonRecovered
	post := &Post{
		Type:         PostTypeLost,
		Status:       PostStatusApproved,
		BizStatus:    BizStatusClosed,
		ClosedAt:     &closedAt,
		ClosedReason: &reason,
	}
	now := time.Now()

	updates := post.ReopenUpdates(UserActor(5), ReopenReasonNewClue, "someone saw it", now)
	assert.Equal(t, BizStatusOpen, updates["biz_status"])
	assert.Equal(t, PostStatusPending, updates["status"])
	assert.Equal(t, "", updates["reject_reason"])
	assert.Nil(t, updates["closed_at"])
	assert.Nil(t, updates["closed_reason"])
	assert.Equal(t, "", updates["closed_remark"])
	assert.Nil(t, updates["closed_by_user_id"])
	assert.Nil(t, updates["closed_by_admin_id"])
	assert.Equal(t, now, updates["reopened_at"])
	assert.Equal(t, ReopenReasonNewClue, updates["reopen_reason"])
	if assert.NotNil(t, updates["reopened_by_user_id"]) {
		assert.Equal(t, uint(5), *updates["reopened_by_user_id"].(*uint))
	}
}

func TestOwnedBy(t *testing.T) {
	uid := uint(9)
	post := &Post{CreatedByUser: &uid}
	assert.True(t, post.OwnedBy(9))
	assert.False(t, post.OwnedBy(8))

	adminID := uint(1)
	adminPost := &Post{CreatedByAdmin: &adminID}
	assert.False(t, adminPost.OwnedBy(1))
}

func TestTagsRoundTrip(t *testing.T) {
	assert.Equal(t, "", EncodeTags(nil))
	assert.Equal(t, "", EncodeTags([]string{}))
	assert.Equal(t, []string{}, ParseTags(""))
	assert.Equal(t, []string{}, ParseTags("not json"))

	encoded := EncodeTags([]string{"黑色", "钱包"})
	assert.Equal(t, []string{"黑色", "钱包"}, ParseTags(encoded))
}
