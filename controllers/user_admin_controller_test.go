package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sicily/campusfound/models"
)

func TestAdminUserRosterAndStatus(t *testing.T) {
	r, db := setupEnv(t)
	user, userToken := seedUser(t, db, "小明")
	seedUser(t, db, "小红")
	_, adminToken := seedAdmin(t, db)

	w := doJSON(r, http.MethodGet, "/api/v1/admin/users", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData(t, w)["items"], 2)

	// Disabling cuts the user off immediately.
	w = doJSON(r, http.MethodPatch, fmt.Sprintf("/api/v1/admin/users/%d/status", user.ID), adminToken, map[string]string{"status": "DISABLED"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusUnauthorized, doJSON(r, http.MethodGet, "/api/v1/auth/me", userToken, nil).Code)

	w = doJSON(r, http.MethodGet, "/api/v1/admin/users?status=DISABLED", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData(t, w)["items"], 1)

	// Unknown status values are rejected.
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPatch, fmt.Sprintf("/api/v1/admin/users/%d/status", user.ID), adminToken, map[string]string{"status": "BANNED"}).Code)

	// Roster requires admin credentials.
	assert.Equal(t, http.StatusUnauthorized, doJSON(r, http.MethodGet, "/api/v1/admin/users", userToken, nil).Code)
}

func TestAdminUserDeleteCascades(t *testing.T) {
	r, db := setupEnv(t)
	category := seedCategory(t, db)
	user, userToken := seedUser(t, db, "小明")
	peer, peerToken := seedUser(t, db, "小红")
	_, adminToken := seedAdmin(t, db)

	postID := createPostAs(t, r, userToken, category.ID)
	approvePost(t, db, postID)
	require.Equal(t, http.StatusOK, doJSON(r, http.MethodPost, fmt.Sprintf("/api/v1/posts/%d/comments", postID), peerToken, map[string]string{"content": "我好像见过"}).Code)

	w := doJSON(r, http.MethodPost, "/api/v1/conversations", peerToken, map[string]uint{"peer_id": user.ID})
	require.Equal(t, http.StatusOK, w.Code)
	convID := uint(decodeData(t, w)["conversation"].(map[string]interface{})["id"].(float64))
	require.Equal(t, http.StatusOK, doJSON(r, http.MethodPost, fmt.Sprintf("/api/v1/conversations/%d/messages", convID), peerToken, map[string]string{"content": "在吗"}).Code)

	require.Equal(t, http.StatusOK, doJSON(r, http.MethodDelete, fmt.Sprintf("/api/v1/admin/users/%d", user.ID), adminToken, nil).Code)

	var posts, comments, convs, msgs, users int64
	db.Model(&models.Post{}).Count(&posts)
	db.Model(&models.Comment{}).Count(&comments)
	db.Model(&models.Conversation{}).Count(&convs)
	db.Model(&models.Message{}).Count(&msgs)
	db.Model(&models.User{}).Count(&users)
	assert.Zero(t, posts)
	assert.Zero(t, comments)
	assert.Zero(t, convs)
	assert.Zero(t, msgs)
	assert.Equal(t, int64(1), users)
	assert.NotZero(t, peer.ID)
}
