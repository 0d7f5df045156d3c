package controllers_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sicily/campusfound/models"
)

func TestCommentsRequireApprovedPost(t *testing.T) {
	r, db := setupEnv(t)
	category := seedCategory(t, db)
	_, ownerToken := seedUser(t, db, "owner")
	_, strangerToken := seedUser(t, db, "stranger")

	postID := createPostAs(t, r, ownerToken, category.ID)
	path := fmt.Sprintf("/api/v1/posts/%d/comments", postID)

	// A stranger cannot even see the pending post.
	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodPost, path, strangerToken, map[string]string{"content": "我好像见过"}).Code)
	// The owner sees it but it is not open for comments yet.
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, path, ownerToken, map[string]string{"content": "补充一下"}).Code)

	approvePost(t, db, postID)
	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodPost, path, strangerToken, map[string]string{"content": "我好像见过"}).Code)
}

func TestCommentContentBounds(t *testing.T) {
	r, db := setupEnv(t)
	category := seedCategory(t, db)
	_, ownerToken := seedUser(t, db, "owner")

	postID := createPostAs(t, r, ownerToken, category.ID)
	approvePost(t, db, postID)
	path := fmt.Sprintf("/api/v1/posts/%d/comments", postID)

	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, path, ownerToken, map[string]string{"content": "短"}).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, path, ownerToken, map[string]string{"content": strings.Repeat("长", 201)}).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, path, ownerToken, map[string]string{}).Code)
	// An image alone is enough.
	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodPost, path, ownerToken, map[string]string{"image_url": "/static/uploads/clue.jpg"}).Code)
	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodPost, path, ownerToken, map[string]string{"content": "在三食堂见过类似的"}).Code)
}

func TestAdminSoftDeleteHidesComment(t *testing.T) {
	r, db := setupEnv(t)
	category := seedCategory(t, db)
	_, ownerToken := seedUser(t, db, "owner")
	_, adminToken := seedAdmin(t, db)

	postID := createPostAs(t, r, ownerToken, category.ID)
	approvePost(t, db, postID)
	listPath := fmt.Sprintf("/api/v1/posts/%d/comments", postID)

	w := doJSON(r, http.MethodPost, listPath, ownerToken, map[string]string{"content": "在三食堂见过类似的"})
	require.Equal(t, http.StatusOK, w.Code)
	comment := decodeData(t, w)["comment"].(map[string]interface{})
	commentID := uint(comment["id"].(float64))

	// Users cannot delete comments, not even their own.
	assert.Equal(t, http.StatusUnauthorized, doJSON(r, http.MethodDelete, fmt.Sprintf("/api/v1/admin/comments/%d", commentID), ownerToken, nil).Code)

	require.Equal(t, http.StatusOK, doJSON(r, http.MethodDelete, fmt.Sprintf("/api/v1/admin/comments/%d", commentID), adminToken, nil).Code)

	w = doJSON(r, http.MethodGet, listPath, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeData(t, w)["items"])

	// The row survives as a soft-deleted record.
	var stored models.Comment
	require.NoError(t, db.First(&stored, commentID).Error)
	assert.True(t, stored.IsDeleted)
}
