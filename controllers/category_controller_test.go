package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sicily/campusfound/models"
)

func TestCategoryCRUDAndPublicFilter(t *testing.T) {
	r, db := setupEnv(t)
	_, adminToken := seedAdmin(t, db)

	w := doJSON(r, http.MethodPost, "/api/v1/admin/categories", adminToken, map[string]interface{}{"name": "电子产品", "sort": 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	catID := uint(decodeData(t, w)["category"].(map[string]interface{})["id"].(float64))

	// Duplicate names are rejected by the unique index.
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, "/api/v1/admin/categories", adminToken, map[string]interface{}{"name": "电子产品"}).Code)

	disabled := false
	w = doJSON(r, http.MethodPut, fmt.Sprintf("/api/v1/admin/categories/%d", catID), adminToken, map[string]interface{}{"enabled": disabled})
	require.Equal(t, http.StatusOK, w.Code)

	// Disabled categories vanish from the public picker but stay in the
	// console list.
	w = doJSON(r, http.MethodGet, "/api/v1/categories", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeData(t, w)["items"])

	w = doJSON(r, http.MethodGet, "/api/v1/admin/categories", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData(t, w)["items"], 1)

	require.Equal(t, http.StatusOK, doJSON(r, http.MethodDelete, fmt.Sprintf("/api/v1/admin/categories/%d", catID), adminToken, nil).Code)
	var count int64
	db.Model(&models.Category{}).Count(&count)
	assert.Zero(t, count)
}

func TestCategoryDeleteBlockedWhenReferenced(t *testing.T) {
	r, db := setupEnv(t)
	category := seedCategory(t, db)
	_, ownerToken := seedUser(t, db, "owner")
	_, adminToken := seedAdmin(t, db)

	createPostAs(t, r, ownerToken, category.ID)

	w := doJSON(r, http.MethodDelete, fmt.Sprintf("/api/v1/admin/categories/%d", category.ID), adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostCreationRejectsDisabledCategory(t *testing.T) {
	r, db := setupEnv(t)
	category := seedCategory(t, db)
	require.NoError(t, db.Model(category).Update("enabled", false).Error)
	_, token := seedUser(t, db, "poster")

	w := doJSON(r, http.MethodPost, "/api/v1/posts", token, postBody(category.ID, 2))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
