package controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsOverview(t *testing.T) {
	r, db := setupEnv(t)
	category := seedCategory(t, db)
	_, userToken := seedUser(t, db, "poster")
	_, adminToken := seedAdmin(t, db)

	createPostAs(t, r, userToken, category.ID)
	approvedID := createPostAs(t, r, userToken, category.ID)
	approvePost(t, db, approvedID)

	w := doJSON(r, http.MethodGet, "/api/v1/admin/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeData(t, w)
	counts := data["counts"].(map[string]interface{})
	assert.Equal(t, float64(2), counts["total_posts"])
	assert.Equal(t, float64(1), counts["pending_posts"])
	assert.Equal(t, float64(1), counts["approved_posts"])
	assert.Equal(t, float64(2), counts["lost_posts"])
	assert.Equal(t, float64(1), counts["total_users"])

	postTrend := data["trend"].(map[string]interface{})["posts"].([]interface{})
	require.Len(t, postTrend, 7)
	today := postTrend[6].(map[string]interface{})
	assert.Equal(t, float64(2), today["count"])

	recovery := data["recovery"].(map[string]interface{})["LOST"].(map[string]interface{})
	assert.Equal(t, float64(2), recovery["total"])
	assert.Equal(t, float64(0), recovery["closed"])

	byCategory := data["by_category"].([]interface{})
	require.Len(t, byCategory, 1)
	assert.Equal(t, float64(2), byCategory[0].(map[string]interface{})["count"])

	// Dashboard numbers are console only.
	assert.Equal(t, http.StatusUnauthorized, doJSON(r, http.MethodGet, "/api/v1/admin/stats", userToken, nil).Code)
}
