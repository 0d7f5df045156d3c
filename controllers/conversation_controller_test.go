package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sicily/campusfound/models"
)

func TestConversationPairIsCanonical(t *testing.T) {
	r, db := setupEnv(t)
	alice, aliceToken := seedUser(t, db, "alice")
	bob, bobToken := seedUser(t, db, "bob")

	w := doJSON(r, http.MethodPost, "/api/v1/conversations", aliceToken, map[string]uint{"peer_id": bob.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decodeData(t, w)["conversation"].(map[string]interface{})

	// The peer starting the same conversation lands on the same row.
	w = doJSON(r, http.MethodPost, "/api/v1/conversations", bobToken, map[string]uint{"peer_id": alice.ID})
	require.Equal(t, http.StatusOK, w.Code)
	second := decodeData(t, w)["conversation"].(map[string]interface{})
	assert.Equal(t, first["id"], second["id"])

	var count int64
	db.Model(&models.Conversation{}).Count(&count)
	assert.Equal(t, int64(1), count)

	// Self conversations are rejected.
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, "/api/v1/conversations", aliceToken, map[string]uint{"peer_id": alice.ID}).Code)
	// Unknown peers are rejected.
	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodPost, "/api/v1/conversations", aliceToken, map[string]uint{"peer_id": 9999}).Code)
}

func TestMessagingAndReadReceipts(t *testing.T) {
	r, db := setupEnv(t)
	alice, aliceToken := seedUser(t, db, "alice")
	bob, bobToken := seedUser(t, db, "bob")

	w := doJSON(r, http.MethodPost, "/api/v1/conversations", aliceToken, map[string]uint{"peer_id": bob.ID})
	require.Equal(t, http.StatusOK, w.Code)
	convID := uint(decodeData(t, w)["conversation"].(map[string]interface{})["id"].(float64))
	msgPath := fmt.Sprintf("/api/v1/conversations/%d/messages", convID)

	require.Equal(t, http.StatusOK, doJSON(r, http.MethodPost, msgPath, aliceToken, map[string]string{"content": "你好，我捡到了你的钱包"}).Code)
	require.Equal(t, http.StatusOK, doJSON(r, http.MethodPost, msgPath, aliceToken, map[string]string{"content": "在三食堂门口"}).Code)

	// Bob has two unread messages.
	w = doJSON(r, http.MethodGet, "/api/v1/me/unread", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decodeData(t, w)["unread"])

	// Fetching the messages marks them read; the snapshot still shows the
	// pre-fetch read state.
	w = doJSON(r, http.MethodGet, msgPath, bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decodeData(t, w)["items"].([]interface{})
	require.Len(t, items, 2)
	assert.Equal(t, "你好，我捡到了你的钱包", items[0].(map[string]interface{})["content"])
	assert.Equal(t, false, items[0].(map[string]interface{})["is_read"])

	w = doJSON(r, http.MethodGet, "/api/v1/me/unread", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decodeData(t, w)["unread"])

	// Both of Alice's messages are now flagged read.
	var readFromAlice int64
	db.Model(&models.Message{}).Where("sender_id = ? AND is_read = ?", alice.ID, true).Count(&readFromAlice)
	assert.Equal(t, int64(2), readFromAlice)
}

func TestConversationAccessIsParticipantsOnly(t *testing.T) {
	r, db := setupEnv(t)
	_, aliceToken := seedUser(t, db, "alice")
	bob, _ := seedUser(t, db, "bob")
	_, eveToken := seedUser(t, db, "eve")

	w := doJSON(r, http.MethodPost, "/api/v1/conversations", aliceToken, map[string]uint{"peer_id": bob.ID})
	require.Equal(t, http.StatusOK, w.Code)
	convID := uint(decodeData(t, w)["conversation"].(map[string]interface{})["id"].(float64))

	path := fmt.Sprintf("/api/v1/conversations/%d", convID)
	assert.Equal(t, http.StatusForbidden, doJSON(r, http.MethodGet, path, eveToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, doJSON(r, http.MethodPost, path+"/messages", eveToken, map[string]string{"content": "让我看看"}).Code)
	assert.Equal(t, http.StatusUnauthorized, doJSON(r, http.MethodGet, path, "", nil).Code)
}

func TestConversationListShowsPeerAndLastMessage(t *testing.T) {
	r, db := setupEnv(t)
	_, aliceToken := seedUser(t, db, "alice")
	bob, _ := seedUser(t, db, "bob")

	w := doJSON(r, http.MethodPost, "/api/v1/conversations", aliceToken, map[string]uint{"peer_id": bob.ID})
	require.Equal(t, http.StatusOK, w.Code)
	convID := uint(decodeData(t, w)["conversation"].(map[string]interface{})["id"].(float64))
	msgPath := fmt.Sprintf("/api/v1/conversations/%d/messages", convID)
	require.Equal(t, http.StatusOK, doJSON(r, http.MethodPost, msgPath, aliceToken, map[string]string{"content": "在吗"}).Code)

	w = doJSON(r, http.MethodGet, "/api/v1/conversations", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decodeData(t, w)["items"].([]interface{})
	require.Len(t, items, 1)
	conv := items[0].(map[string]interface{})
	assert.Equal(t, "bob", conv["peer"].(map[string]interface{})["nickname"])
	assert.Equal(t, "在吗", conv["last_message"].(map[string]interface{})["content"])
	assert.Equal(t, float64(0), conv["unread"])
}
