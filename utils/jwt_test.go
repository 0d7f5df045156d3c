package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sicily/campusfound/config"
)

func init() {
	config.SetForTesting(config.AppConfig{
		JWTAdminSecret:   "test-admin-secret",
		JWTUserSecret:    "test-user-secret",
		UserTokenTTLDays: 30,
	})
}

func TestUserTokenRoundTrip(t *testing.T) {
	token, err := GenerateUserToken(42, "openid-42")
	require.NoError(t, err)

	claims, err := ParseUserToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "openid-42", claims.OpenID)
}

func TestAdminTokenRoundTrip(t *testing.T) {
	token, err := GenerateAdminToken(1, "root")
	require.NoError(t, err)

	claims, err := ParseAdminToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(1), claims.AdminID)
	assert.Equal(t, "root", claims.Username)
}

// A token from one scheme must never verify under the other: the secrets
// differ, so the signature check fails.
func TestTokensAreNotInterchangeable(t *testing.T) {
	userToken, err := GenerateUserToken(42, "openid-42")
	require.NoError(t, err)
	_, err = ParseAdminToken(userToken)
	assert.Error(t, err)

	adminToken, err := GenerateAdminToken(1, "root")
	require.NoError(t, err)
	_, err = ParseUserToken(adminToken)
	assert.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := ParseUserToken("not.a.token")
	assert.Error(t, err)
	_, err = ParseAdminToken("")
	assert.Error(t, err)
}
