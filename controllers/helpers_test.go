package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sicily/campusfound/config"
	"github.com/sicily/campusfound/models"
	"github.com/sicily/campusfound/routes"
	"github.com/sicily/campusfound/utils"
)

// setupEnv builds an isolated sqlite-backed application with the full route
// table, so tests exercise the real middleware chain.
func setupEnv(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	config.SetForTesting(config.AppConfig{
		GinMode:            "test",
		GinPath:            filepath.Join(t.TempDir(), "gin.log"),
		JWTAdminSecret:     "test-admin-secret",
		JWTUserSecret:      "test-user-secret",
		UserTokenTTLDays:   30,
		RateLimitPerMinute: 100000,
		AllowedOrigins:     []string{"*"},
		AdminUsername:      "root",
		AdminPassword:      "root-password",
		LogLevel:           "error",
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Admin{},
		&models.Category{},
		&models.Post{},
		&models.PostImage{},
		&models.Comment{},
		&models.Conversation{},
		&models.Message{},
		&models.AuditRecord{},
	))
	return routes.SetupRouter(db), db
}

func seedUser(t *testing.T, db *gorm.DB, nickname string) (*models.User, string) {
	t.Helper()
	user := &models.User{OpenID: "openid-" + nickname, Nickname: nickname, Status: models.UserStatusActive}
	require.NoError(t, db.Create(user).Error)
	token, err := utils.GenerateUserToken(user.ID, user.OpenID)
	require.NoError(t, err)
	return user, token
}

func seedAdmin(t *testing.T, db *gorm.DB) (*models.Admin, string) {
	t.Helper()
	hash, err := utils.HashPassword("secret")
	require.NoError(t, err)
	admin := &models.Admin{Username: "moderator", PasswordHash: hash}
	require.NoError(t, db.Create(admin).Error)
	token, err := utils.GenerateAdminToken(admin.ID, admin.Username)
	require.NoError(t, err)
	return admin, token
}

func seedCategory(t *testing.T, db *gorm.DB) *models.Category {
	t.Helper()
	category := &models.Category{Name: "生活用品", Enabled: true}
	require.NoError(t, db.Create(category).Error)
	return category
}

func imageURLs(n int) []string {
	urls := make([]string, n)
	for i := range urls {
		urls[i] = fmt.Sprintf("/static/uploads/img-%d.jpg", i)
	}
	return urls
}

func postBody(categoryID uint, images int) map[string]interface{} {
	return map[string]interface{}{
		"type":          "LOST",
		"title":         "黑色钱包",
		"description":   "在图书馆三楼丢失一个黑色钱包",
		"category_id":   categoryID,
		"location_text": "图书馆三楼",
		"contact_phone": "13812345678",
		"tags":          []string{"黑色", "钱包"},
		"images":        imageURLs(images),
	}
}

// doJSON performs a request against the router with an optional bearer token
// and JSON body.
func doJSON(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// decodeData unwraps the standard response envelope and returns its data
// object.
func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope struct {
		Code    int                    `json:"code"`
		Message string                 `json:"message"`
		Data    map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Data
}

func createPostAs(t *testing.T, r *gin.Engine, token string, categoryID uint) uint {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/v1/posts", token, postBody(categoryID, 2))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeData(t, w)
	post := data["post"].(map[string]interface{})
	return uint(post["id"].(float64))
}

func approvePost(t *testing.T, db *gorm.DB, postID uint) {
	t.Helper()
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", postID).
		Update("status", models.PostStatusApproved).Error)
}
