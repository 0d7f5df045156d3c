package controllers

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sicily/campusfound/config"
	"github.com/sicily/campusfound/middleware"
	"github.com/sicily/campusfound/models"
	"github.com/sicily/campusfound/utils"
)

// AuthController handles the two credential schemes: WeChat mini-program
// users and console admins.
type AuthController struct {
	db   *gorm.DB
	http *http.Client
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{
		db:   db,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// WechatLogin exchanges a wx.login code for a session, upserts the user row
// and issues a user token. Without WeChat credentials configured it derives
// a deterministic mock openid from the code so local clients can log in.
func (a *AuthController) WechatLogin(ctx *gin.Context) {
	var req struct {
		Code      string `json:"code" binding:"required"`
		Nickname  string `json:"nickname"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(ctx, 40010, "code: required")
		return
	}

	openID, err := a.resolveOpenID(strings.TrimSpace(req.Code))
	if err != nil {
		utils.Error(ctx, http.StatusBadGateway, 50210, "wechat login failed")
		return
	}

	now := time.Now()
	var user models.User
	err = a.db.Where("open_id = ?", openID).First(&user).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		user = models.User{
			OpenID:      openID,
			Nickname:    utils.Sanitize(strings.TrimSpace(req.Nickname)),
			AvatarURL:   strings.TrimSpace(req.AvatarURL),
			Status:      models.UserStatusActive,
			LastLoginAt: &now,
		}
		if user.Nickname == "" {
			user.Nickname = "用户" + openID[len(openID)-6:]
		}
		if err := a.db.Create(&user).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to create user")
			return
		}
	case err != nil:
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to load user")
		return
	default:
		if user.Status != models.UserStatusActive {
			utils.Forbidden(ctx, 40301, "account disabled")
			return
		}
		updates := map[string]interface{}{"last_login_at": now}
		if nick := utils.Sanitize(strings.TrimSpace(req.Nickname)); nick != "" {
			updates["nickname"] = nick
		}
		if avatar := strings.TrimSpace(req.AvatarURL); avatar != "" {
			updates["avatar_url"] = avatar
		}
		if err := a.db.Model(&user).Updates(updates).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to update user")
			return
		}
	}

	token, err := utils.GenerateUserToken(user.ID, user.OpenID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to issue token")
		return
	}
	utils.Success(ctx, gin.H{
		"token": token,
		"user":  user.Profile(),
	})
}

// resolveOpenID calls jscode2session, or falls back to a mock openid when
// the WeChat app credentials are not configured.
func (a *AuthController) resolveOpenID(code string) (string, error) {
	if code == "" {
		return "", fmt.Errorf("empty code")
	}
	cfg := config.Get()
	if cfg.WechatAppID == "" || cfg.WechatSecret == "" {
		sum := md5.Sum([]byte(code))
		return "mock_" + hex.EncodeToString(sum[:])[:24], nil
	}

	endpoint := fmt.Sprintf(
		"https://api.weixin.qq.com/sns/jscode2session?appid=%s&secret=%s&js_code=%s&grant_type=authorization_code",
		url.QueryEscape(cfg.WechatAppID), url.QueryEscape(cfg.WechatSecret), url.QueryEscape(code),
	)
	resp, err := a.http.Get(endpoint)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var session struct {
		OpenID  string `json:"openid"`
		ErrCode int    `json:"errcode"`
		ErrMsg  string `json:"errmsg"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return "", err
	}
	if session.OpenID == "" {
		return "", fmt.Errorf("jscode2session errcode=%d errmsg=%s", session.ErrCode, session.ErrMsg)
	}
	return session.OpenID, nil
}

// Me returns the authenticated user's own profile.
func (a *AuthController) Me(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Unauthorized(ctx, 40105, "login required")
		return
	}
	utils.Success(ctx, gin.H{"user": user.Profile()})
}

// AdminLogin verifies console credentials and issues an admin token, both in
// the response body and as an httponly cookie. The bootstrap admin row is
// created from configuration on its first login.
func (a *AuthController) AdminLogin(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(ctx, 40011, "username and password are required")
		return
	}
	req.Username = strings.TrimSpace(req.Username)

	var admin models.Admin
	err := a.db.Where("username = ?", req.Username).First(&admin).Error
	if err == gorm.ErrRecordNotFound {
		admin, err = a.bootstrapAdmin(req.Username, req.Password)
		if err != nil {
			utils.Unauthorized(ctx, 40106, "invalid username or password")
			return
		}
	} else if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to load admin")
		return
	} else if !utils.CheckPassword(admin.PasswordHash, req.Password) {
		utils.Unauthorized(ctx, 40106, "invalid username or password")
		return
	}

	now := time.Now()
	_ = a.db.Model(&admin).Update("last_login_at", now).Error

	token, err := utils.GenerateAdminToken(admin.ID, admin.Username)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50015, "failed to issue token")
		return
	}

	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middleware.AdminCookieName, token, int((7 * 24 * time.Hour).Seconds()), "/", "", false, true)
	utils.Success(ctx, gin.H{
		"token": token,
		"admin": gin.H{"id": admin.ID, "username": admin.Username},
	})
}

// bootstrapAdmin creates the configured bootstrap admin when the submitted
// credentials match it and no row exists yet.
func (a *AuthController) bootstrapAdmin(username, password string) (models.Admin, error) {
	cfg := config.Get()
	if cfg.AdminUsername == "" || username != cfg.AdminUsername || password != cfg.AdminPassword {
		return models.Admin{}, fmt.Errorf("not the bootstrap admin")
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return models.Admin{}, err
	}
	admin := models.Admin{Username: username, PasswordHash: hash}
	if err := a.db.Create(&admin).Error; err != nil {
		return models.Admin{}, err
	}
	return admin, nil
}

// AdminLogout clears the console cookie.
func (a *AuthController) AdminLogout(ctx *gin.Context) {
	ctx.SetCookie(middleware.AdminCookieName, "", -1, "/", "", false, true)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// AdminMe returns the authenticated admin's identity.
func (a *AuthController) AdminMe(ctx *gin.Context) {
	admin, ok := middleware.CurrentAdmin(ctx)
	if !ok {
		utils.Unauthorized(ctx, 40107, "admin credential required")
		return
	}
	utils.Success(ctx, gin.H{"admin": gin.H{"id": admin.ID, "username": admin.Username}})
}
