package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sicily/campusfound/models"
	"github.com/sicily/campusfound/utils"
)

const (
	// ContextUserKey stores the authenticated *models.User in Gin context.
	ContextUserKey = "auth_user"
	// ContextAdminKey stores the authenticated *models.Admin in Gin context.
	ContextAdminKey = "auth_admin"
	// AdminCookieName is the httponly cookie the browser console uses.
	AdminCookieName = "admin_token"
)

var errPrincipalGone = errors.New("principal missing or disabled")

// Both credential schemes follow the same template: verify the signature and
// expiry, then look up the referenced principal and fail closed when it no
// longer exists or is disabled.

// verifyUser resolves a user bearer token to a live User row.
func verifyUser(db *gorm.DB, token string) (*models.User, error) {
	claims, err := utils.ParseUserToken(token)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := db.First(&user, claims.UserID).Error; err != nil {
		return nil, errPrincipalGone
	}
	if user.Status != models.UserStatusActive {
		return nil, errPrincipalGone
	}
	return &user, nil
}

// verifyAdmin resolves an admin bearer token to a live Admin row.
func verifyAdmin(db *gorm.DB, token string) (*models.Admin, error) {
	claims, err := utils.ParseAdminToken(token)
	if err != nil {
		return nil, err
	}
	var admin models.Admin
	if err := db.First(&admin, claims.AdminID).Error; err != nil {
		return nil, errPrincipalGone
	}
	return &admin, nil
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(ctx *gin.Context) string {
	authHeader := ctx.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// UserAuthRequired ensures the request carries a valid user credential.
func UserAuthRequired(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := bearerToken(ctx)
		if token == "" {
			utils.Unauthorized(ctx, 40101, "missing user credential")
			ctx.Abort()
			return
		}
		user, err := verifyUser(db, token)
		if err != nil {
			utils.Unauthorized(ctx, 40102, "invalid user credential")
			ctx.Abort()
			return
		}
		ctx.Set(ContextUserKey, user)
		ctx.Next()
	}
}

// AdminAuthRequired ensures the request carries a valid admin credential,
// either as a bearer token or as the console's httponly cookie.
func AdminAuthRequired(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := bearerToken(ctx)
		if token == "" {
			if cookie, err := ctx.Cookie(AdminCookieName); err == nil {
				token = cookie
			}
		}
		if token == "" {
			utils.Unauthorized(ctx, 40103, "missing admin credential")
			ctx.Abort()
			return
		}
		admin, err := verifyAdmin(db, token)
		if err != nil {
			utils.Unauthorized(ctx, 40104, "invalid admin credential")
			ctx.Abort()
			return
		}
		ctx.Set(ContextAdminKey, admin)
		ctx.Next()
	}
}

// OptionalAuth attempts user then admin verification but never rejects: a
// failed or absent credential simply leaves the request anonymous. Used on
// read paths where owners, admins and visitors share one endpoint with
// different visibility.
func OptionalAuth(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if token := bearerToken(ctx); token != "" {
			if user, err := verifyUser(db, token); err == nil {
				ctx.Set(ContextUserKey, user)
			} else if admin, err := verifyAdmin(db, token); err == nil {
				ctx.Set(ContextAdminKey, admin)
			}
		} else if cookie, err := ctx.Cookie(AdminCookieName); err == nil && cookie != "" {
			if admin, err := verifyAdmin(db, cookie); err == nil {
				ctx.Set(ContextAdminKey, admin)
			}
		}
		ctx.Next()
	}
}

// CurrentUser returns the authenticated user stored by the middleware.
func CurrentUser(ctx *gin.Context) (*models.User, bool) {
	v, ok := ctx.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

// CurrentAdmin returns the authenticated admin stored by the middleware.
func CurrentAdmin(ctx *gin.Context) (*models.Admin, bool) {
	v, ok := ctx.Get(ContextAdminKey)
	if !ok {
		return nil, false
	}
	admin, ok := v.(*models.Admin)
	return admin, ok
}
