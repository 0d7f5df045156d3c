package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sicily/campusfound/models"
	"github.com/sicily/campusfound/utils"
)

// UserAdminController exposes the console's user management endpoints. All
// routes are behind admin auth.
type UserAdminController struct {
	db *gorm.DB
}

// NewUserAdminController creates a new UserAdminController instance.
func NewUserAdminController(db *gorm.DB) *UserAdminController {
	return &UserAdminController{db: db}
}

// ListUsers returns the paginated user roster with optional status and
// nickname filters.
func (u *UserAdminController) ListUsers(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	query := u.db.Model(&models.User{})
	if st := strings.ToUpper(strings.TrimSpace(ctx.Query("status"))); st == string(models.UserStatusActive) || st == string(models.UserStatusDisabled) {
		query = query.Where("status = ?", st)
	}
	if kw := strings.TrimSpace(ctx.Query("keyword")); kw != "" {
		query = query.Where("nickname LIKE ?", "%"+kw+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to count users")
		return
	}
	var users []models.User
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&users).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to list users")
		return
	}

	utils.Success(ctx, gin.H{
		"items": users,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	})
}

// UpdateUserStatus enables or disables an account. Disabled users fail auth
// on their next request even with a still-valid token.
func (u *UserAdminController) UpdateUserStatus(ctx *gin.Context) {
	var user models.User
	if err := u.db.First(&user, ctx.Param("id")).Error; err != nil {
		utils.NotFound(ctx, 40404, "user not found")
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(ctx, 40080, "status: required")
		return
	}
	status := models.UserStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if status != models.UserStatusActive && status != models.UserStatusDisabled {
		utils.BadRequest(ctx, 40081, "status: must be ACTIVE or DISABLED")
		return
	}

	if err := u.db.Model(&user).Update("status", status).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to update user")
		return
	}
	utils.Success(ctx, gin.H{"user": user})
}

// DeleteUser removes an account together with its posts, comments and
// conversations.
func (u *UserAdminController) DeleteUser(ctx *gin.Context) {
	var user models.User
	if err := u.db.First(&user, ctx.Param("id")).Error; err != nil {
		utils.NotFound(ctx, 40404, "user not found")
		return
	}

	err := u.db.Transaction(func(tx *gorm.DB) error {
		var postIDs []uint
		if err := tx.Model(&models.Post{}).Where("created_by_user = ?", user.ID).Pluck("id", &postIDs).Error; err != nil {
			return err
		}
		if len(postIDs) > 0 {
			if err := tx.Where("post_id IN ?", postIDs).Delete(&models.PostImage{}).Error; err != nil {
				return err
			}
			if err := tx.Where("post_id IN ?", postIDs).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", postIDs).Delete(&models.Post{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		var convIDs []uint
		if err := tx.Model(&models.Conversation{}).
			Where("user_id1 = ? OR user_id2 = ?", user.ID, user.ID).
			Pluck("id", &convIDs).Error; err != nil {
			return err
		}
		if len(convIDs) > 0 {
			if err := tx.Where("conversation_id IN ?", convIDs).Delete(&models.Message{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", convIDs).Delete(&models.Conversation{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50073, "failed to delete user")
		return
	}

	utils.InvalidateByPrefix("cache:posts:")
	utils.Success(ctx, gin.H{"message": "user deleted"})
}
