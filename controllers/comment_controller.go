package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sicily/campusfound/middleware"
	"github.com/sicily/campusfound/models"
	"github.com/sicily/campusfound/utils"
)

// CommentController handles the comment section under posts.
type CommentController struct {
	db *gorm.DB
}

// NewCommentController creates a new CommentController instance.
func NewCommentController(db *gorm.DB) *CommentController {
	return &CommentController{db: db}
}

// ListComments returns the non-deleted comments of a published post, newest
// first.
func (c *CommentController) ListComments(ctx *gin.Context) {
	post, ok := c.visiblePost(ctx)
	if !ok {
		return
	}
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	query := c.db.Model(&models.Comment{}).Where("post_id = ? AND is_deleted = ?", post.ID, false)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to count comments")
		return
	}
	var comments []models.Comment
	if err := query.Preload("User").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&comments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to list comments")
		return
	}

	utils.Success(ctx, gin.H{
		"items": comments,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	})
}

// CreateComment posts a comment. Only published posts accept comments; the
// body needs either text within bounds or an image.
func (c *CommentController) CreateComment(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Unauthorized(ctx, 40120, "login required")
		return
	}
	post, ok := c.visiblePost(ctx)
	if !ok {
		return
	}
	if post.Status != models.PostStatusApproved {
		utils.BadRequest(ctx, 40050, "post is not open for comments")
		return
	}

	var req struct {
		Content  string `json:"content"`
		ImageURL string `json:"image_url"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(ctx, 40051, "invalid request payload")
		return
	}
	content := utils.Sanitize(strings.TrimSpace(req.Content))
	imageURL := strings.TrimSpace(req.ImageURL)
	if content == "" && imageURL == "" {
		utils.BadRequest(ctx, 40052, "content or image_url required")
		return
	}
	if content != "" {
		if n := len([]rune(content)); n < models.MinCommentLen || n > models.MaxCommentLen {
			utils.BadRequest(ctx, 40053, "content: 2 to 200 characters required")
			return
		}
	}

	comment := models.Comment{
		PostID:   post.ID,
		UserID:   user.ID,
		Content:  content,
		ImageURL: imageURL,
	}
	if err := c.db.Create(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to create comment")
		return
	}
	c.db.Preload("User").First(&comment, comment.ID)

	utils.InvalidateByPrefix("cache:post:detail:" + strconv.Itoa(int(post.ID)))
	utils.Success(ctx, gin.H{"comment": comment})
}

// DeleteComment soft deletes a comment. Admin only, and one way: deleted
// comments stay deleted.
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	if _, ok := middleware.CurrentAdmin(ctx); !ok {
		utils.Unauthorized(ctx, 40121, "admin credential required")
		return
	}

	var comment models.Comment
	if err := c.db.First(&comment, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(ctx, 40403, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to load comment")
		return
	}

	if !comment.IsDeleted {
		if err := c.db.Model(&comment).Update("is_deleted", true).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50044, "failed to delete comment")
			return
		}
	}

	utils.InvalidateByPrefix("cache:post:detail:" + strconv.Itoa(int(comment.PostID)))
	utils.Success(ctx, gin.H{"message": "comment deleted"})
}

// visiblePost loads the :id post and applies the same visibility rule as the
// detail endpoint: hidden posts answer 404.
func (c *CommentController) visiblePost(ctx *gin.Context) (*models.Post, bool) {
	var post models.Post
	if err := c.db.First(&post, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(ctx, 40401, "post not found")
			return nil, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50045, "failed to load post")
		return nil, false
	}
	if post.Status != models.PostStatusApproved {
		privileged := false
		if _, ok := middleware.CurrentAdmin(ctx); ok {
			privileged = true
		} else if user, ok := middleware.CurrentUser(ctx); ok && post.OwnedBy(user.ID) {
			privileged = true
		}
		if !privileged {
			utils.NotFound(ctx, 40401, "post not found")
			return nil, false
		}
	}
	return &post, true
}
