package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sicily/campusfound/middleware"
	"github.com/sicily/campusfound/models"
	"github.com/sicily/campusfound/utils"
)

// PostController manages the post lifecycle: creation, moderation, business
// closure and reopening.
type PostController struct {
	db *gorm.DB
}

// NewPostController creates a new PostController instance.
func NewPostController(db *gorm.DB) *PostController {
	return &PostController{db: db}
}

type postPayload struct {
	Type         string   `json:"type"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	CategoryID   uint     `json:"category_id"`
	LocationText string   `json:"location_text"`
	LocationLat  *float64 `json:"location_lat"`
	LocationLng  *float64 `json:"location_lng"`
	ContactPhone string   `json:"contact_phone"`
	Tags         []string `json:"tags"`
	Images       []string `json:"images"`
}

// validatePostPayload trims and checks the shared create/update fields.
// Returns a field-level message on failure.
func (p *PostController) validatePostPayload(req *postPayload, requireImages bool) string {
	req.Title = utils.Sanitize(strings.TrimSpace(req.Title))
	req.Description = utils.Sanitize(strings.TrimSpace(req.Description))
	req.LocationText = utils.Sanitize(strings.TrimSpace(req.LocationText))
	req.ContactPhone = strings.TrimSpace(req.ContactPhone)

	if len([]rune(req.Title)) > 100 {
		return "title: at most 100 characters"
	}
	if n := len([]rune(req.Description)); n < 10 || n > 500 {
		return "description: 10 to 500 characters required"
	}
	if req.LocationText == "" || len([]rune(req.LocationText)) > 100 {
		return "location_text: required, at most 100 characters"
	}
	if len(req.ContactPhone) > 20 {
		return "contact_phone: at most 20 characters"
	}
	if requireImages || len(req.Images) > 0 {
		if len(req.Images) < models.MinPostImages || len(req.Images) > models.MaxPostImages {
			return fmt.Sprintf("images: between %d and %d required", models.MinPostImages, models.MaxPostImages)
		}
	}
	if req.CategoryID == 0 {
		return "category_id: required"
	}
	var category models.Category
	if err := p.db.First(&category, req.CategoryID).Error; err != nil || !category.Enabled {
		return "category_id: unknown or disabled category"
	}
	return ""
}

// CreatePost creates a listing. User posts enter the review queue; admin
// posts publish immediately.
func (p *PostController) CreatePost(ctx *gin.Context) {
	admin, isAdmin := middleware.CurrentAdmin(ctx)
	user, isUser := middleware.CurrentUser(ctx)
	if !isAdmin && !isUser {
		utils.Unauthorized(ctx, 40110, "login required")
		return
	}

	var req postPayload
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(ctx, 40020, "invalid request payload")
		return
	}
	postType := models.PostType(strings.ToUpper(strings.TrimSpace(req.Type)))
	if !postType.Valid() {
		utils.BadRequest(ctx, 40021, "type: must be LOST or FOUND")
		return
	}
	if msg := p.validatePostPayload(&req, true); msg != "" {
		utils.BadRequest(ctx, 40022, msg)
		return
	}

	post := models.Post{
		Type:         postType,
		Title:        req.Title,
		Description:  req.Description,
		CategoryID:   req.CategoryID,
		LocationText: req.LocationText,
		LocationLat:  req.LocationLat,
		LocationLng:  req.LocationLng,
		ContactPhone: req.ContactPhone,
		TagsJSON:     models.EncodeTags(req.Tags),
		Status:       models.PostStatusPending,
		BizStatus:    models.BizStatusOpen,
	}
	if isAdmin {
		// Admin submissions are trusted and skip review.
		post.Status = models.PostStatusApproved
		post.CreatedByAdmin = &admin.ID
	} else {
		post.CreatedByUser = &user.ID
	}

	err := p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		images := make([]models.PostImage, 0, len(req.Images))
		for idx, url := range req.Images {
			images = append(images, models.PostImage{PostID: post.ID, URL: url, Sort: idx})
		}
		return tx.Create(&images).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create post")
		return
	}

	utils.InvalidateByPrefix("cache:posts:")
	p.loadAndRespond(ctx, post.ID, true)
}

// ListPosts returns the paginated post list. Anonymous callers and plain
// users only see APPROVED posts; admins see everything and may filter by
// moderation status. A logged-in user may pass mine=1 to list their own
// posts in any status through the same endpoint.
func (p *PostController) ListPosts(ctx *gin.Context) {
	_, isAdmin := middleware.CurrentAdmin(ctx)
	user, isUser := middleware.CurrentUser(ctx)
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	keyword := strings.TrimSpace(ctx.Query("keyword"))
	mine := isUser && ctx.Query("mine") == "1"

	query := p.db.Model(&models.Post{})
	if t := strings.ToUpper(strings.TrimSpace(ctx.Query("type"))); t != "" {
		query = query.Where("type = ?", t)
	}
	if cid := ctx.Query("category_id"); cid != "" {
		query = query.Where("category_id = ?", cid)
	}
	if keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where("title LIKE ? OR description LIKE ? OR location_text LIKE ? OR tags_json LIKE ?", like, like, like, like)
	}
	if bs := strings.ToUpper(ctx.Query("biz_status")); bs == string(models.BizStatusOpen) || bs == string(models.BizStatusClosed) {
		query = query.Where("biz_status = ?", bs)
	}
	switch {
	case isAdmin:
		if st := strings.ToUpper(ctx.Query("status")); st != "" {
			query = query.Where("status = ?", st)
		}
	case mine:
		query = query.Where("created_by_user = ?", user.ID)
		if st := strings.ToUpper(ctx.Query("status")); st != "" {
			query = query.Where("status = ?", st)
		}
	default:
		// Visibility rule: only published posts exist for the public.
		query = query.Where("status = ?", models.PostStatusApproved)
	}

	anonymous := !isAdmin && !isUser
	cacheKey := fmt.Sprintf("cache:posts:list:type=%s:cat=%s:biz=%s:page=%d:size=%d",
		ctx.Query("type"), ctx.Query("category_id"), ctx.Query("biz_status"), page, pageSize)
	if anonymous && keyword == "" {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to count posts")
		return
	}
	var posts []models.Post
	if err := query.Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("sort ASC") }).
		Preload("Category").Preload("User").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list posts")
		return
	}

	items := make([]models.Post, 0, len(posts))
	for _, post := range posts {
		items = append(items, shapePost(post, p.privileged(ctx, &post)))
	}

	payload := gin.H{
		"items": items,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	}
	if anonymous && keyword == "" {
		utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, 10*time.Minute)
	}
	utils.Success(ctx, payload)
}

// ListMyPosts returns the caller's own posts in every moderation status.
func (p *PostController) ListMyPosts(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Unauthorized(ctx, 40111, "login required")
		return
	}
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	query := p.db.Model(&models.Post{}).Where("created_by_user = ?", user.ID)
	if st := strings.ToUpper(ctx.Query("status")); st != "" {
		query = query.Where("status = ?", st)
	}
	if bs := strings.ToUpper(ctx.Query("biz_status")); bs != "" {
		query = query.Where("biz_status = ?", bs)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to count posts")
		return
	}
	var posts []models.Post
	if err := query.Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("sort ASC") }).
		Preload("Category").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to list posts")
		return
	}

	items := make([]models.Post, 0, len(posts))
	for _, post := range posts {
		items = append(items, shapePost(post, true))
	}
	utils.Success(ctx, gin.H{
		"items": items,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	})
}

// GetPost returns one post. Posts that are not APPROVED only exist for
// their owner and admins; everyone else gets a 404 so the moderation state
// cannot be probed.
func (p *PostController) GetPost(ctx *gin.Context) {
	postID := ctx.Param("id")
	var post models.Post
	err := p.db.Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("sort ASC") }).
		Preload("Category").Preload("User").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_deleted = ?", false).Order("created_at DESC")
		}).
		Preload("Comments.User").
		First(&post, postID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(ctx, 40401, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to load post")
		return
	}

	privileged := p.privileged(ctx, &post)
	if post.Status != models.PostStatusApproved && !privileged {
		utils.NotFound(ctx, 40401, "post not found")
		return
	}

	utils.Success(ctx, gin.H{"post": shapePost(post, privileged)})
}

// UpdatePost lets the owner or an admin edit a post's content. Owner edits
// go back to PENDING for re-review; admin edits keep the current status.
// Images, when supplied, replace the whole set.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	var post models.Post
	if !p.loadForWrite(ctx, &post) {
		return
	}
	actor, ok := p.requireOwnerOrAdmin(ctx, &post)
	if !ok {
		return
	}

	var req postPayload
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(ctx, 40023, "invalid request payload")
		return
	}
	if msg := p.validatePostPayload(&req, false); msg != "" {
		utils.BadRequest(ctx, 40024, msg)
		return
	}

	updates := map[string]interface{}{
		"title":         req.Title,
		"description":   req.Description,
		"category_id":   req.CategoryID,
		"location_text": req.LocationText,
		"location_lat":  req.LocationLat,
		"location_lng":  req.LocationLng,
		"contact_phone": req.ContactPhone,
		"tags_json":     models.EncodeTags(req.Tags),
	}
	if !actor.IsAdmin() {
		// Owner edits always re-enter the review queue.
		updates["status"] = models.PostStatusPending
	}

	err := p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&post).Updates(updates).Error; err != nil {
			return err
		}
		if len(req.Images) > 0 {
			if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostImage{}).Error; err != nil {
				return err
			}
			images := make([]models.PostImage, 0, len(req.Images))
			for idx, url := range req.Images {
				images = append(images, models.PostImage{PostID: post.ID, URL: url, Sort: idx})
			}
			if err := tx.Create(&images).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to update post")
		return
	}

	utils.InvalidateByPrefix("cache:posts:")
	utils.InvalidateByPrefix("cache:post:detail:" + strconv.Itoa(int(post.ID)))
	p.loadAndRespond(ctx, post.ID, true)
}

// DeletePost removes a post together with its images and comments.
func (p *PostController) DeletePost(ctx *gin.Context) {
	var post models.Post
	if !p.loadForWrite(ctx, &post) {
		return
	}
	if _, ok := p.requireOwnerOrAdmin(ctx, &post); !ok {
		return
	}

	err := p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to delete post")
		return
	}

	utils.InvalidateByPrefix("cache:posts:")
	utils.InvalidateByPrefix("cache:post:detail:" + strconv.Itoa(int(post.ID)))
	utils.Success(ctx, gin.H{"message": "post deleted"})
}

// ClosePost marks the real-world situation resolved. Re-closing amends the
// reason and remark but keeps the original closedAt.
func (p *PostController) ClosePost(ctx *gin.Context) {
	var post models.Post
	if !p.loadForWrite(ctx, &post) {
		return
	}
	actor, ok := p.requireOwnerOrAdmin(ctx, &post)
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
		Remark string `json:"remark"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(ctx, 40030, "invalid request payload")
		return
	}
	reason := models.CloseReason(strings.ToUpper(strings.TrimSpace(req.Reason)))
	if reason == "" {
		utils.BadRequest(ctx, 40031, "reason: required")
		return
	}
	if !post.Type.ValidCloseReason(reason) {
		utils.BadRequest(ctx, 40032, "reason: not valid for this post type")
		return
	}
	remark := utils.Sanitize(strings.TrimSpace(req.Remark))
	if len([]rune(remark)) > 200 {
		utils.BadRequest(ctx, 40033, "remark: at most 200 characters")
		return
	}

	updates := post.CloseUpdates(actor, reason, remark, time.Now())
	if err := p.db.Model(&post).Updates(updates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to close post")
		return
	}

	utils.InvalidateByPrefix("cache:posts:")
	utils.InvalidateByPrefix("cache:post:detail:" + strconv.Itoa(int(post.ID)))
	p.loadAndRespond(ctx, post.ID, true)
}

// ReopenPost reverts a closed post to OPEN and back into the review queue.
// Only valid from CLOSED; the close metadata is cleared atomically with the
// reopen metadata being written.
func (p *PostController) ReopenPost(ctx *gin.Context) {
	var post models.Post
	if !p.loadForWrite(ctx, &post) {
		return
	}
	actor, ok := p.requireOwnerOrAdmin(ctx, &post)
	if !ok {
		return
	}

	if post.BizStatus != models.BizStatusClosed {
		utils.BadRequest(ctx, 40034, "post is not closed")
		return
	}

	var req struct {
		Reason string `json:"reason"`
		Remark string `json:"remark"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(ctx, 40035, "invalid request payload")
		return
	}
	reason := models.ReopenReason(strings.ToUpper(strings.TrimSpace(req.Reason)))
	if reason == "" {
		utils.BadRequest(ctx, 40036, "reason: required")
		return
	}
	if !reason.Valid() {
		utils.BadRequest(ctx, 40037, "reason: unknown reopen reason")
		return
	}
	remark := utils.Sanitize(strings.TrimSpace(req.Remark))
	if len([]rune(remark)) > 200 {
		utils.BadRequest(ctx, 40038, "remark: at most 200 characters")
		return
	}

	updates := post.ReopenUpdates(actor, reason, remark, time.Now())
	if err := p.db.Model(&post).Updates(updates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50029, "failed to reopen post")
		return
	}

	utils.InvalidateByPrefix("cache:posts:")
	utils.InvalidateByPrefix("cache:post:detail:" + strconv.Itoa(int(post.ID)))
	p.loadAndRespond(ctx, post.ID, true)
}

// AuditPost applies an admin moderation decision and writes the audit ledger
// entry in the same transaction.
func (p *PostController) AuditPost(ctx *gin.Context) {
	admin, ok := middleware.CurrentAdmin(ctx)
	if !ok {
		utils.Unauthorized(ctx, 40112, "admin credential required")
		return
	}

	var post models.Post
	if err := p.db.First(&post, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(ctx, 40402, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to load post")
		return
	}

	var req struct {
		Action string `json:"action"`
		Reason string `json:"reason"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(ctx, 40040, "invalid request payload")
		return
	}
	action := models.AuditAction(strings.ToUpper(strings.TrimSpace(req.Action)))
	if !action.Valid() {
		utils.BadRequest(ctx, 40041, "action: must be APPROVED, REJECTED or REMOVED")
		return
	}
	reason := utils.Sanitize(strings.TrimSpace(req.Reason))
	if action == models.AuditActionRejected && reason == "" {
		utils.BadRequest(ctx, 40042, "reason: required when rejecting")
		return
	}
	if len([]rune(reason)) > 200 {
		utils.BadRequest(ctx, 40043, "reason: at most 200 characters")
		return
	}

	rejectReason := ""
	if action == models.AuditActionRejected {
		rejectReason = reason
	}
	err := p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&post).Updates(map[string]interface{}{
			"status":        action.TargetStatus(),
			"reject_reason": rejectReason,
		}).Error; err != nil {
			return err
		}
		record := models.AuditRecord{
			PostID:  post.ID,
			AdminID: admin.ID,
			Action:  action,
			Reason:  reason,
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to audit post")
		return
	}

	utils.InvalidateByPrefix("cache:posts:")
	utils.InvalidateByPrefix("cache:post:detail:" + strconv.Itoa(int(post.ID)))
	p.loadAndRespond(ctx, post.ID, true)
}

// ListAudits returns the moderation history for one post, newest first.
func (p *PostController) ListAudits(ctx *gin.Context) {
	var post models.Post
	if err := p.db.First(&post, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(ctx, 40402, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to load post")
		return
	}
	var records []models.AuditRecord
	if err := p.db.Where("post_id = ?", post.ID).Order("created_at DESC").Find(&records).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to list audit records")
		return
	}
	utils.Success(ctx, gin.H{"items": records})
}

// loadForWrite loads the target post for a mutating operation, answering
// 404 when absent.
func (p *PostController) loadForWrite(ctx *gin.Context, post *models.Post) bool {
	if err := p.db.First(post, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(ctx, 40401, "post not found")
			return false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to load post")
		return false
	}
	return true
}

// requireOwnerOrAdmin resolves the caller to an Actor allowed to mutate the
// post: any admin, or the user that created it. Anonymous callers get 401,
// other users 403.
func (p *PostController) requireOwnerOrAdmin(ctx *gin.Context, post *models.Post) (models.Actor, bool) {
	if admin, ok := middleware.CurrentAdmin(ctx); ok {
		return models.AdminActor(admin.ID), true
	}
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Unauthorized(ctx, 40113, "login required")
		return models.Actor{}, false
	}
	if !post.OwnedBy(user.ID) {
		utils.Forbidden(ctx, 40310, "not the owner of this post")
		return models.Actor{}, false
	}
	return models.UserActor(user.ID), true
}

// privileged reports whether the caller may see the post unmasked and in any
// moderation status.
func (p *PostController) privileged(ctx *gin.Context, post *models.Post) bool {
	if _, ok := middleware.CurrentAdmin(ctx); ok {
		return true
	}
	if user, ok := middleware.CurrentUser(ctx); ok {
		return post.OwnedBy(user.ID)
	}
	return false
}

// loadAndRespond reloads the post with its associations and returns it.
func (p *PostController) loadAndRespond(ctx *gin.Context, id uint, privileged bool) {
	var post models.Post
	err := p.db.Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("sort ASC") }).
		Preload("Category").
		First(&post, id).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to load post")
		return
	}
	utils.Success(ctx, gin.H{"post": shapePost(post, privileged)})
}

// shapePost parses the tags column and masks the contact phone for viewers
// that are neither the owner nor an admin. Applied at every read boundary so
// no path can leak an unmasked number.
func shapePost(post models.Post, privileged bool) models.Post {
	post.Tags = models.ParseTags(post.TagsJSON)
	if !privileged {
		post.ContactPhone = utils.MaskPhone(post.ContactPhone)
	}
	return post
}

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := 10
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
		pageSize = s
	}
	return page, pageSize
}
