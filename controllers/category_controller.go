package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sicily/campusfound/models"
	"github.com/sicily/campusfound/utils"
)

// CategoryController manages the item category dictionary.
type CategoryController struct {
	db *gorm.DB
}

// NewCategoryController creates a new CategoryController instance.
func NewCategoryController(db *gorm.DB) *CategoryController {
	return &CategoryController{db: db}
}

// ListCategories returns the enabled categories for pickers, ordered by sort
// weight then name.
func (c *CategoryController) ListCategories(ctx *gin.Context) {
	const cacheKey = "cache:categories:enabled"
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var categories []models.Category
	if err := c.db.Where("enabled = ?", true).
		Order("sort ASC, name ASC").
		Find(&categories).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to list categories")
		return
	}

	payload := gin.H{"items": categories}
	utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, 30*time.Minute)
	utils.Success(ctx, payload)
}

// AdminListCategories returns every category including disabled ones.
func (c *CategoryController) AdminListCategories(ctx *gin.Context) {
	var categories []models.Category
	if err := c.db.Order("sort ASC, name ASC").Find(&categories).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to list categories")
		return
	}
	utils.Success(ctx, gin.H{"items": categories})
}

type categoryPayload struct {
	Name    string `json:"name"`
	Sort    *int   `json:"sort"`
	Enabled *bool  `json:"enabled"`
}

// CreateCategory adds a category. Names are unique.
func (c *CategoryController) CreateCategory(ctx *gin.Context) {
	var req categoryPayload
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(ctx, 40070, "invalid request payload")
		return
	}
	name := utils.Sanitize(strings.TrimSpace(req.Name))
	if name == "" || len([]rune(name)) > 20 {
		utils.BadRequest(ctx, 40071, "name: required, at most 20 characters")
		return
	}

	category := models.Category{Name: name, Enabled: true}
	if req.Sort != nil {
		category.Sort = *req.Sort
	}
	if req.Enabled != nil {
		category.Enabled = *req.Enabled
	}
	if err := c.db.Create(&category).Error; err != nil {
		utils.BadRequest(ctx, 40072, "category name already exists")
		return
	}

	utils.InvalidateByPrefix("cache:categories:")
	utils.Success(ctx, gin.H{"category": category})
}

// UpdateCategory edits name, sort weight or enabled flag.
func (c *CategoryController) UpdateCategory(ctx *gin.Context) {
	var category models.Category
	if err := c.db.First(&category, ctx.Param("id")).Error; err != nil {
		utils.NotFound(ctx, 40406, "category not found")
		return
	}

	var req categoryPayload
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(ctx, 40073, "invalid request payload")
		return
	}

	updates := map[string]interface{}{}
	if name := utils.Sanitize(strings.TrimSpace(req.Name)); name != "" {
		if len([]rune(name)) > 20 {
			utils.BadRequest(ctx, 40074, "name: at most 20 characters")
			return
		}
		updates["name"] = name
	}
	if req.Sort != nil {
		updates["sort"] = *req.Sort
	}
	if req.Enabled != nil {
		updates["enabled"] = *req.Enabled
	}
	if len(updates) == 0 {
		utils.BadRequest(ctx, 40075, "nothing to update")
		return
	}
	if err := c.db.Model(&category).Updates(updates).Error; err != nil {
		utils.BadRequest(ctx, 40072, "category name already exists")
		return
	}

	utils.InvalidateByPrefix("cache:categories:")
	utils.Success(ctx, gin.H{"category": category})
}

// DeleteCategory removes a category that no post references.
func (c *CategoryController) DeleteCategory(ctx *gin.Context) {
	var category models.Category
	if err := c.db.First(&category, ctx.Param("id")).Error; err != nil {
		utils.NotFound(ctx, 40406, "category not found")
		return
	}

	var inUse int64
	if err := c.db.Model(&models.Post{}).Where("category_id = ?", category.ID).Count(&inUse).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to check category usage")
		return
	}
	if inUse > 0 {
		utils.BadRequest(ctx, 40076, "category is referenced by posts")
		return
	}
	if err := c.db.Delete(&category).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to delete category")
		return
	}

	utils.InvalidateByPrefix("cache:categories:")
	utils.Success(ctx, gin.H{"message": "category deleted"})
}
