package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sicily/campusfound/models"
	"github.com/sicily/campusfound/utils"
)

// StatsController serves the console dashboard numbers.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// Overview aggregates totals, the review backlog and a 7 day posting trend.
// Cached briefly since the dashboard polls it.
func (s *StatsController) Overview(ctx *gin.Context) {
	const cacheKey = "cache:stats:overview"
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	counts := map[string]int64{}
	count := func(name string, query *gorm.DB) bool {
		var n int64
		if err := query.Count(&n).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to aggregate stats")
			return false
		}
		counts[name] = n
		return true
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if !count("total_posts", s.db.Model(&models.Post{})) ||
		!count("today_posts", s.db.Model(&models.Post{}).Where("created_at >= ?", today)) ||
		!count("pending_posts", s.db.Model(&models.Post{}).Where("status = ?", models.PostStatusPending)) ||
		!count("approved_posts", s.db.Model(&models.Post{}).Where("status = ?", models.PostStatusApproved)) ||
		!count("rejected_posts", s.db.Model(&models.Post{}).Where("status = ?", models.PostStatusRejected)) ||
		!count("removed_posts", s.db.Model(&models.Post{}).Where("status = ?", models.PostStatusRemoved)) ||
		!count("open_posts", s.db.Model(&models.Post{}).Where("biz_status = ? AND status = ?", models.BizStatusOpen, models.PostStatusApproved)) ||
		!count("closed_posts", s.db.Model(&models.Post{}).Where("biz_status = ?", models.BizStatusClosed)) ||
		!count("lost_posts", s.db.Model(&models.Post{}).Where("type = ?", models.PostTypeLost)) ||
		!count("found_posts", s.db.Model(&models.Post{}).Where("type = ?", models.PostTypeFound)) ||
		!count("total_users", s.db.Model(&models.User{})) ||
		!count("today_users", s.db.Model(&models.User{}).Where("created_at >= ?", today)) ||
		!count("total_comments", s.db.Model(&models.Comment{}).Where("is_deleted = ?", false)) {
		return
	}

	// Per-category post distribution.
	var categories []models.Category
	if err := s.db.Order("sort ASC, name ASC").Find(&categories).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50082, "failed to list categories")
		return
	}
	byCategory := make([]gin.H, 0, len(categories))
	for _, category := range categories {
		var n int64
		if err := s.db.Model(&models.Post{}).Where("category_id = ?", category.ID).Count(&n).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50082, "failed to aggregate categories")
			return
		}
		byCategory = append(byCategory, gin.H{"category_id": category.ID, "name": category.Name, "count": n})
	}

	// Resolution rate per post type: closed posts over total posts.
	recovery := gin.H{}
	for _, postType := range []models.PostType{models.PostTypeLost, models.PostTypeFound} {
		var total, closed int64
		s.db.Model(&models.Post{}).Where("type = ?", postType).Count(&total)
		s.db.Model(&models.Post{}).Where("type = ? AND biz_status = ?", postType, models.BizStatusClosed).Count(&closed)
		rate := 0.0
		if total > 0 {
			rate = float64(closed) / float64(total)
		}
		recovery[string(postType)] = gin.H{"total": total, "closed": closed, "rate": rate}
	}

	// Trends for the last 7 days, including empty days. Bucketing happens
	// here rather than in SQL so the query stays dialect neutral.
	since := today.AddDate(0, 0, -6)
	postTrend, ok := s.dailyTrend(ctx, &models.Post{}, since)
	if !ok {
		return
	}
	userTrend, ok := s.dailyTrend(ctx, &models.User{}, since)
	if !ok {
		return
	}

	payload := gin.H{
		"counts":      counts,
		"by_category": byCategory,
		"recovery":    recovery,
		"trend":       gin.H{"posts": postTrend, "users": userTrend},
	}
	utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Minute)
	utils.Success(ctx, payload)
}

// dailyTrend buckets rows of one model by creation day from since until
// today.
func (s *StatsController) dailyTrend(ctx *gin.Context, model interface{}, since time.Time) ([]gin.H, bool) {
	var createdAts []time.Time
	if err := s.db.Model(model).
		Where("created_at >= ?", since).
		Pluck("created_at", &createdAts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50081, "failed to aggregate trend")
		return nil, false
	}
	byDay := make(map[string]int64, 7)
	for _, ts := range createdAts {
		byDay[ts.Format("2006-01-02")]++
	}
	trend := make([]gin.H, 0, 7)
	for i := 0; i < 7; i++ {
		day := since.AddDate(0, 0, i).Format("2006-01-02")
		trend = append(trend, gin.H{"date": day, "count": byDay[day]})
	}
	return trend, true
}
