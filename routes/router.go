package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sicily/campusfound/config"
	"github.com/sicily/campusfound/controllers"
	"github.com/sicily/campusfound/middleware"
	"github.com/sicily/campusfound/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	// Load config and set Gin mode from configuration
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.Static("/static", "./static")

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	postController := controllers.NewPostController(db)
	commentController := controllers.NewCommentController(db)
	conversationController := controllers.NewConversationController(db)
	categoryController := controllers.NewCategoryController(db)
	userAdminController := controllers.NewUserAdminController(db)
	statsController := controllers.NewStatsController(db)
	uploadController := controllers.NewUploadController()
	recognitionController := controllers.NewRecognitionController()

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/wechat-login", authController.WechatLogin)
	authGroup.GET("/me", middleware.UserAuthRequired(db), authController.Me)

	// Public catalog and reads. OptionalAuth lets owners and admins see
	// their hidden posts through the same endpoints.
	api.GET("/categories", categoryController.ListCategories)
	api.GET("/posts", middleware.OptionalAuth(db), postController.ListPosts)
	api.GET("/posts/:id", middleware.OptionalAuth(db), postController.GetPost)
	api.GET("/posts/:id/comments", middleware.OptionalAuth(db), commentController.ListComments)
	api.POST("/recognize", middleware.RateLimitMiddleware(), recognitionController.Recognize)

	// User writes.
	user := api.Group("")
	user.Use(middleware.UserAuthRequired(db), middleware.RateLimitMiddleware())
	user.POST("/posts", postController.CreatePost)
	user.GET("/me/posts", postController.ListMyPosts)
	user.POST("/posts/:id/comments", commentController.CreateComment)
	user.POST("/upload", uploadController.UploadImage)
	user.POST("/conversations", conversationController.CreateConversation)
	user.GET("/conversations", conversationController.ListConversations)
	user.GET("/conversations/:id", conversationController.GetConversation)
	user.GET("/conversations/:id/messages", conversationController.ListMessages)
	user.POST("/conversations/:id/messages", conversationController.SendMessage)
	user.GET("/me/unread", conversationController.UnreadCount)

	// Owner-or-admin mutations share handlers; OptionalAuth resolves the
	// caller and the controller enforces ownership.
	shared := api.Group("")
	shared.Use(middleware.OptionalAuth(db), middleware.RateLimitMiddleware())
	shared.PUT("/posts/:id", postController.UpdatePost)
	shared.DELETE("/posts/:id", postController.DeletePost)
	shared.PATCH("/posts/:id/close", postController.ClosePost)
	shared.PATCH("/posts/:id/reopen", postController.ReopenPost)

	// Console.
	adminAuth := api.Group("/admin/auth")
	adminAuth.Use(middleware.RateLimitMiddleware())
	adminAuth.POST("/login", authController.AdminLogin)
	adminAuth.POST("/logout", authController.AdminLogout)
	adminAuth.GET("/me", middleware.AdminAuthRequired(db), authController.AdminMe)

	admin := api.Group("/admin")
	admin.Use(middleware.AdminAuthRequired(db))
	admin.GET("/posts", postController.ListPosts)
	admin.POST("/posts", postController.CreatePost)
	admin.PATCH("/posts/:id/status", postController.AuditPost)
	admin.GET("/posts/:id/audits", postController.ListAudits)
	admin.DELETE("/comments/:id", commentController.DeleteComment)
	admin.GET("/categories", categoryController.AdminListCategories)
	admin.POST("/categories", categoryController.CreateCategory)
	admin.PUT("/categories/:id", categoryController.UpdateCategory)
	admin.DELETE("/categories/:id", categoryController.DeleteCategory)
	admin.GET("/users", userAdminController.ListUsers)
	admin.PATCH("/users/:id/status", userAdminController.UpdateUserStatus)
	admin.DELETE("/users/:id", userAdminController.DeleteUser)
	admin.GET("/stats", statsController.Overview)
	admin.POST("/upload", uploadController.UploadImage)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
