package controllers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sicily/campusfound/utils"
)

const (
	uploadRoot    = "static/uploads"
	maxUploadSize = 5 << 20
)

var allowedImageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// UploadController stores client images on local disk under date-based
// directories and returns their public URL.
type UploadController struct{}

// NewUploadController creates a new UploadController instance.
func NewUploadController() *UploadController {
	return &UploadController{}
}

// UploadImage accepts one multipart image up to 5 MB. The stored name is a
// fresh uuid so client names never reach the filesystem.
func (u *UploadController) UploadImage(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		utils.BadRequest(ctx, 40090, "file: required")
		return
	}
	if file.Size > maxUploadSize {
		utils.BadRequest(ctx, 40091, "file: at most 5MB")
		return
	}

	contentType := file.Header.Get("Content-Type")
	ext, ok := allowedImageExt[contentType]
	if !ok {
		// Fall back to the extension when the part has no content type.
		switch strings.ToLower(filepath.Ext(file.Filename)) {
		case ".jpg", ".jpeg":
			ext = ".jpg"
		case ".png":
			ext = ".png"
		case ".gif":
			ext = ".gif"
		case ".webp":
			ext = ".webp"
		default:
			utils.BadRequest(ctx, 40092, "file: jpeg, png, gif or webp required")
			return
		}
	}

	now := time.Now()
	dir := filepath.Join(uploadRoot, now.Format("2006"), now.Format("01"), now.Format("02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50090, "failed to store file")
		return
	}
	name := uuid.NewString() + ext
	dst := filepath.Join(dir, name)
	if err := ctx.SaveUploadedFile(file, dst); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50091, "failed to store file")
		return
	}

	utils.Success(ctx, gin.H{
		"url": fmt.Sprintf("/%s", filepath.ToSlash(dst)),
	})
}
