package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sicily/campusfound/config"
	"github.com/sicily/campusfound/utils"
)

// RecognitionController proxies item photos to a vision model that suggests
// a category, tags and a draft description. Recognition is assistive, so
// every failure degrades to an empty suggestion instead of an error.
type RecognitionController struct {
	http *http.Client
}

// NewRecognitionController creates a new RecognitionController instance.
func NewRecognitionController() *RecognitionController {
	return &RecognitionController{
		http: &http.Client{Timeout: 20 * time.Second},
	}
}

type recognitionResult struct {
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
}

const recognitionPrompt = `识别图片中的物品。只返回一个JSON对象，格式:
{"category":"物品分类","tags":["标签1","标签2"],"description":"一句话描述"}
分类从这些里选: 电子产品, 证件卡片, 钥匙, 书籍文具, 衣物饰品, 运动器材, 生活用品, 其他`

// Recognize sends the image to the configured vision endpoint. Missing
// configuration, upstream errors and unparseable answers all return an empty
// suggestion with status 200.
func (r *RecognitionController) Recognize(ctx *gin.Context) {
	var req struct {
		ImageURL string `json:"image_url"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.ImageURL) == "" {
		utils.BadRequest(ctx, 40095, "image_url: required")
		return
	}

	cfg := config.Get()
	if cfg.RecognitionAPIKey == "" || cfg.RecognitionBaseURL == "" {
		r.empty(ctx)
		return
	}

	body := map[string]interface{}{
		"model": cfg.RecognitionModel,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]interface{}{
					{"type": "image_url", "image_url": map[string]string{"url": req.ImageURL}},
					{"type": "text", "text": recognitionPrompt},
				},
			},
		},
		"max_tokens": 300,
	}
	raw, err := json.Marshal(body)
	if err != nil {
		r.empty(ctx)
		return
	}

	endpoint := strings.TrimRight(cfg.RecognitionBaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx.Request.Context(), http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		r.empty(ctx)
		return
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+cfg.RecognitionAPIKey)

	resp, err := r.http.Do(httpReq)
	if err != nil {
		if utils.Sugar != nil {
			utils.Sugar.Warnf("recognition upstream error: %v", err)
		}
		r.empty(ctx)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		r.empty(ctx)
		return
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil || len(completion.Choices) == 0 {
		r.empty(ctx)
		return
	}

	result, ok := parseRecognition(completion.Choices[0].Message.Content)
	if !ok {
		r.empty(ctx)
		return
	}
	utils.Success(ctx, gin.H{
		"category":    result.Category,
		"tags":        result.Tags,
		"description": result.Description,
	})
}

// parseRecognition extracts the JSON object from a model answer that may be
// wrapped in prose or code fences.
func parseRecognition(content string) (recognitionResult, bool) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return recognitionResult{}, false
	}
	var result recognitionResult
	if err := json.Unmarshal([]byte(content[start:end+1]), &result); err != nil {
		return recognitionResult{}, false
	}
	if result.Category == "" {
		return recognitionResult{}, false
	}
	return result, true
}

func (r *RecognitionController) empty(ctx *gin.Context) {
	utils.Success(ctx, gin.H{
		"category":    nil,
		"tags":        []string{},
		"description": "",
	})
}
