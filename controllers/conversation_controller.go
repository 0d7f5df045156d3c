package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sicily/campusfound/middleware"
	"github.com/sicily/campusfound/models"
	"github.com/sicily/campusfound/utils"
)

// ConversationController handles direct messaging between two users.
type ConversationController struct {
	db *gorm.DB
}

// NewConversationController creates a new ConversationController instance.
func NewConversationController(db *gorm.DB) *ConversationController {
	return &ConversationController{db: db}
}

// CreateConversation finds or creates the conversation between the caller
// and a peer. The participant pair is stored in canonical order under a
// unique index, so concurrent first-contact requests converge on one row:
// the race loser hits the constraint and re-fetches.
func (c *ConversationController) CreateConversation(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Unauthorized(ctx, 40130, "login required")
		return
	}

	var req struct {
		PeerID uint `json:"peer_id" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(ctx, 40060, "peer_id: required")
		return
	}
	if req.PeerID == user.ID {
		utils.BadRequest(ctx, 40061, "cannot start a conversation with yourself")
		return
	}

	var peer models.User
	if err := c.db.First(&peer, req.PeerID).Error; err != nil {
		utils.NotFound(ctx, 40404, "user not found")
		return
	}

	id1, id2 := models.CanonicalPair(user.ID, req.PeerID)
	var conv models.Conversation
	err := c.db.Where("user_id1 = ? AND user_id2 = ?", id1, id2).First(&conv).Error
	if err == gorm.ErrRecordNotFound {
		conv = models.Conversation{UserID1: id1, UserID2: id2}
		if createErr := c.db.Create(&conv).Error; createErr != nil {
			// Lost the creation race; the winner's row is there now.
			if err := c.db.Where("user_id1 = ? AND user_id2 = ?", id1, id2).First(&conv).Error; err != nil {
				utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to create conversation")
				return
			}
		}
	} else if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to load conversation")
		return
	}

	utils.Success(ctx, gin.H{"conversation": c.summarize(conv, user.ID)})
}

// ListConversations returns the caller's conversations ordered by recent
// activity, each with the peer profile, last message and unread count.
func (c *ConversationController) ListConversations(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Unauthorized(ctx, 40131, "login required")
		return
	}

	var convs []models.Conversation
	if err := c.db.Where("user_id1 = ? OR user_id2 = ?", user.ID, user.ID).
		Order("updated_at DESC").
		Find(&convs).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to list conversations")
		return
	}

	items := make([]gin.H, 0, len(convs))
	for _, conv := range convs {
		items = append(items, c.summarize(conv, user.ID))
	}
	utils.Success(ctx, gin.H{"items": items})
}

// GetConversation returns one conversation summary. Participants only.
func (c *ConversationController) GetConversation(ctx *gin.Context) {
	user, conv, ok := c.loadForParticipant(ctx)
	if !ok {
		return
	}
	utils.Success(ctx, gin.H{"conversation": c.summarize(*conv, user.ID)})
}

// ListMessages returns a page of messages oldest first and then marks the
// peer's messages in that conversation as read. The snapshot is taken before
// the mark so the response still shows which messages were unread.
func (c *ConversationController) ListMessages(ctx *gin.Context) {
	user, conv, ok := c.loadForParticipant(ctx)
	if !ok {
		return
	}
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	if ctx.Query("page_size") == "" {
		pageSize = 20
	}

	query := c.db.Model(&models.Message{}).Where("conversation_id = ?", conv.ID)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50053, "failed to count messages")
		return
	}
	var messages []models.Message
	if err := query.Preload("Sender").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&messages).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50054, "failed to list messages")
		return
	}
	// Reverse to chronological order for rendering.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	if err := c.db.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conv.ID, user.ID, false).
		Update("is_read", true).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50055, "failed to mark messages read")
		return
	}

	utils.Success(ctx, gin.H{
		"items": messages,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	})
}

// SendMessage appends a message and bumps the conversation's activity
// timestamp so the list ordering follows the latest traffic.
func (c *ConversationController) SendMessage(ctx *gin.Context) {
	user, conv, ok := c.loadForParticipant(ctx)
	if !ok {
		return
	}

	var req struct {
		Content  string `json:"content"`
		ImageURL string `json:"image_url"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(ctx, 40062, "invalid request payload")
		return
	}
	content := utils.Sanitize(strings.TrimSpace(req.Content))
	imageURL := strings.TrimSpace(req.ImageURL)
	if content == "" && imageURL == "" {
		utils.BadRequest(ctx, 40063, "content or image_url required")
		return
	}
	if len([]rune(content)) > models.MaxMessageLen {
		utils.BadRequest(ctx, 40064, "content: at most 500 characters")
		return
	}

	message := models.Message{
		ConversationID: conv.ID,
		SenderID:       user.ID,
		Content:        content,
		ImageURL:       imageURL,
	}
	err := c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&message).Error; err != nil {
			return err
		}
		return tx.Model(conv).Update("updated_at", time.Now()).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50056, "failed to send message")
		return
	}
	c.db.Preload("Sender").First(&message, message.ID)

	utils.Success(ctx, gin.H{"message": message})
}

// UnreadCount returns the caller's total unread message count across all
// conversations. Used for the tab badge.
func (c *ConversationController) UnreadCount(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Unauthorized(ctx, 40132, "login required")
		return
	}

	var count int64
	err := c.db.Model(&models.Message{}).
		Joins("JOIN conversations ON conversations.id = messages.conversation_id").
		Where("(conversations.user_id1 = ? OR conversations.user_id2 = ?)", user.ID, user.ID).
		Where("messages.sender_id <> ? AND messages.is_read = ?", user.ID, false).
		Count(&count).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50057, "failed to count unread messages")
		return
	}
	utils.Success(ctx, gin.H{"unread": count})
}

// loadForParticipant loads the :id conversation and requires the caller to
// be one of its two participants.
func (c *ConversationController) loadForParticipant(ctx *gin.Context) (*models.User, *models.Conversation, bool) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Unauthorized(ctx, 40133, "login required")
		return nil, nil, false
	}
	var conv models.Conversation
	if err := c.db.First(&conv, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(ctx, 40405, "conversation not found")
			return nil, nil, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50058, "failed to load conversation")
		return nil, nil, false
	}
	if !conv.Involves(user.ID) {
		utils.Forbidden(ctx, 40320, "not a participant of this conversation")
		return nil, nil, false
	}
	return user, &conv, true
}

// summarize builds the list/detail view of a conversation from the caller's
// perspective.
func (c *ConversationController) summarize(conv models.Conversation, viewerID uint) gin.H {
	var peer models.User
	peerID := conv.OtherParticipant(viewerID)
	_ = c.db.First(&peer, peerID).Error

	var last models.Message
	hasLast := c.db.Where("conversation_id = ?", conv.ID).
		Order("created_at DESC").
		First(&last).Error == nil

	var unread int64
	c.db.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conv.ID, viewerID, false).
		Count(&unread)

	out := gin.H{
		"id":         conv.ID,
		"peer":       peer.Profile(),
		"unread":     unread,
		"created_at": conv.CreatedAt,
		"updated_at": conv.UpdatedAt,
	}
	if hasLast {
		out["last_message"] = last
	}
	return out
}
