package handler

import (
	"net/http"
	"strings"
	"time"

	"courtside/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type messageDto struct {
	ID             string    `json:"id"`
	Content        string    `json:"content"`
	SenderID       string    `json:"senderId"`
	SenderUsername string    `json:"senderUsername"`
	CreatedAt      time.Time `json:"createdAt"`
	IsMine         bool      `json:"isMine"`
	IsRead         bool      `json:"isRead"`
}

type dmThreadDto struct {
	ID                  string    `json:"id"`
	ParticipantID       string    `json:"participantId"`
	ParticipantUsername string    `json:"participantUsername"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
	LastMessage         *string   `json:"lastMessage"`
	UnreadCount         int64     `json:"unreadCount"`
}

type dmThreadDetailDto struct {
	ID                  string       `json:"id"`
	ParticipantID       string       `json:"participantId"`
	ParticipantUsername string       `json:"participantUsername"`
	IsActive            bool         `json:"isActive"`
	Messages            []messageDto `json:"messages"`
}

type createDmRequest struct {
	RecipientUsername string `json:"recipientUsername"`
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

func userMessageDto(msg models.UserMessage, viewerID string) messageDto {
	dto := messageDto{
		ID:        msg.ID,
		Content:   msg.Content,
		SenderID:  msg.SenderID,
		CreatedAt: msg.CreatedAt,
		IsMine:    msg.SenderID == viewerID,
		IsRead:    msg.ReadAt != nil,
	}
	if msg.Sender != nil {
		dto.SenderUsername = msg.Sender.DisplayName()
	}
	return dto
}

func dmDetail(thread *models.UserThread, messages []models.UserMessage, viewerID string) dmThreadDetailDto {
	detail := dmThreadDetailDto{
		ID:       thread.ID,
		IsActive: thread.IsActive,
		Messages: make([]messageDto, 0, len(messages)),
	}
	if other := thread.OtherUser(viewerID); other != nil {
		detail.ParticipantID = other.ID
		detail.ParticipantUsername = other.DisplayName()
	}
	for _, msg := range messages {
		detail.Messages = append(detail.Messages, userMessageDto(msg, viewerID))
	}
	return detail
}

// ListDMs returns every direct thread of the caller, most recently active
// first, with a preview of the newest message and the unread count.
func (h *Handler) ListDMs(c *gin.Context) {
	user := currentUser(c)

	summaries, err := h.Storage.ListUserThreads(user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dmThreadDto, 0, len(summaries))
	for _, s := range summaries {
		dto := dmThreadDto{
			ID:          s.Thread.ID,
			CreatedAt:   s.Thread.CreatedAt,
			UpdatedAt:   s.Thread.UpdatedAt,
			UnreadCount: s.UnreadCount,
		}
		if other := s.Thread.OtherUser(user.ID); other != nil {
			dto.ParticipantID = other.ID
			dto.ParticipantUsername = other.DisplayName()
		}
		if s.LastMessage != nil {
			dto.LastMessage = &s.LastMessage.Content
		}
		out = append(out, dto)
	}
	c.JSON(http.StatusOK, out)
}

// OpenDM finds or creates the direct thread with the recipient. Read state is
// untouched; opening a conversation is not the same as reading it.
func (h *Handler) OpenDM(c *gin.Context) {
	user := currentUser(c)

	var body createDmRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "recipientUsername is required"})
		return
	}
	recipient, err := h.Storage.GetUserByUsername(body.RecipientUsername)
	if err != nil {
		respondError(c, err)
		return
	}
	if recipient.ID == user.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot DM yourself"})
		return
	}

	thread, err := h.Storage.GetOrCreateUserThread(user.ID, recipient.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	messages, err := h.Storage.ListUserMessages(thread.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dmDetail(thread, messages, user.ID))
}

// DMDetail marks the thread read for the caller and returns it with all
// messages.
func (h *Handler) DMDetail(c *gin.Context) {
	user := currentUser(c)

	thread, err := h.Storage.GetUserThread(c.Param("threadID"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !thread.HasParticipant(user.ID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant in this thread"})
		return
	}

	if _, err := h.Storage.MarkUserThreadRead(thread.ID, user.ID); err != nil {
		respondError(c, err)
		return
	}
	messages, err := h.Storage.ListUserMessages(thread.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dmDetail(thread, messages, user.ID))
}

// SendDM appends a message to the thread and pushes a realtime event to the
// other participant. The append commits regardless of delivery.
func (h *Handler) SendDM(c *gin.Context) {
	user := currentUser(c)

	var body sendMessageRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}

	thread, err := h.Storage.GetUserThread(c.Param("threadID"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !thread.HasParticipant(user.ID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant in this thread"})
		return
	}
	if !thread.IsActive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thread is archived"})
		return
	}
	content := strings.TrimSpace(body.Content)
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message content cannot be empty"})
		return
	}

	msg, err := h.Storage.AppendUserMessage(thread.ID, user.ID, content)
	if err != nil {
		respondError(c, err)
		return
	}

	h.Hub.Publish(thread.OtherParticipant(user.ID), models.NewMessageEvent(
		models.EventDMNewMessage, thread.ID, models.MessagePayload{
			ID:             msg.ID,
			Content:        msg.Content,
			SenderID:       msg.SenderID,
			SenderUsername: user.DisplayName(),
			CreatedAt:      msg.CreatedAt,
		}))

	c.JSON(http.StatusOK, messageDto{
		ID:             msg.ID,
		Content:        msg.Content,
		SenderID:       msg.SenderID,
		SenderUsername: user.DisplayName(),
		CreatedAt:      msg.CreatedAt,
		IsMine:         true,
		IsRead:         false,
	})
}

// ArchiveDM deactivates the thread. History stays readable; a later message
// attempt between the pair opens a fresh thread.
func (h *Handler) ArchiveDM(c *gin.Context) {
	user := currentUser(c)

	thread, err := h.Storage.GetUserThread(c.Param("threadID"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !thread.HasParticipant(user.ID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant in this thread"})
		return
	}
	if err := h.Storage.ArchiveUserThread(thread.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Thread archived"})
}
