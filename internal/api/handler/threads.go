package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"courtside/backend/internal/apperr"
	"courtside/backend/internal/models"
	"courtside/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

type playerThreadDto struct {
	ID                  string    `json:"id"`
	PlayerID            int       `json:"playerId"`
	PlayerName          string    `json:"playerName"`
	OwnerID             string    `json:"ownerId"`
	OwnerUsername       string    `json:"ownerUsername"`
	ParticipantID       string    `json:"participantId"`
	ParticipantUsername string    `json:"participantUsername"`
	IsActive            bool      `json:"isActive"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
	LastMessage         *string   `json:"lastMessage"`
	UnreadCount         int64     `json:"unreadCount"`
	IsOwner             bool      `json:"isOwner"`
}

type playerThreadDetailDto struct {
	ID                  string       `json:"id"`
	PlayerID            int          `json:"playerId"`
	PlayerName          string       `json:"playerName"`
	OwnerID             string       `json:"ownerId"`
	OwnerUsername       string       `json:"ownerUsername"`
	ParticipantID       string       `json:"participantId"`
	ParticipantUsername string       `json:"participantUsername"`
	IsActive            bool         `json:"isActive"`
	IsOwner             bool         `json:"isOwner"`
	Messages            []messageDto `json:"messages"`
}

func playerMessageDto(msg models.PlayerMessage, viewerID string) messageDto {
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

func playerThreadSummaryDto(s storage.PlayerThreadSummary, viewerID string) playerThreadDto {
	t := s.Thread
	dto := playerThreadDto{
		ID:            t.ID,
		OwnerID:       t.OwnerID,
		ParticipantID: t.ParticipantID,
		IsActive:      t.IsActive,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		UnreadCount:   s.UnreadCount,
		IsOwner:       t.OwnerID == viewerID,
	}
	if t.Player != nil {
		dto.PlayerID = t.Player.PlayerID
		dto.PlayerName = t.Player.Name
	}
	if t.Owner != nil {
		dto.OwnerUsername = t.Owner.DisplayName()
	}
	if t.Participant != nil {
		dto.ParticipantUsername = t.Participant.DisplayName()
	}
	if s.LastMessage != nil {
		dto.LastMessage = &s.LastMessage.Content
	}
	return dto
}

func playerThreadDetail(t *models.PlayerThread, messages []models.PlayerMessage, viewerID string) playerThreadDetailDto {
	detail := playerThreadDetailDto{
		ID:            t.ID,
		OwnerID:       t.OwnerID,
		ParticipantID: t.ParticipantID,
		IsActive:      t.IsActive,
		IsOwner:       t.OwnerID == viewerID,
		Messages:      make([]messageDto, 0, len(messages)),
	}
	if t.Player != nil {
		detail.PlayerID = t.Player.PlayerID
		detail.PlayerName = t.Player.Name
	}
	if t.Owner != nil {
		detail.OwnerUsername = t.Owner.DisplayName()
	}
	if t.Participant != nil {
		detail.ParticipantUsername = t.Participant.DisplayName()
	}
	for _, msg := range messages {
		detail.Messages = append(detail.Messages, playerMessageDto(msg, viewerID))
	}
	return detail
}

// bbPlayer resolves the playerID path parameter, a BuzzerBeater id, to the
// stored player.
func (h *Handler) bbPlayer(c *gin.Context) (*models.Player, bool) {
	bbID, err := strconv.Atoi(c.Param("playerID"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Player not found"})
		return nil, false
	}
	player, err := h.Storage.GetPlayerByBBID(bbID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if player == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Player not found"})
		return nil, false
	}
	return player, true
}

// playerOwner resolves the coach who currently owns the player.
func (h *Handler) playerOwner(player *models.Player) (*models.User, error) {
	if player.CurrentTeamID == nil {
		return nil, apperr.BadRequest("Player has no team", nil)
	}
	team, err := h.Storage.GetTeamByID(*player.CurrentTeamID)
	if err != nil || team.Coach == nil {
		return nil, apperr.BadRequest("Player owner not found", err)
	}
	return team.Coach, nil
}

// ListPlayerThreads returns every player thread the caller takes part in,
// most recently active first.
func (h *Handler) ListPlayerThreads(c *gin.Context) {
	user := currentUser(c)

	summaries, err := h.Storage.ListPlayerThreads(user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]playerThreadDto, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, playerThreadSummaryDto(s, user.ID))
	}
	c.JSON(http.StatusOK, out)
}

// ThreadsAsOwner lists the active threads other managers opened about one of
// the caller's players.
func (h *Handler) ThreadsAsOwner(c *gin.Context) {
	user := currentUser(c)

	player, ok := h.bbPlayer(c)
	if !ok {
		return
	}
	summaries, err := h.Storage.ListActivePlayerThreadsAsOwner(player.ID, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]playerThreadDto, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, playerThreadSummaryDto(s, user.ID))
	}
	c.JSON(http.StatusOK, out)
}

// ThreadForPlayer returns the caller's thread with the player's owner, or
// null when none exists yet. Owners get null too; their side lives under
// as-owner.
func (h *Handler) ThreadForPlayer(c *gin.Context) {
	user := currentUser(c)

	player, ok := h.bbPlayer(c)
	if !ok {
		return
	}
	owner, err := h.playerOwner(player)
	if err != nil {
		respondError(c, err)
		return
	}
	if owner.ID == user.ID {
		c.JSON(http.StatusOK, nil)
		return
	}

	thread, err := h.Storage.FindActivePlayerThread(player.ID, owner.ID, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	if thread == nil {
		c.JSON(http.StatusOK, nil)
		return
	}

	messages, err := h.Storage.ListPlayerMessages(thread.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	// Build the response before marking read so the payload still shows
	// which messages were unread when the thread was opened.
	detail := playerThreadDetail(thread, messages, user.ID)
	if _, err := h.Storage.MarkPlayerThreadRead(thread.ID, user.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// OpenPlayerThread finds or creates the caller's thread about the player with
// its current owner. Read state is untouched.
func (h *Handler) OpenPlayerThread(c *gin.Context) {
	user := currentUser(c)

	player, ok := h.bbPlayer(c)
	if !ok {
		return
	}
	owner, err := h.playerOwner(player)
	if err != nil {
		respondError(c, err)
		return
	}
	if owner.ID == user.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot create thread for your own player"})
		return
	}

	thread, err := h.Storage.GetOrCreatePlayerThread(player.ID, owner.ID, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	messages, err := h.Storage.ListPlayerMessages(thread.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, playerThreadDetail(thread, messages, user.ID))
}

// PlayerThreadDetail returns a thread with all messages and then marks it
// read. Threads the caller is not part of look exactly like missing ones.
func (h *Handler) PlayerThreadDetail(c *gin.Context) {
	user := currentUser(c)

	thread, err := h.Storage.GetPlayerThread(c.Param("threadID"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !thread.HasParticipant(user.ID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Thread not found"})
		return
	}

	messages, err := h.Storage.ListPlayerMessages(thread.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	detail := playerThreadDetail(thread, messages, user.ID)
	if _, err := h.Storage.MarkPlayerThreadRead(thread.ID, user.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// SendPlayerMessage appends a message to a player thread and pushes a
// realtime event to the other side.
func (h *Handler) SendPlayerMessage(c *gin.Context) {
	user := currentUser(c)

	var body sendMessageRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}

	thread, err := h.Storage.GetPlayerThread(c.Param("threadID"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !thread.HasParticipant(user.ID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Thread not found"})
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

	msg, err := h.Storage.AppendPlayerMessage(thread.ID, user.ID, content)
	if err != nil {
		respondError(c, err)
		return
	}

	h.Hub.Publish(thread.OtherParticipant(user.ID), models.NewMessageEvent(
		models.EventThreadNewMessage, thread.ID, models.MessagePayload{
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

// ArchiveThread deactivates a player thread for both sides.
func (h *Handler) ArchiveThread(c *gin.Context) {
	user := currentUser(c)

	thread, err := h.Storage.GetPlayerThread(c.Param("threadID"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !thread.HasParticipant(user.ID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Thread not found"})
		return
	}
	if err := h.Storage.ArchivePlayerThread(thread.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Thread archived"})
}
