package storage

import (
	"errors"
	"log"
	"time"

	"courtside/backend/internal/apperr"
	"courtside/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserThreadSummary is one row of the direct-message inbox. The unread count
// is recomputed from message rows on every call, never cached.
type UserThreadSummary struct {
	Thread      models.UserThread
	LastMessage *models.UserMessage
	UnreadCount int64
}

// PlayerThreadSummary is one row of the player-thread inbox.
type PlayerThreadSummary struct {
	Thread      models.PlayerThread
	LastMessage *models.PlayerMessage
	UnreadCount int64
}

// GetOrCreateUserThread returns the active thread for the pair, creating it
// if none exists. Concurrent creators converge on the partial unique index:
// the losing insert is a no-op and both callers fetch the surviving row.
func (s *Service) GetOrCreateUserThread(userID, otherID string) (*models.UserThread, error) {
	candidate := models.NewUserThread(userID, otherID)
	if err := s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(candidate).Error; err != nil {
		log.Printf("ERROR: Failed to create thread for pair (%s, %s): %v", candidate.UserAID, candidate.UserBID, err)
		return nil, err
	}
	var thread models.UserThread
	err := s.DB.Preload("UserA").Preload("UserB").
		Where("user_a_id = ? AND user_b_id = ?", candidate.UserAID, candidate.UserBID).
		Where("is_active = ?", true).
		First(&thread).Error
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

// GetUserThread loads a direct thread by id with both participants.
func (s *Service) GetUserThread(threadID string) (*models.UserThread, error) {
	var thread models.UserThread
	err := s.DB.Preload("UserA").Preload("UserB").
		Where("id = ?", threadID).
		First(&thread).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Thread", err)
	}
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

// ListUserThreads returns the user's direct threads ordered by last activity,
// newest first, each with its latest message and unread count.
func (s *Service) ListUserThreads(userID string) ([]UserThreadSummary, error) {
	var threads []models.UserThread
	err := s.DB.Preload("UserA").Preload("UserB").
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("updated_at desc").
		Find(&threads).Error
	if err != nil {
		return nil, err
	}

	out := make([]UserThreadSummary, 0, len(threads))
	for _, thread := range threads {
		sum := UserThreadSummary{Thread: thread}

		var last models.UserMessage
		err := s.DB.Where("thread_id = ?", thread.ID).
			Order("created_at desc").
			First(&last).Error
		if err == nil {
			sum.LastMessage = &last
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		err = s.DB.Model(&models.UserMessage{}).
			Where("thread_id = ? AND sender_id <> ? AND read_at IS NULL", thread.ID, userID).
			Count(&sum.UnreadCount).Error
		if err != nil {
			return nil, err
		}

		out = append(out, sum)
	}
	return out, nil
}

// ListUserMessages returns a thread's messages in creation order with senders
// attached.
func (s *Service) ListUserMessages(threadID string) ([]models.UserMessage, error) {
	var messages []models.UserMessage
	err := s.DB.Preload("Sender").
		Where("thread_id = ?", threadID).
		Order("created_at asc").
		Find(&messages).Error
	return messages, err
}

// AppendUserMessage writes a message and bumps the thread's last-activity
// timestamp to the message's creation time in the same transaction.
func (s *Service) AppendUserMessage(threadID, senderID, content string) (*models.UserMessage, error) {
	msg := &models.UserMessage{ThreadID: threadID, SenderID: senderID, Content: content}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&models.UserThread{}).
			Where("id = ?", threadID).
			UpdateColumn("updated_at", msg.CreatedAt).Error
	})
	if err != nil {
		log.Printf("ERROR: Failed to append message to thread %s: %v", threadID, err)
		return nil, err
	}
	return msg, nil
}

// MarkUserThreadRead stamps read_at on every unread message not sent by the
// reader and reports how many were marked. Repeat calls are no-ops.
func (s *Service) MarkUserThreadRead(threadID, readerID string) (int64, error) {
	res := s.DB.Model(&models.UserMessage{}).
		Where("thread_id = ? AND sender_id <> ? AND read_at IS NULL", threadID, readerID).
		Update("read_at", gorm.Expr("NOW()"))
	return res.RowsAffected, res.Error
}

// ArchiveUserThread deactivates a thread without touching its last-activity
// timestamp. Rows are never deleted.
func (s *Service) ArchiveUserThread(threadID string) error {
	return s.DB.Model(&models.UserThread{}).
		Where("id = ?", threadID).
		UpdateColumn("is_active", false).Error
}

// GetOrCreatePlayerThread returns the active thread for the triple, creating
// it if none exists. Same convergence strategy as direct threads.
func (s *Service) GetOrCreatePlayerThread(playerID, ownerID, participantID string) (*models.PlayerThread, error) {
	candidate := &models.PlayerThread{
		PlayerID:      playerID,
		OwnerID:       ownerID,
		ParticipantID: participantID,
		IsActive:      true,
	}
	if err := s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(candidate).Error; err != nil {
		log.Printf("ERROR: Failed to create player thread for player %s: %v", playerID, err)
		return nil, err
	}
	return s.FindActivePlayerThread(playerID, ownerID, participantID)
}

// FindActivePlayerThread returns the active thread for the exact triple, or
// nil when there is none.
func (s *Service) FindActivePlayerThread(playerID, ownerID, participantID string) (*models.PlayerThread, error) {
	var thread models.PlayerThread
	err := s.DB.Preload("Player").Preload("Owner").Preload("Participant").
		Where("player_id = ? AND owner_id = ? AND participant_id = ?", playerID, ownerID, participantID).
		Where("is_active = ?", true).
		First(&thread).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

// GetPlayerThread loads a player thread by id with its player and both
// parties.
func (s *Service) GetPlayerThread(threadID string) (*models.PlayerThread, error) {
	var thread models.PlayerThread
	err := s.DB.Preload("Player").Preload("Owner").Preload("Participant").
		Where("id = ?", threadID).
		First(&thread).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Thread", err)
	}
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

// ListPlayerThreads returns player threads where the user is owner or
// participant, ordered by last activity, newest first.
func (s *Service) ListPlayerThreads(userID string) ([]PlayerThreadSummary, error) {
	var threads []models.PlayerThread
	err := s.DB.Preload("Player").Preload("Owner").Preload("Participant").
		Where("owner_id = ? OR participant_id = ?", userID, userID).
		Order("updated_at desc").
		Find(&threads).Error
	if err != nil {
		return nil, err
	}
	return s.playerThreadSummaries(threads, userID)
}

// ListActivePlayerThreadsAsOwner returns a player's active threads where the
// user is the owner. The owner may hold one conversation per interested
// manager.
func (s *Service) ListActivePlayerThreadsAsOwner(playerID, ownerID string) ([]PlayerThreadSummary, error) {
	var threads []models.PlayerThread
	err := s.DB.Preload("Player").Preload("Owner").Preload("Participant").
		Where("player_id = ? AND owner_id = ?", playerID, ownerID).
		Where("is_active = ?", true).
		Order("updated_at desc").
		Find(&threads).Error
	if err != nil {
		return nil, err
	}
	return s.playerThreadSummaries(threads, ownerID)
}

func (s *Service) playerThreadSummaries(threads []models.PlayerThread, userID string) ([]PlayerThreadSummary, error) {
	out := make([]PlayerThreadSummary, 0, len(threads))
	for _, thread := range threads {
		sum := PlayerThreadSummary{Thread: thread}

		var last models.PlayerMessage
		err := s.DB.Where("thread_id = ?", thread.ID).
			Order("created_at desc").
			First(&last).Error
		if err == nil {
			sum.LastMessage = &last
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		err = s.DB.Model(&models.PlayerMessage{}).
			Where("thread_id = ? AND sender_id <> ? AND read_at IS NULL", thread.ID, userID).
			Count(&sum.UnreadCount).Error
		if err != nil {
			return nil, err
		}

		out = append(out, sum)
	}
	return out, nil
}

// ListPlayerMessages returns a player thread's messages in creation order
// with senders attached.
func (s *Service) ListPlayerMessages(threadID string) ([]models.PlayerMessage, error) {
	var messages []models.PlayerMessage
	err := s.DB.Preload("Sender").
		Where("thread_id = ?", threadID).
		Order("created_at asc").
		Find(&messages).Error
	return messages, err
}

// AppendPlayerMessage mirrors AppendUserMessage for player threads.
func (s *Service) AppendPlayerMessage(threadID, senderID, content string) (*models.PlayerMessage, error) {
	msg := &models.PlayerMessage{ThreadID: threadID, SenderID: senderID, Content: content}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&models.PlayerThread{}).
			Where("id = ?", threadID).
			UpdateColumn("updated_at", msg.CreatedAt).Error
	})
	if err != nil {
		log.Printf("ERROR: Failed to append message to player thread %s: %v", threadID, err)
		return nil, err
	}
	return msg, nil
}

// MarkPlayerThreadRead mirrors MarkUserThreadRead for player threads.
func (s *Service) MarkPlayerThreadRead(threadID, readerID string) (int64, error) {
	res := s.DB.Model(&models.PlayerMessage{}).
		Where("thread_id = ? AND sender_id <> ? AND read_at IS NULL", threadID, readerID).
		Update("read_at", gorm.Expr("NOW()"))
	return res.RowsAffected, res.Error
}

// ArchivePlayerThread deactivates a player thread.
func (s *Service) ArchivePlayerThread(threadID string) error {
	return s.DB.Model(&models.PlayerThread{}).
		Where("id = ?", threadID).
		UpdateColumn("is_active", false).Error
}

// CountUnreadOlderThan counts unread messages addressed to the user, across
// both thread kinds, created before the cutoff. Archived conversations do not
// nag.
func (s *Service) CountUnreadOlderThan(userID string, cutoff time.Time) (int64, error) {
	var direct int64
	err := s.DB.Model(&models.UserMessage{}).
		Joins("JOIN user_threads ON user_threads.id = user_messages.thread_id").
		Where("user_threads.is_active = ?", true).
		Where("user_threads.user_a_id = ? OR user_threads.user_b_id = ?", userID, userID).
		Where("user_messages.sender_id <> ?", userID).
		Where("user_messages.read_at IS NULL").
		Where("user_messages.created_at < ?", cutoff).
		Count(&direct).Error
	if err != nil {
		return 0, err
	}

	var subject int64
	err = s.DB.Model(&models.PlayerMessage{}).
		Joins("JOIN player_threads ON player_threads.id = player_messages.thread_id").
		Where("player_threads.is_active = ?", true).
		Where("player_threads.owner_id = ? OR player_threads.participant_id = ?", userID, userID).
		Where("player_messages.sender_id <> ?", userID).
		Where("player_messages.read_at IS NULL").
		Where("player_messages.created_at < ?", cutoff).
		Count(&subject).Error
	if err != nil {
		return 0, err
	}

	return direct + subject, nil
}
