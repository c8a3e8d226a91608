package storage

import (
	"errors"
	"log"
	"time"

	"courtside/backend/internal/apperr"
	"courtside/backend/internal/models"

	"gorm.io/gorm"
)

type Storage interface {
	// Users
	GetUserByID(id string) (*models.User, error)
	GetUserByLogin(loginName string) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	GetUserByTelegramChatID(chatID int64) (*models.User, error)
	SaveUser(user *models.User) error
	SearchUsers(query, excludeID string, limit int) ([]models.User, error)
	ListReminderCandidates() ([]models.User, error)
	ListAutoSyncUsers() ([]models.User, error)
	SetLastReminderSent(userID string, at time.Time) error

	// Teams
	GetTeamByID(id string) (*models.Team, error)
	GetTeamByBBID(teamID int) (*models.Team, error)
	SaveTeam(team *models.Team) error
	ListTeamsForCoach(coachID string) ([]models.Team, error)

	// Players
	GetPlayerByID(id string) (*models.Player, error)
	GetPlayerByBBID(playerID int) (*models.Player, error)
	ListPlayersByBBIDs(playerIDs []int) ([]models.Player, error)
	SavePlayer(player *models.Player) error
	ListPlayersForTeam(teamID string, includeArchived bool) ([]models.Player, error)
	ListOtherPlayers(userID string, sharedOnly bool, page, pageSize int) ([]models.Player, int64, error)
	DeactivatePlayersNotIn(teamID string, keepBBIDs []int) (int64, error)

	// Direct threads
	GetOrCreateUserThread(userID, otherID string) (*models.UserThread, error)
	GetUserThread(threadID string) (*models.UserThread, error)
	ListUserThreads(userID string) ([]UserThreadSummary, error)
	ListUserMessages(threadID string) ([]models.UserMessage, error)
	AppendUserMessage(threadID, senderID, content string) (*models.UserMessage, error)
	MarkUserThreadRead(threadID, readerID string) (int64, error)
	ArchiveUserThread(threadID string) error

	// Player threads
	GetOrCreatePlayerThread(playerID, ownerID, participantID string) (*models.PlayerThread, error)
	FindActivePlayerThread(playerID, ownerID, participantID string) (*models.PlayerThread, error)
	GetPlayerThread(threadID string) (*models.PlayerThread, error)
	ListPlayerThreads(userID string) ([]PlayerThreadSummary, error)
	ListActivePlayerThreadsAsOwner(playerID, ownerID string) ([]PlayerThreadSummary, error)
	ListPlayerMessages(threadID string) ([]models.PlayerMessage, error)
	AppendPlayerMessage(threadID, senderID, content string) (*models.PlayerMessage, error)
	MarkPlayerThreadRead(threadID, readerID string) (int64, error)
	ArchivePlayerThread(threadID string) error

	// Unread aggregation for reminders
	CountUnreadOlderThan(userID string, cutoff time.Time) (int64, error)

	// Player shares
	GetShareByID(id string) (*models.PlayerShare, error)
	FindShare(playerID, recipientID string) (*models.PlayerShare, error)
	ListSharedPlayerIDs(recipientID string) ([]string, error)
	CreateShare(share *models.PlayerShare) error
	ListSharesReceived(userID string) ([]models.PlayerShare, error)
	ListSharesSent(userID string) ([]models.PlayerShare, error)
	DeleteShare(id string) error

	// Training plans
	GetPlanForPlayer(playerID string) (*models.PlayerTrainingPlan, error)
	SavePlan(plan *models.PlayerTrainingPlan) error
	DeletePlanForPlayer(playerID string) error
}

type Service struct {
	DB *gorm.DB
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// GetUserByID loads a user by internal id.
func (s *Service) GetUserByID(id string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("User", err)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByLogin loads a user by BuzzerBeater login name.
func (s *Service) GetUserByLogin(loginName string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("login_name = ?", loginName).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("User", err)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername resolves a recipient by display username.
func (s *Service) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Recipient", err)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByTelegramChatID finds the account linked to a Telegram chat.
func (s *Service) GetUserByTelegramChatID(chatID int64) (*models.User, error) {
	var user models.User
	err := s.DB.Where("telegram_chat_id = ?", chatID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("User", err)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SaveUser persists a user in PostgreSQL.
func (s *Service) SaveUser(user *models.User) error {
	if err := s.DB.Save(user).Error; err != nil {
		log.Printf("ERROR: Failed to save user %s: %v", user.LoginName, err)
		return err
	}
	return nil
}

// SearchUsers finds users whose username matches the query, excluding the
// caller.
func (s *Service) SearchUsers(query, excludeID string, limit int) ([]models.User, error) {
	var users []models.User
	err := s.DB.Where("username ILIKE ?", "%"+query+"%").
		Where("id <> ?", excludeID).
		Order("username asc").
		Limit(limit).
		Find(&users).Error
	return users, err
}

// ListReminderCandidates returns every user who opted into unread reminders.
// Channel availability is checked by the job, not here.
func (s *Service) ListReminderCandidates() ([]models.User, error) {
	var users []models.User
	err := s.DB.Where("unread_reminder_enabled = ?", true).Find(&users).Error
	return users, err
}

// ListAutoSyncUsers returns users whose rosters the sync job should refresh.
func (s *Service) ListAutoSyncUsers() ([]models.User, error) {
	var users []models.User
	err := s.DB.Where("auto_sync_enabled = ?", true).
		Where("bb_key <> ''").
		Find(&users).Error
	return users, err
}

// SetLastReminderSent records the cooldown timestamp after a reminder went
// out. UpdateColumn keeps the write to the single column.
func (s *Service) SetLastReminderSent(userID string, at time.Time) error {
	return s.DB.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("last_unread_reminder_sent_at", at).Error
}
