package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserThread is a direct-message thread between two users. The pair is stored
// ordered (UserAID < UserBID) so both directions address the same row, and the
// partial unique index allows at most one active thread per pair. UpdatedAt is
// the thread's last-activity timestamp: it is bumped to the creation time of
// each appended message and never touched otherwise.
type UserThread struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	IsActive  bool      `gorm:"default:true" json:"isActive"`

	UserAID string `gorm:"index:uniq_user_thread,unique,where:is_active;not null" json:"userAId"`
	UserBID string `gorm:"index:uniq_user_thread,unique;not null" json:"userBId"`

	UserA *User `gorm:"foreignKey:UserAID" json:"-"`
	UserB *User `gorm:"foreignKey:UserBID" json:"-"`
}

// NewUserThread builds the canonical row for a direct pair. Participants are
// ordered by id so getOrCreate(A, B) and getOrCreate(B, A) hit the same row.
func NewUserThread(userID, otherID string) *UserThread {
	a, b := userID, otherID
	if b < a {
		a, b = b, a
	}
	return &UserThread{UserAID: a, UserBID: b, IsActive: true}
}

func (t *UserThread) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = time.Now()
	}
	return
}

// HasParticipant reports whether the user is one of the two parties.
func (t *UserThread) HasParticipant(userID string) bool {
	return t.UserAID == userID || t.UserBID == userID
}

// OtherParticipant returns the counterpart of the given user.
func (t *UserThread) OtherParticipant(userID string) string {
	if t.UserAID == userID {
		return t.UserBID
	}
	return t.UserAID
}

// OtherUser returns the loaded counterpart record, if participants were
// preloaded.
func (t *UserThread) OtherUser(userID string) *User {
	if t.UserAID == userID {
		return t.UserB
	}
	return t.UserA
}

// PlayerThread is a conversation about one player between the player's owner
// (the coach of the player's team when the thread was opened) and another
// manager. At most one active thread may exist per triple.
type PlayerThread struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	IsActive  bool      `gorm:"default:true" json:"isActive"`

	PlayerID      string `gorm:"index:uniq_player_thread,unique,where:is_active;not null" json:"playerId"`
	OwnerID       string `gorm:"index:uniq_player_thread,unique;not null" json:"ownerId"`
	ParticipantID string `gorm:"index:uniq_player_thread,unique;not null" json:"participantId"`

	Player      *Player `gorm:"foreignKey:PlayerID;constraint:OnDelete:CASCADE" json:"-"`
	Owner       *User   `gorm:"foreignKey:OwnerID" json:"-"`
	Participant *User   `gorm:"foreignKey:ParticipantID" json:"-"`
}

func (t *PlayerThread) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = time.Now()
	}
	return
}

func (t *PlayerThread) HasParticipant(userID string) bool {
	return t.OwnerID == userID || t.ParticipantID == userID
}

func (t *PlayerThread) OtherParticipant(userID string) string {
	if t.OwnerID == userID {
		return t.ParticipantID
	}
	return t.OwnerID
}
