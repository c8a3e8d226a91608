package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserMessage is one message inside a direct thread. CreatedAt is immutable
// and defines the thread's order. ReadAt is null until the recipient opens the
// thread; it is never set for the sender's own messages.
type UserMessage struct {
	ID        string     `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	ReadAt    *time.Time `json:"readAt"`

	ThreadID string      `gorm:"index;not null" json:"threadId"`
	SenderID string      `gorm:"index;not null" json:"senderId"`
	Thread   *UserThread `gorm:"foreignKey:ThreadID;constraint:OnDelete:CASCADE" json:"-"`
	Sender   *User       `gorm:"foreignKey:SenderID" json:"-"`
}

func (m *UserMessage) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}

// PlayerMessage is one message inside a player thread. Same read semantics as
// UserMessage.
type PlayerMessage struct {
	ID        string     `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	ReadAt    *time.Time `json:"readAt"`

	ThreadID string        `gorm:"index;not null" json:"threadId"`
	SenderID string        `gorm:"index;not null" json:"senderId"`
	Thread   *PlayerThread `gorm:"foreignKey:ThreadID;constraint:OnDelete:CASCADE" json:"-"`
	Sender   *User         `gorm:"foreignKey:SenderID" json:"-"`
}

func (m *PlayerMessage) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}
