package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlayerShare makes one player visible to another manager. A player can be
// shared with the same recipient only once.
type PlayerShare struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`

	PlayerID    string `gorm:"uniqueIndex:uniq_player_share;not null" json:"playerId"`
	OwnerID     string `gorm:"index;not null" json:"ownerId"`
	RecipientID string `gorm:"uniqueIndex:uniq_player_share;not null" json:"recipientId"`

	Player    *Player `gorm:"foreignKey:PlayerID;constraint:OnDelete:CASCADE" json:"-"`
	Owner     *User   `gorm:"foreignKey:OwnerID" json:"-"`
	Recipient *User   `gorm:"foreignKey:RecipientID" json:"-"`
}

func (s *PlayerShare) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return
}
