package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlayerTrainingPlan stores the target skill levels a manager wants a player
// to reach. One plan per player; a nil skill carries no target.
type PlayerTrainingPlan struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	PlayerID string  `gorm:"uniqueIndex;not null" json:"playerId"`
	Player   *Player `gorm:"foreignKey:PlayerID;constraint:OnDelete:CASCADE" json:"-"`

	SkillSet `gorm:"embedded"`
}

func (p *PlayerTrainingPlan) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}
