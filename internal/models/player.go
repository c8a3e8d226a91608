package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SkillSet holds the thirteen trainable BuzzerBeater skills. A nil entry means
// the value is unknown (roster feeds omit skills for non-owned teams) or, on a
// training plan, that no target is set for that skill.
type SkillSet struct {
	JumpShot       *int `json:"jumpShot"`
	JumpRange      *int `json:"jumpRange"`
	OutsideDefense *int `json:"outsideDefense"`
	Handling       *int `json:"handling"`
	Driving        *int `json:"driving"`
	Passing        *int `json:"passing"`
	InsideShot     *int `json:"insideShot"`
	InsideDefense  *int `json:"insideDefense"`
	Rebounding     *int `json:"rebounding"`
	ShotBlocking   *int `json:"shotBlocking"`
	Stamina        *int `json:"stamina"`
	FreeThrows     *int `json:"freeThrows"`
	Experience     *int `json:"experience"`
}

// Player mirrors a BuzzerBeater roster entry. PlayerID is the BB-side id.
// Players that leave a synced roster are marked inactive, never deleted.
type Player struct {
	ID       string `gorm:"primaryKey" json:"id"`
	PlayerID int    `gorm:"uniqueIndex;not null" json:"playerId"`

	Name     string `gorm:"size:100;not null" json:"name"`
	Country  string `gorm:"size:50" json:"country"`
	TeamName string `gorm:"size:100" json:"teamName"`

	Age          *int   `json:"age"`
	Height       int    `json:"height"`
	Potential    int    `json:"potential"`
	GameShape    int    `json:"gameShape"`
	Salary       *int   `json:"salary"`
	DMI          *int   `json:"dmi"`
	BestPosition string `gorm:"size:10" json:"bestPosition"`
	Active       bool   `gorm:"default:true" json:"active"`

	SkillSet `gorm:"embedded"`

	CurrentTeamID *string `gorm:"index" json:"currentTeamId"`
	CurrentTeam   *Team   `gorm:"foreignKey:CurrentTeamID" json:"-"`
}

func (p *Player) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}
