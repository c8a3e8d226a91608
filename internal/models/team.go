package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TeamType string

const (
	TeamMain   TeamType = "MAIN"
	TeamUtopia TeamType = "UTOPIA"
)

// Team is one of a manager's BuzzerBeater teams. TeamID is the BB-side id;
// ID is the local uuid other tables reference.
type Team struct {
	ID        string   `gorm:"primaryKey" json:"id"`
	TeamID    int      `gorm:"uniqueIndex;not null" json:"teamId"`
	Name      string   `gorm:"size:100;not null" json:"name"`
	ShortName string   `gorm:"size:20;not null" json:"shortName"`
	TeamType  TeamType `gorm:"size:20;not null" json:"teamType"`

	CreatedDate time.Time `gorm:"autoCreateTime" json:"createdDate"`

	LeagueID    *int   `json:"leagueId"`
	LeagueName  string `gorm:"size:100" json:"leagueName"`
	LeagueLevel *int   `json:"leagueLevel"`

	CountryID   *int   `json:"countryId"`
	CountryName string `gorm:"size:50" json:"countryName"`

	RivalID   *int   `json:"rivalId"`
	RivalName string `gorm:"size:100" json:"rivalName"`

	CoachID string `gorm:"index;not null" json:"coachId"`
	Coach   *User  `gorm:"foreignKey:CoachID" json:"-"`
}

func (t *Team) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return
}
