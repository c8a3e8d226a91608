package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"courtside/backend/internal/secrets"
)

// Reminder channel names accepted in User.ReminderChannels.
const (
	ChannelEmail    = "email"
	ChannelTelegram = "telegram"
)

// User is a BuzzerBeater manager account. LoginName is the private BB login
// used for authentication; Username is the public name shown to other users.
type User struct {
	ID        string         `gorm:"primaryKey" json:"id"`
	LoginName string         `gorm:"size:100;uniqueIndex;not null" json:"-"`
	Username  string         `gorm:"size:100;index" json:"username"`
	Name      string         `gorm:"size:100" json:"name"`
	BBKey     secrets.String `gorm:"size:512" json:"-"`
	Supporter bool           `json:"supporter"`

	AutoSyncEnabled bool `gorm:"default:true" json:"autoSyncEnabled"`

	Email          string `gorm:"size:255" json:"email"`
	EmailVerified  bool   `json:"emailVerified"`
	TelegramChatID *int64 `gorm:"uniqueIndex" json:"-"`

	UnreadReminderEnabled    bool           `json:"unreadReminderEnabled"`
	UnreadReminderDelayMin   int            `gorm:"default:60" json:"unreadReminderDelayMin"`
	LastUnreadReminderSentAt *time.Time     `json:"-"`
	ReminderChannels         pq.StringArray `gorm:"type:text[]" json:"reminderChannels"`
}

// BeforeCreate fills the uuid primary key and default reminder settings.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.UnreadReminderDelayMin == 0 {
		u.UnreadReminderDelayMin = 60
	}
	if len(u.ReminderChannels) == 0 {
		u.ReminderChannels = pq.StringArray{ChannelEmail}
	}
	return
}

// DisplayName returns the public username, falling back to the login name for
// accounts that never exposed one.
func (u *User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return u.LoginName
}

// WantsChannel reports whether the user opted into the given reminder channel.
func (u *User) WantsChannel(name string) bool {
	channels := u.ReminderChannels
	if len(channels) == 0 {
		channels = pq.StringArray{ChannelEmail}
	}
	for _, c := range channels {
		if c == name {
			return true
		}
	}
	return false
}
