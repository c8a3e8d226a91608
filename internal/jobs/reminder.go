package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"courtside/backend/internal/models"
)

const (
	// A user gets at most one reminder per cooldown window, across all
	// channels combined.
	reminderCooldown = 24 * time.Hour

	// Budget for delivering one user's reminder over every channel.
	perUserTimeout = 30 * time.Second

	defaultDelayMin = 60
)

// Notifier is one reminder delivery channel.
type Notifier interface {
	Name() string
	Available(user *models.User) bool
	NotifyUnread(ctx context.Context, user *models.User, count int64) error
}

// ReminderStore is the slice of storage the reminder job needs.
type ReminderStore interface {
	ListReminderCandidates() ([]models.User, error)
	CountUnreadOlderThan(userID string, cutoff time.Time) (int64, error)
	SetLastReminderSent(userID string, at time.Time) error
}

// ReminderJob nudges users about messages that sat unread longer than their
// configured delay.
type ReminderJob struct {
	Store     ReminderStore
	Notifiers []Notifier
}

func NewReminderJob(store ReminderStore, notifiers ...Notifier) *ReminderJob {
	return &ReminderJob{Store: store, Notifiers: notifiers}
}

func (j *ReminderJob) Name() string { return "unread-reminder" }

// Run sweeps every opted-in user. A failure for one user never blocks the
// rest of the sweep.
func (j *ReminderJob) Run(ctx context.Context) error {
	users, err := j.Store.ListReminderCandidates()
	if err != nil {
		return err
	}

	now := time.Now()
	for i := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := j.remindUser(ctx, &users[i], now); err != nil {
			log.Printf("ERROR: unread reminder for user %s: %v", users[i].ID, err)
		}
	}
	return nil
}

func (j *ReminderJob) remindUser(ctx context.Context, user *models.User, now time.Time) error {
	if last := user.LastUnreadReminderSentAt; last != nil && now.Sub(*last) < reminderCooldown {
		return nil
	}

	var targets []Notifier
	for _, n := range j.Notifiers {
		if user.WantsChannel(n.Name()) && n.Available(user) {
			targets = append(targets, n)
		}
	}
	if len(targets) == 0 {
		return nil
	}

	delay := user.UnreadReminderDelayMin
	if delay <= 0 {
		delay = defaultDelayMin
	}
	count, err := j.Store.CountUnreadOlderThan(user.ID, now.Add(-time.Duration(delay)*time.Minute))
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}

	userCtx, cancel := context.WithTimeout(ctx, perUserTimeout)
	defer cancel()

	delivered := 0
	for _, n := range targets {
		if err := n.NotifyUnread(userCtx, user, count); err != nil {
			log.Printf("WARNING: %s reminder to user %s failed: %v", n.Name(), user.ID, err)
			continue
		}
		delivered++
	}
	if delivered == 0 {
		return fmt.Errorf("all %d reminder channel(s) failed", len(targets))
	}

	// The cooldown timestamp is written only after a delivery succeeded, so
	// a failed attempt is retried on the next sweep.
	if err := j.Store.SetLastReminderSent(user.ID, now); err != nil {
		return err
	}
	log.Printf("INFO: reminded user %s about %d unread message(s)", user.ID, count)
	return nil
}
