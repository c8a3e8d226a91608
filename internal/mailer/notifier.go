package mailer

import (
	"context"
	"fmt"

	"courtside/backend/internal/models"
)

// VerificationEmail builds the message sent when a user starts email
// verification. verifyURL must already carry the signed token.
func VerificationEmail(to, verifyURL string) Email {
	text := fmt.Sprintf(
		"Hi,\n\n"+
			"Please verify your email to enable unread message reminders.\n"+
			"Verify link: %s\n\n"+
			"If you did not request this, you can ignore this message.",
		verifyURL)

	html := fmt.Sprintf(
		`<div style="font-family: Arial, sans-serif; padding:16px; color:#111827;">`+
			`<h2 style="margin:0 0 12px;">Verify your email</h2>`+
			`<p style="margin:0 0 16px;">Please verify your email to enable unread message reminders.</p>`+
			`<p style="margin:0 0 16px;"><a href=%q style="background:#2563eb;color:#ffffff;`+
			`text-decoration:none;padding:10px 16px;border-radius:6px;display:inline-block;">Verify email</a></p>`+
			`<p style="margin:0 0 8px; font-size:12px; color:#6b7280;">If the button does not work, copy and paste this link:</p>`+
			`<p style="margin:0 0 16px; font-size:12px;">%s</p>`+
			`<p style="margin:0; font-size:12px; color:#6b7280;">If you did not request this, you can ignore this message.</p>`+
			`</div>`,
		verifyURL, verifyURL)

	return Email{
		To:      to,
		Subject: "Verify your Courtside email",
		Text:    text,
		HTML:    html,
	}
}

// UnreadReminderEmail builds the periodic nudge about unread messages.
func UnreadReminderEmail(to string, count int64, appBaseURL string) Email {
	noun := "messages"
	if count == 1 {
		noun = "message"
	}
	text := fmt.Sprintf(
		"Hi,\n\n"+
			"You have %d unread %s waiting for you on Courtside.\n"+
			"Read them here: %s/messages\n\n"+
			"You can turn these reminders off in your settings.",
		count, noun, appBaseURL)

	return Email{
		To:      to,
		Subject: fmt.Sprintf("You have %d unread %s on Courtside", count, noun),
		Text:    text,
	}
}

// Notifier adapts the mail service to the reminder job's notifier contract.
type Notifier struct {
	Mail       *Service
	AppBaseURL string
}

func (n *Notifier) Name() string { return models.ChannelEmail }

// Available reports whether the user can be reached by email right now.
// Unverified addresses are never mailed.
func (n *Notifier) Available(user *models.User) bool {
	return n.Mail.Configured() && user.Email != "" && user.EmailVerified
}

func (n *Notifier) NotifyUnread(ctx context.Context, user *models.User, count int64) error {
	return n.Mail.Send(ctx, UnreadReminderEmail(user.Email, count, n.AppBaseURL))
}
