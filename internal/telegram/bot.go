// Package telegram links Courtside accounts to Telegram chats and delivers
// unread message reminders through the bot.
package telegram

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"courtside/backend/internal/models"
	"courtside/backend/internal/storage"
)

const (
	updateTimeout = 60 // long-poll seconds
	linkTokenTTL  = 15 * time.Minute
)

type linkToken struct {
	loginName string
	expires   time.Time
}

// Bot consumes Telegram updates for account linking and doubles as the
// telegram reminder channel.
type Bot struct {
	api     *tgbotapi.BotAPI
	storage storage.Storage

	mu     sync.Mutex
	tokens map[string]linkToken
}

func NewBot(token string, s storage.Storage) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	api.Debug = false
	log.Printf("INFO: telegram bot authorized as @%s", api.Self.UserName)

	return &Bot{api: api, storage: s, tokens: make(map[string]linkToken)}, nil
}

// IssueLinkToken mints a one-time token for the t.me deep link. Telegram caps
// the /start payload at 64 characters, too short for a signed claim, so the
// token is an opaque handle into process memory.
func (b *Bot) IssueLinkToken(loginName string) string {
	token := rand.Text()

	b.mu.Lock()
	defer b.mu.Unlock()
	now := time.Now()
	for t, lt := range b.tokens {
		if now.After(lt.expires) {
			delete(b.tokens, t)
		}
	}
	b.tokens[token] = linkToken{loginName: loginName, expires: now.Add(linkTokenTTL)}
	return token
}

// consumeLinkToken redeems a token. Valid or not, it is gone afterwards.
func (b *Bot) consumeLinkToken(token string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	lt, ok := b.tokens[token]
	if !ok {
		return "", false
	}
	delete(b.tokens, token)
	if time.Now().After(lt.expires) {
		return "", false
	}
	return lt.loginName, true
}

// Username returns the bot account name used to build deep links.
func (b *Bot) Username() string {
	return b.api.Self.UserName
}

// Run consumes updates until the context is canceled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = updateTimeout
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				b.handleMessage(update.Message)
			}
		}
	}
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	if !msg.IsCommand() {
		b.reply(msg.Chat.ID, "Open your Courtside settings and use the link there to connect this chat.")
		return
	}

	switch msg.Command() {
	case "start":
		token := strings.TrimSpace(msg.CommandArguments())
		if token == "" {
			b.reply(msg.Chat.ID, "Hi! Link your Courtside account from the web app settings to receive unread message reminders here.")
			return
		}
		b.linkAccount(msg.Chat.ID, token)
	case "unlink":
		b.unlinkAccount(msg.Chat.ID)
	default:
		b.reply(msg.Chat.ID, "Unknown command. Available: /start, /unlink.")
	}
}

// linkAccount redeems a link token and binds the chat to the account. A chat
// already bound elsewhere is moved, not duplicated.
func (b *Bot) linkAccount(chatID int64, token string) {
	loginName, ok := b.consumeLinkToken(token)
	if !ok {
		b.reply(chatID, "This link is invalid or has expired. Generate a new one from your Courtside settings.")
		return
	}

	user, err := b.storage.GetUserByLogin(loginName)
	if err != nil {
		log.Printf("ERROR: telegram link for unknown login %s: %v", loginName, err)
		b.reply(chatID, "This link is invalid or has expired. Generate a new one from your Courtside settings.")
		return
	}

	if existing, err := b.storage.GetUserByTelegramChatID(chatID); err == nil && existing.ID != user.ID {
		existing.TelegramChatID = nil
		if err := b.storage.SaveUser(existing); err != nil {
			log.Printf("ERROR: Failed to detach telegram chat %d from %s: %v", chatID, existing.LoginName, err)
			b.reply(chatID, "Something went wrong, please try again later.")
			return
		}
	}

	user.TelegramChatID = &chatID
	if err := b.storage.SaveUser(user); err != nil {
		log.Printf("ERROR: Failed to link telegram chat %d to %s: %v", chatID, loginName, err)
		b.reply(chatID, "Something went wrong, please try again later.")
		return
	}

	log.Printf("INFO: telegram chat %d linked to user %s", chatID, loginName)
	b.reply(chatID, fmt.Sprintf("Linked to Courtside account %s. You will receive unread message reminders here.", user.DisplayName()))
}

func (b *Bot) unlinkAccount(chatID int64) {
	user, err := b.storage.GetUserByTelegramChatID(chatID)
	if err != nil {
		b.reply(chatID, "This Telegram account is not linked to Courtside.")
		return
	}

	user.TelegramChatID = nil
	if err := b.storage.SaveUser(user); err != nil {
		log.Printf("ERROR: Failed to unlink telegram chat %d: %v", chatID, err)
		b.reply(chatID, "Something went wrong, please try again later.")
		return
	}
	b.reply(chatID, "Unlinked. You will no longer receive reminders here.")
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("ERROR: telegram send to chat %d failed: %v", chatID, err)
	}
}

// Name identifies the reminder channel this bot serves.
func (b *Bot) Name() string { return models.ChannelTelegram }

// Available reports whether the user has a linked chat to notify.
func (b *Bot) Available(user *models.User) bool {
	return user.TelegramChatID != nil
}

// NotifyUnread sends the unread reminder to the user's linked chat. The bot
// API has no request context, so ctx only gates the call site.
func (b *Bot) NotifyUnread(ctx context.Context, user *models.User, count int64) error {
	if user.TelegramChatID == nil {
		return fmt.Errorf("user %s has no linked telegram chat", user.ID)
	}
	noun := "messages"
	if count == 1 {
		noun = "message"
	}
	text := fmt.Sprintf("You have %d unread %s on Courtside. Open the app to read them.", count, noun)
	_, err := b.api.Send(tgbotapi.NewMessage(*user.TelegramChatID, text))
	return err
}
