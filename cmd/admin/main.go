package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"courtside/backend/internal/bbapi"
	"courtside/backend/internal/config"
	"courtside/backend/internal/jobs"
	"courtside/backend/internal/mailer"
	"courtside/backend/internal/secrets"
	"courtside/backend/internal/storage"
	"courtside/backend/internal/telegram"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if err := secrets.Init(cfg.EncryptionKey); err != nil {
		log.Fatalf("Failed to initialize column encryption: %v", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	storageSvc := storage.NewStorageService(db)

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <sync-rosters|remind|encrypt-keys>")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "sync-rosters":
		job := jobs.NewRosterSyncJob(storageSvc, bbapi.NewClient(cfg.BBAPIBaseURL))
		if err := job.Run(context.Background()); err != nil {
			log.Fatalf("Roster sync failed: %v", err)
		}
	case "remind":
		mail := mailer.NewService(cfg.BrevoAPIKey, cfg.EmailSender)
		notifiers := []jobs.Notifier{&mailer.Notifier{Mail: mail, AppBaseURL: cfg.AppBaseURL}}
		if cfg.TelegramBotToken != "" {
			bot, err := telegram.NewBot(cfg.TelegramBotToken, storageSvc)
			if err != nil {
				log.Fatalf("Failed to start Telegram bot: %v", err)
			}
			notifiers = append(notifiers, bot)
		}
		if err := jobs.NewReminderJob(storageSvc, notifiers...).Run(context.Background()); err != nil {
			log.Fatalf("Reminder sweep failed: %v", err)
		}
	case "encrypt-keys":
		if err := encryptKeys(db); err != nil {
			log.Fatalf("Error encrypting keys: %v", err)
		}
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

// encryptKeys migrates plaintext bb_key values to the encrypted column
// format. Values that already decrypt are left alone, so the command is safe
// to re-run.
func encryptKeys(db *gorm.DB) error {
	var rows []struct {
		ID    string
		BBKey string
	}
	if err := db.Raw("SELECT id, bb_key FROM users WHERE bb_key <> ''").Scan(&rows).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("No users with bb_key found.")
		return nil
	}

	encrypted, skipped := 0, 0
	for _, row := range rows {
		if _, err := secrets.Decrypt(row.BBKey); err == nil {
			skipped++
			continue
		}
		enc, err := secrets.Encrypt(row.BBKey)
		if err != nil {
			return err
		}
		if err := db.Exec("UPDATE users SET bb_key = ? WHERE id = ?", enc, row.ID).Error; err != nil {
			return err
		}
		encrypted++
	}
	fmt.Printf("Done. Encrypted: %d, Skipped (already encrypted): %d\n", encrypted, skipped)
	return nil
}
