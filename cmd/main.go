package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"courtside/backend/internal/api/handler"
	"courtside/backend/internal/auth"
	"courtside/backend/internal/bbapi"
	"courtside/backend/internal/chathub"
	"courtside/backend/internal/config"
	"courtside/backend/internal/jobs"
	"courtside/backend/internal/mailer"
	"courtside/backend/internal/models"
	"courtside/backend/internal/secrets"
	"courtside/backend/internal/storage"
	"courtside/backend/internal/telegram"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	// Redis is optional; without it realtime events stay in-process.
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Fatalf("Failed to connect Redis: %v", err)
		}
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.Player{},
		&models.PlayerShare{},
		&models.PlayerTrainingPlan{},
		&models.UserThread{},
		&models.UserMessage{},
		&models.PlayerThread{},
		&models.PlayerMessage{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database connection established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting Courtside Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()

	if cfg.SecretKey == "" {
		log.Fatal("SECRET_KEY is not set")
	}
	if err := secrets.Init(cfg.EncryptionKey); err != nil {
		log.Fatalf("Failed to initialize column encryption: %v", err)
	}

	db, rdb := setupDependencies(cfg)
	s := storage.NewStorageService(db)

	ctx := context.Background()

	hub := chathub.NewHub(rdb)
	go hub.Run(ctx)

	tokens := auth.NewManager(cfg.SecretKey)
	mail := mailer.NewService(cfg.BrevoAPIKey, cfg.EmailSender)
	bb := bbapi.NewClient(cfg.BBAPIBaseURL)

	var bot *telegram.Bot
	if cfg.TelegramBotToken != "" {
		var err error
		bot, err = telegram.NewBot(cfg.TelegramBotToken, s)
		if err != nil {
			log.Fatalf("Failed to start Telegram bot: %v", err)
		}
		go bot.Run(ctx)
	}

	syncJob := jobs.NewRosterSyncJob(s, bb)

	notifiers := []jobs.Notifier{&mailer.Notifier{Mail: mail, AppBaseURL: cfg.AppBaseURL}}
	if bot != nil {
		notifiers = append(notifiers, bot)
	}
	scheduler := jobs.NewScheduler()
	if err := scheduler.Add(cfg.ReminderCron, jobs.NewReminderJob(s, notifiers...)); err != nil {
		log.Fatalf("Failed to schedule reminder job: %v", err)
	}
	if err := scheduler.Add(cfg.RosterSyncCron, syncJob); err != nil {
		log.Fatalf("Failed to schedule roster sync: %v", err)
	}
	scheduler.Start(ctx)

	r := gin.Default()
	h := &handler.Handler{
		Storage: s,
		Hub:     hub,
		Redis:   rdb,
		Tokens:  tokens,
		Mail:    mail,
		BB:      bb,
		Bot:     bot,
		Sync:    syncJob,
		Cfg:     cfg,
	}
	h.RegisterRoutes(r)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
