package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"chatspace/backend/internal/api/handler"
	"chatspace/backend/internal/chathub"
	"chatspace/backend/internal/config"
	"chatspace/backend/internal/models"
	"chatspace/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client) {
	// 1. PostgreSQL
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	// 2. Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	// Перевірка з'єднання Redis
	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	// 3. Міграції (створення таблиць)
	err = db.AutoMigrate(
		&models.User{},
		&models.Room{},
		&models.RoomMember{},
		&models.Message{},
		&models.ActionLog{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting Chatspace Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()

	// 1. Ініціалізація залежностей
	db, rdb := setupDependencies(cfg)
	s := storage.NewStorageService(db, rdb)

	// 2. Композиція координатора: диспетчер → сервіси → хаб
	dispatcher := chathub.NewDispatcher(s)
	guard := chathub.NewGuard(s)
	sessions := chathub.NewSessionService(s, dispatcher)
	reads := chathub.NewReadTracker(s, dispatcher)
	hub := chathub.NewManagerService(s, guard, sessions, reads, dispatcher)
	reaper := chathub.NewReaper(s, sessions, config.ReaperInterval, config.SessionIdleThreshold)

	// 3. Запуск основних Goroutines
	go hub.Run()
	go reaper.Run(context.Background())

	// 4. Налаштування Gin та роутингу
	r := gin.Default()
	h := handler.NewHandler(hub, guard, s, cfg)

	r.GET("/healthz", h.Healthz)
	r.POST("/auth/token", h.IssueToken)
	r.GET("/ws", h.ServeWebSocket)
	r.GET("/rooms/:id/history", h.GetRoomHistory)

	// Запуск HTTP-сервера
	server := &http.Server{
		Addr:           cfg.HTTPAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
