package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"chatspace/backend/internal/chathub"
	"chatspace/backend/internal/config"
	"chatspace/backend/internal/models"
	"chatspace/backend/internal/storage"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	// Redis потрібен для broadcast'у privateSessionClosed при закритті сесій.
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})

	s := storage.NewStorageService(db, rdb)
	sessions := chathub.NewSessionService(s, chathub.NewDispatcher(s))

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		fmt.Println("  sweep <hours>           close private sessions idle longer than <hours>")
		fmt.Println("  close <room_id> <admin_id>  close one private session")
		fmt.Println("  role <user_id> <role>   set a user's role (CLIENT|MANAGER|ADMIN)")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "sweep":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin sweep <hours>")
			os.Exit(1)
		}
		hours, err := strconv.Atoi(os.Args[2])
		if err != nil || hours < 1 {
			fmt.Println("Invalid hours. Please provide a positive integer.")
			os.Exit(1)
		}
		reaper := chathub.NewReaper(s, sessions, config.ReaperInterval, time.Duration(hours)*time.Hour)
		closed := reaper.Sweep()
		fmt.Printf("Closed %d inactive session(s).\n", closed)

	case "close":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin close <room_id> <admin_id>")
			os.Exit(1)
		}
		roomID, adminID := os.Args[2], os.Args[3]
		if err := sessions.Close(roomID, &adminID); err != nil {
			log.Fatalf("Error closing session: %v", err)
		}
		fmt.Printf("Session %s has been closed.\n", roomID)

	case "role":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin role <user_id> <role>")
			os.Exit(1)
		}
		userID, role := os.Args[2], models.NormalizeRole(os.Args[3])
		switch role {
		case models.RoleClient, models.RoleManager, models.RoleAdmin:
		default:
			fmt.Println("Invalid role. Use CLIENT, MANAGER or ADMIN.")
			os.Exit(1)
		}
		if err := s.UpdateUserRole(userID, role); err != nil {
			log.Fatalf("Error updating role: %v", err)
		}
		entry := models.ActionLog{
			Action:   models.AuditActionRoleChanged,
			TargetID: &userID,
			Details:  fmt.Sprintf("role set to %s", role),
		}
		if err := s.SaveActionLog(&entry); err != nil {
			log.Fatalf("Error writing audit log: %v", err)
		}
		fmt.Printf("User %s role changed to %s.\n", userID, role)

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}
