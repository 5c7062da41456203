package storage

import (
	"context"
	"encoding/json"
	"time"

	"chatspace/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Storage — контракт персистентного шару для realtime-координатора.
// Конкретна реалізація (Service) працює поверх PostgreSQL та Redis.
type Storage interface {
	// Users
	GetUserByID(userID string) (*models.User, error)
	GetUsersByIDs(userIDs []string) ([]models.User, error)
	UpdateUserRole(userID, role string) error

	// Rooms
	CreateRoom(room *models.Room) error
	GetRoomByID(roomID string) (*models.Room, error)
	FindStaleSessions(before time.Time) ([]models.Room, error)

	// Membership
	AddMembers(roomID string, users []models.User, isPrivate bool) error
	RemoveMember(roomID, userID string) error
	GetMember(roomID, userID string) (*models.RoomMember, error)
	GetRoomMembers(roomID string) ([]models.User, error)
	IsMember(roomID, userID string) (bool, error)
	MarkRead(roomID, userID string, at time.Time) (bool, error)
	CountMessagesSince(roomID string, after time.Time) (int64, error)

	// Messages
	SaveMessage(msg *models.Message) error
	FindMessageByID(messageID string) (*models.Message, error)
	DeleteMessage(messageID string) error
	GetRoomHistory(roomID string, limit int) ([]models.Message, error)

	// Audit / session lifecycle
	SaveActionLog(entry *models.ActionLog) error
	CreateSession(room *models.Room, users []models.User) error
	CloseSession(room *models.Room, actorID *string) error

	// Pub/Sub fan-out
	PublishEvent(topic string, ev models.Event) error
	SubscribeEvents() *redis.PubSub
}

// Service реалізує Storage поверх GORM (PostgreSQL) та go-redis.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// PublishEvent публікує подію в Redis Pub/Sub канал topic'а.
// Порядок подій у межах одного топіка зберігається каналом Redis.
func (s *Service) PublishEvent(topic string, ev models.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.Redis.Publish(s.Ctx, topic, payload).Err()
}

// SubscribeEvents підписується на всі топіки кімнат та персональні топіки.
func (s *Service) SubscribeEvents() *redis.PubSub {
	return s.Redis.PSubscribe(s.Ctx, "room:*", "user:*")
}
