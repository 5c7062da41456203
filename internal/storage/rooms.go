package storage

import (
	"errors"
	"log"
	"strings"
	"time"

	"chatspace/backend/internal/models"

	"gorm.io/gorm"
)

// GetUserByID повертає користувача за його ID.
func (s *Service) GetUserByID(userID string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUsersByIDs повертає всіх знайдених користувачів із заданого списку ID.
func (s *Service) GetUsersByIDs(userIDs []string) ([]models.User, error) {
	var users []models.User
	if len(userIDs) == 0 {
		return users, nil
	}
	if err := s.DB.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUserRole змінює роль користувача (admin CLI).
func (s *Service) UpdateUserRole(userID, role string) error {
	result := s.DB.Model(&models.User{}).
		Where("id = ?", userID).
		Update("role", models.NormalizeRole(role))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// CreateRoom зберігає нову кімнату в PostgreSQL.
func (s *Service) CreateRoom(room *models.Room) error {
	err := s.DB.Create(room).Error
	if err != nil && isDuplicateKeyError(err) {
		return ErrDuplicateRoomName
	}
	return err
}

// GetRoomByID повертає кімнату за ID або ErrRoomNotFound.
func (s *Service) GetRoomByID(roomID string) (*models.Room, error) {
	var room models.Room
	err := s.DB.First(&room, "id = ?", roomID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		log.Printf("ERROR: Failed to get room %s: %v", roomID, err)
		return nil, err
	}
	return &room, nil
}

// FindStaleSessions повертає приватні кімнати, неактивні з моменту before.
// UpdatedAt кімнати — це її "годинник активності": він оновлюється при
// кожному збереженому повідомленні.
func (s *Service) FindStaleSessions(before time.Time) ([]models.Room, error) {
	var rooms []models.Room
	err := s.DB.Where("is_private = ? AND updated_at < ?", true, before).
		Find(&rooms).Error
	if err != nil {
		log.Printf("ERROR: Failed to find stale sessions: %v", err)
		return nil, err
	}
	return rooms, nil
}

// isDuplicateKeyError розпізнає порушення унікального індексу Postgres.
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "duplicate key value")
}
