package storage

import (
	"errors"
	"time"

	"chatspace/backend/internal/models"

	"gorm.io/gorm"
)

// AddMembers додає користувачів до кімнати в одній транзакції.
// Інваріант "додавання учасників": ID, що вже є членами, пропускаються;
// якщо кімната приватна і серед доданих є CLIENT — відхиляється вся партія.
func (s *Service) AddMembers(roomID string, users []models.User, isPrivate bool) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return addMembersTx(tx, roomID, users, isPrivate)
	})
}

// addMembersTx — спільна логіка для AddMembers та CreateSession.
func addMembersTx(tx *gorm.DB, roomID string, users []models.User, isPrivate bool) error {
	var existing []string
	if err := tx.Model(&models.RoomMember{}).
		Where("room_id = ?", roomID).
		Pluck("user_id", &existing).Error; err != nil {
		return err
	}

	rows, err := newMemberRows(roomID, users, existing, isPrivate, time.Now())
	if err != nil {
		return err
	}
	for i := range rows {
		if err := tx.Create(&rows[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// newMemberRows будує записи членства для партії доданих користувачів.
// Інваріант: ID, що вже є членами (або повторюються в партії), пропускаються —
// результат завжди об'єднання без дублікатів; якщо кімната приватна і серед
// доданих є CLIENT, відхиляється вся партія.
func newMemberRows(roomID string, users []models.User, existing []string, isPrivate bool, now time.Time) ([]models.RoomMember, error) {
	if isPrivate {
		for _, u := range users {
			if models.IsClient(u.Role) {
				return nil, ErrClientInPrivateRoom
			}
		}
	}

	present := make(map[string]bool, len(existing))
	for _, id := range existing {
		present[id] = true
	}

	var rows []models.RoomMember
	for _, u := range users {
		if present[u.ID] {
			continue // вже учасник
		}
		rows = append(rows, models.RoomMember{
			UserID:     u.ID,
			RoomID:     roomID,
			JoinedAt:   now,
			LastReadAt: now,
		})
		present[u.ID] = true
	}
	return rows, nil
}

// RemoveMember видаляє одного учасника кімнати.
func (s *Service) RemoveMember(roomID, userID string) error {
	return s.DB.
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Delete(&models.RoomMember{}).Error
}

// GetMember повертає запис членства або nil, якщо його немає.
func (s *Service) GetMember(roomID, userID string) (*models.RoomMember, error) {
	var member models.RoomMember
	err := s.DB.
		Where("room_id = ? AND user_id = ?", roomID, userID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// GetRoomMembers повертає користувачів-учасників кімнати.
func (s *Service) GetRoomMembers(roomID string) ([]models.User, error) {
	var users []models.User
	err := s.DB.
		Joins("JOIN room_members rm ON rm.user_id = users.id").
		Where("rm.room_id = ?", roomID).
		Order("rm.joined_at asc").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// IsMember перевіряє наявність запису членства.
func (s *Service) IsMember(roomID, userID string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.RoomMember{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error
	return count > 0, err
}

// MarkRead оновлює позначку прочитання. LastReadAt монотонно не спадає
// (GREATEST), тому конкурентні виклики з різних з'єднань безпечні.
// Повертає false, якщо запису членства не існує.
func (s *Service) MarkRead(roomID, userID string, at time.Time) (bool, error) {
	result := s.DB.Model(&models.RoomMember{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Update("last_read_at", gorm.Expr("GREATEST(last_read_at, ?)", at))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CountMessagesSince рахує повідомлення кімнати, створені після after.
func (s *Service) CountMessagesSince(roomID string, after time.Time) (int64, error) {
	var count int64
	err := s.DB.Model(&models.Message{}).
		Where("room_id = ? AND created_at > ?", roomID, after).
		Count(&count).Error
	return count, err
}
