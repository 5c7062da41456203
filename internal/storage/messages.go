package storage

import (
	"errors"
	"fmt"
	"log"
	"time"

	"chatspace/backend/internal/models"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// SaveMessage зберігає повідомлення та оновлює UpdatedAt кімнати в одній
// транзакції. Оновлення UpdatedAt живить годинник активності reaper'а.
func (s *Service) SaveMessage(msg *models.Message) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			log.Printf("ERROR: Failed to save message for room %s: %v", msg.RoomID, err)
			return err
		}
		result := tx.Model(&models.Room{}).
			Where("id = ?", msg.RoomID).
			Update("updated_at", time.Now())
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrRoomNotFound
		}
		return nil
	})
}

// FindMessageByID повертає повідомлення або nil, якщо його не знайдено.
func (s *Service) FindMessageByID(messageID string) (*models.Message, error) {
	var msg models.Message
	err := s.DB.First(&msg, "id = ?", messageID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// DeleteMessage видаляє повідомлення за ID.
func (s *Service) DeleteMessage(messageID string) error {
	return s.DB.Delete(&models.Message{}, "id = ?", messageID).Error
}

// GetRoomHistory повертає останні повідомлення кімнати у хронологічному порядку.
func (s *Service) GetRoomHistory(roomID string, limit int) ([]models.Message, error) {
	var history []models.Message
	query := s.DB.Where("room_id = ?", roomID).Order("created_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&history).Error; err != nil {
		log.Printf("ERROR: Failed to get history for room %s: %v", roomID, err)
		return nil, err
	}
	// Розвертаємо у порядок зростання для клієнта
	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}
	return history, nil
}

// SaveActionLog додає запис аудиту.
func (s *Service) SaveActionLog(entry *models.ActionLog) error {
	if err := s.DB.Create(entry).Error; err != nil {
		log.Printf("ERROR: Failed to save action log (%s): %v", entry.Action, err)
		return err
	}
	return nil
}

// CreateSession створює приватну кімнату та додає учасників однією
// транзакцією: часткова сесія (кімната без учасників) неможлива.
func (s *Service) CreateSession(room *models.Room, users []models.User) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(room).Error; err != nil {
			if isDuplicateKeyError(err) {
				return ErrDuplicateRoomName
			}
			return err
		}
		return addMembersTx(tx, room.ID, users, room.IsPrivate)
	})
}

// CloseSession атомарно закриває приватну сесію: спочатку пишеться запис
// аудиту CLOSE_PRIVATE_SESSION (без RoomID — він має пережити видалення
// кімнати; сам ідентифікатор фіксується в Details), потім видаляються
// roomID-scoped записи аудиту, учасники, повідомлення і сама кімната.
// Будь-яка помилка відкочує транзакцію повністю.
func (s *Service) CloseSession(room *models.Room, actorID *string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var memberIDs []string
		if err := tx.Model(&models.RoomMember{}).
			Where("room_id = ?", room.ID).
			Pluck("user_id", &memberIDs).Error; err != nil {
			return err
		}

		entry := models.ActionLog{
			Action:      models.AuditActionClosePrivateSession,
			AdminID:     actorID,
			Details:     fmt.Sprintf("closed private session %s (%s)", room.ID, room.Name),
			AffectedIDs: pq.StringArray(memberIDs),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		// Записи, прив'язані до кімнати, заміщуються записом про закриття.
		if err := tx.Where("room_id = ?", room.ID).
			Delete(&models.ActionLog{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", room.ID).
			Delete(&models.RoomMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", room.ID).
			Delete(&models.Message{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Room{}, "id = ?", room.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Кімнату вже видалено паралельним закриттям.
			return ErrRoomNotFound
		}
		return nil
	})
}
