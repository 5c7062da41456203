package chathub

import (
	"chatspace/backend/internal/models"
	"chatspace/backend/internal/storage"
)

// Guard — stateless-предикат контролю доступу до кімнати.
// Правило: ADMIN та MANAGER (глобальні оператори) проходять завжди;
// решта — лише за наявності запису членства. Предикат закриває joinRoom,
// sendMessage, getRoomUsers та читання історії. Створення/видалення кімнат
// і зміну ролей закриває зовнішній REST-шар, не це ядро.
type Guard struct {
	Storage storage.Storage
}

// NewGuard створює предикат доступу поверх сховища членства.
func NewGuard(s storage.Storage) *Guard {
	return &Guard{Storage: s}
}

// CanAccess повертає true, якщо користувач має доступ до кімнати.
func (g *Guard) CanAccess(claims models.Claims, roomID string) (bool, error) {
	if claims.IsOperator() {
		return true, nil
	}
	return g.Storage.IsMember(roomID, claims.UserID)
}
