package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ролі користувачів. Порівняння завжди без урахування регістру.
const (
	RoleClient  = "CLIENT"
	RoleManager = "MANAGER"
	RoleAdmin   = "ADMIN"
)

// NormalizeRole зводить роль до канонічної форми (верхній регістр, без пробілів).
func NormalizeRole(role string) string {
	return strings.ToUpper(strings.TrimSpace(role))
}

// IsOperator повертає true для глобальних операторів (ADMIN або MANAGER).
func IsOperator(role string) bool {
	switch NormalizeRole(role) {
	case RoleAdmin, RoleManager:
		return true
	}
	return false
}

// IsClient повертає true, якщо роль — CLIENT.
func IsClient(role string) bool {
	return NormalizeRole(role) == RoleClient
}

// User представляє користувача в системі.
// Координатор реального часу читає лише ID та Role;
// рештою полів володіє зовнішній CRUD-шар.
type User struct {
	ID          string `gorm:"primaryKey" json:"id"`
	Role        string `gorm:"type:text;not null;default:'CLIENT'" json:"role"`
	DisplayName string `gorm:"type:text;not null" json:"displayName"`
	Username    string `gorm:"uniqueIndex" json:"username"`
	Email       string `gorm:"uniqueIndex" json:"email"`
}

// BeforeCreate — це хук GORM, який викликається перед створенням запису.
// Він генерує новий UUID для користувача, якщо ID ще не встановлено.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	u.Role = NormalizeRole(u.Role)
	return
}

// UserSummary — публічне представлення користувача для broadcast-подій.
type UserSummary struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

// Summary будує UserSummary з повного запису користувача.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, DisplayName: u.DisplayName, Role: NormalizeRole(u.Role)}
}

// Claims — автентифіковані дані з'єднання, декодовані з bearer-токена.
type Claims struct {
	UserID   string
	Role     string
	Name     string
	Username string
}

// IsOperator повертає true, якщо з'єднання належить оператору.
func (c Claims) IsOperator() bool {
	return IsOperator(c.Role)
}
