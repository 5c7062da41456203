package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxRoomNameLength — максимальна довжина назви кімнати.
const MaxRoomNameLength = 100

var (
	// ErrEmptyRoomName повертається, якщо назва кімнати порожня після trim.
	ErrEmptyRoomName = errors.New("room name must not be empty")
	// ErrRoomNameTooLong повертається, якщо назва довша за MaxRoomNameLength.
	ErrRoomNameTooLong = errors.New("room name exceeds 100 characters")
)

// Room represents a named chat channel. A room is either standing
// (persistent, discoverable) or private (an ephemeral session spawned by the
// session manager, subject to inactivity reaping). UpdatedAt doubles as the
// reaper's activity clock: it is bumped whenever a message is created in the
// room.
type Room struct {
	ID           string  `gorm:"primaryKey" json:"id"`
	Name         string  `gorm:"uniqueIndex;not null" json:"name"`
	IsPrivate    bool    `gorm:"not null;default:false" json:"isPrivate"`
	ParentRoomID *string `gorm:"type:text" json:"parentRoomId,omitempty"`
	Description  string  `gorm:"type:text" json:"description"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `gorm:"index" json:"updatedAt"`
}

// Validate перевіряє назву кімнати: не порожня після trim, не довша за ліміт.
// Порівняння назв чутливе до регістру (унікальність забезпечує індекс БД).
func (r *Room) Validate() error {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return ErrEmptyRoomName
	}
	if len(name) > MaxRoomNameLength {
		return ErrRoomNameTooLong
	}
	r.Name = name
	return nil
}

// BeforeCreate генерує UUID та валідує назву перед записом у БД.
func (r *Room) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return r.Validate()
}

// RoomMember is the persisted (user, room) relation carrying join time and
// read-state. There is at most one row per (UserID, RoomID); JoinedAt never
// changes after creation and LastReadAt is monotonically non-decreasing.
type RoomMember struct {
	UserID     string    `gorm:"primaryKey" json:"userId"`
	RoomID     string    `gorm:"primaryKey;index" json:"roomId"`
	JoinedAt   time.Time `gorm:"not null" json:"joinedAt"`
	LastReadAt time.Time `gorm:"not null" json:"lastReadAt"`
}
