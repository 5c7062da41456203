package models

import (
	"time"

	"github.com/lib/pq" // Необхідний для pq.StringArray
)

// Типи адміністративних дій в аудиті. Префікс Audit відрізняє їх від
// однойменних wire-дій клієнтського протоколу (realtime.go).
const (
	AuditActionClosePrivateSession = "CLOSE_PRIVATE_SESSION"
	AuditActionRemoveUser          = "REMOVE_USER"
	AuditActionRoleChanged         = "ROLE_CHANGED"
)

// ActionLog — запис аудиту адміністративної або системної дії.
// AdminID == nil означає дію, ініційовану системою (наприклад, reaper'ом).
// RoomID навмисно залишається NULL для записів про закриття сесії: такі записи
// мають пережити видалення кімнати, тоді як roomID-scoped записи видаляються
// каскадом разом із нею; сам ідентифікатор кімнати зберігається в Details.
type ActionLog struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Action   string  `gorm:"type:text;not null;index" json:"action"`
	AdminID  *string `gorm:"type:text;index" json:"adminId,omitempty"`
	TargetID *string `gorm:"type:text" json:"targetId,omitempty"`
	RoomID   *string `gorm:"type:text;index" json:"roomId,omitempty"`
	Details  string  `gorm:"type:text" json:"details"`

	// AffectedIDs — користувачі, яких торкнулася дія (наприклад, учасники
	// закритої сесії).
	AffectedIDs pq.StringArray `gorm:"type:text[]" json:"affectedIds,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}
