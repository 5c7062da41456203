package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message represents a persisted chat message. Attachment fields are optional
// and filled only for file/media messages; the attachment content itself lives
// in external storage, only the URL is recorded here.
type Message struct {
	ID       string `gorm:"primaryKey" json:"id"`
	RoomID   string `gorm:"not null;index:idx_room_msg" json:"roomId"`
	SenderID string `gorm:"not null;index:idx_room_msg" json:"senderId"`
	Content  string `gorm:"type:text" json:"content"`

	AttachmentURL  *string `gorm:"type:text" json:"attachmentUrl,omitempty"`
	AttachmentType *string `gorm:"type:text" json:"attachmentType,omitempty"`
	AttachmentName *string `gorm:"type:text" json:"attachmentName,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

// BeforeCreate генерує UUID повідомлення, якщо ID ще не встановлено.
func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}
