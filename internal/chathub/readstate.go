package chathub

import (
	"log"
	"time"

	"chatspace/backend/internal/models"
	"chatspace/backend/internal/storage"
)

// ReadTracker оновлює позначки прочитання та рахує непрочитані повідомлення.
// Після успішного MarkRead подія roomRead іде на персональний топік
// користувача, щоб усі його з'єднання (вкладки, пристрої) зійшлися до одного
// стану непрочитаного.
type ReadTracker struct {
	Storage     storage.Storage
	Broadcaster Broadcaster
	Now         func() time.Time
}

// NewReadTracker створює трекер прочитаного з годинником time.Now.
func NewReadTracker(s storage.Storage, b Broadcaster) *ReadTracker {
	return &ReadTracker{Storage: s, Broadcaster: b, Now: time.Now}
}

// MarkRead виставляє lastReadAt = now на записі членства.
// Без членства — no-op без помилки; повторні виклики ідемпотентні.
func (t *ReadTracker) MarkRead(userID, roomID string) error {
	ok, err := t.Storage.MarkRead(roomID, userID, t.Now())
	if err != nil {
		return err
	}
	if !ok {
		return nil // не учасник — нічого не позначаємо
	}

	ev := models.NewEvent(models.EventRoomRead, models.RoomReadPayload{RoomID: roomID})
	if err := t.Broadcaster.PublishToUser(userID, ev); err != nil {
		log.Printf("WARNING: Failed to publish roomRead for user %s: %v", userID, err)
	}
	return nil
}

// UnreadCount повертає кількість повідомлень кімнати, створених після
// lastReadAt користувача; 0, якщо користувач не учасник.
func (t *ReadTracker) UnreadCount(userID, roomID string) (int64, error) {
	member, err := t.Storage.GetMember(roomID, userID)
	if err != nil {
		return 0, err
	}
	if member == nil {
		return 0, nil
	}
	return t.Storage.CountMessagesSince(roomID, member.LastReadAt)
}
