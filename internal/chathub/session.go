package chathub

import (
	"errors"
	"fmt"
	"log"

	"chatspace/backend/internal/models"
	"chatspace/backend/internal/storage"

	"github.com/google/uuid"
)

// SessionService керує життєвим циклом приватних сесій: створення ефемерної
// кімнати, транзакційне додавання учасників, сповіщення через персональні
// топіки та закриття (адміном або reaper'ом) через транзакцію
// "аудит-потім-видалення".
type SessionService struct {
	Storage     storage.Storage
	Broadcaster Broadcaster
}

// NewSessionService створює менеджер приватних сесій.
func NewSessionService(s storage.Storage, b Broadcaster) *SessionService {
	return &SessionService{Storage: s, Broadcaster: b}
}

// Start створює приватну сесію: ініціатор не може бути CLIENT'ом, ініціатор
// та всі запрошені стають учасниками однією транзакцією, після чого кожен
// доданий отримує privateSessionStarted на свій персональний топік
// (не на топік кімнати — запрошені її ще не приєднали).
func (s *SessionService) Start(initiator models.Claims, targetUserIDs []string, sourceRoomID *string) (*models.Room, error) {
	if models.IsClient(initiator.Role) {
		return nil, ErrClientInitiator
	}
	if len(targetUserIDs) == 0 {
		return nil, ErrEmptyInvite
	}

	// Ініціатор + запрошені, без дублікатів.
	seen := map[string]bool{initiator.UserID: true}
	ids := []string{initiator.UserID}
	for _, id := range targetUserIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	users, err := s.Storage.GetUsersByIDs(ids)
	if err != nil {
		return nil, err
	}
	if len(users) != len(ids) {
		return nil, storage.ErrUserNotFound
	}

	room := &models.Room{
		Name:         "private-" + uuid.New().String(),
		IsPrivate:    true,
		ParentRoomID: sourceRoomID,
		Description:  fmt.Sprintf("Private session started by %s", initiator.Name),
	}
	if err := s.Storage.CreateSession(room, users); err != nil {
		return nil, err
	}

	ev := models.NewEvent(models.EventPrivateSessionStarted, room)
	for _, u := range users {
		if err := s.Broadcaster.PublishToUser(u.ID, ev); err != nil {
			log.Printf("WARNING: Failed to notify user %s about session %s: %v", u.ID, room.ID, err)
		}
	}
	return room, nil
}

// Close закриває приватну сесію. actorID == nil означає системне закриття
// (reaper), яке авторизоване завжди; інакше actor має бути ADMIN/MANAGER.
// privateSessionClosed розсилається на топік кімнати ДО транзакції видалення,
// щоб підписані клієнти отримали сповіщення, поки кімната концептуально ще
// існує для них. Якщо транзакція після цього не вдасться, клієнтам уже
// повідомлено про зникнення кімнати — наступний прохід reaper'а довершить
// закриття (відоме обмеження pre-commit порядку).
func (s *SessionService) Close(roomID string, actorID *string) error {
	if actorID != nil {
		actor, err := s.Storage.GetUserByID(*actorID)
		if err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				return ErrNotAuthorized
			}
			return err
		}
		if !models.IsOperator(actor.Role) {
			return ErrNotAuthorized
		}
	}

	room, err := s.Storage.GetRoomByID(roomID)
	if err != nil {
		return err
	}
	if !room.IsPrivate {
		return ErrNotPrivateSession
	}

	ev := models.NewEvent(models.EventPrivateSessionClosed, models.SessionClosedPayload{RoomID: roomID})
	if err := s.Broadcaster.Publish(models.RoomTopic(roomID), ev); err != nil {
		log.Printf("WARNING: Failed to broadcast session close for %s: %v", roomID, err)
	}

	return s.Storage.CloseSession(room, actorID)
}
