package chathub

import (
	"encoding/json"
	"errors"
	"log"
	"strings"
	"unicode/utf8"

	"chatspace/backend/internal/config"
	"chatspace/backend/internal/models"
	"chatspace/backend/internal/storage"
)

// handleCommand розбирає вхідну операцію з'єднання. Відмови повертаються
// лише з'єднанню-ініціатору; інші учасники кімнати ніколи не дізнаються
// про чужу невдалу операцію.
func (m *ManagerService) handleCommand(cmd Command) {
	switch cmd.Action {
	case models.ActionJoinRoom:
		m.handleJoinRoom(cmd)
	case models.ActionLeaveRoom:
		m.handleLeaveRoom(cmd)
	case models.ActionSendMessage:
		m.handleSendMessage(cmd)
	case models.ActionDeleteMessage:
		m.handleDeleteMessage(cmd)
	case models.ActionMarkAsRead:
		m.handleMarkAsRead(cmd)
	case models.ActionGetRoomUsers:
		m.handleGetRoomUsers(cmd)
	case models.ActionStartPrivateSession:
		m.handleStartSession(cmd)
	case models.ActionClosePrivateSession:
		m.handleCloseSession(cmd)
	default:
		m.reject(cmd.Client, "unknown action: "+cmd.Action)
	}
}

// reject надсилає подію error лише з'єднанню, що викликало операцію.
func (m *ManagerService) reject(c Client, message string) {
	m.sendToClient(c, models.ErrorEvent(message))
}

// rejectErr мапить помилку на відмову клієнту: бізнес-помилки віддаються
// текстом, решта ховається за загальним "operation failed".
func (m *ManagerService) rejectErr(c Client, err error) {
	for _, known := range []error{
		storage.ErrRoomNotFound,
		storage.ErrUserNotFound,
		storage.ErrDuplicateRoomName,
		storage.ErrClientInPrivateRoom,
		ErrNotAuthorized,
		ErrClientInitiator,
		ErrEmptyInvite,
		ErrNotPrivateSession,
		ErrEmptyMessage,
		ErrMessageTooLong,
		ErrMessageNotFound,
	} {
		if errors.Is(err, known) {
			m.reject(c, known.Error())
			return
		}
	}
	log.Printf("ERROR: Operation failed for connection %s: %v", c.GetConnID(), err)
	m.reject(c, "operation failed")
}

func (m *ManagerService) handleJoinRoom(cmd Command) {
	var req models.RoomRequest
	if err := json.Unmarshal(cmd.Data, &req); err != nil || req.RoomID == "" {
		m.reject(cmd.Client, "invalid joinRoom payload")
		return
	}
	claims := cmd.Client.GetClaims()

	ok, err := m.Guard.CanAccess(claims, req.RoomID)
	if err != nil {
		m.rejectErr(cmd.Client, err)
		return
	}
	if !ok {
		m.reject(cmd.Client, "access denied")
		return
	}
	// Оператор може не мати членства — кімната все одно має існувати.
	if _, err := m.Storage.GetRoomByID(req.RoomID); err != nil {
		m.rejectErr(cmd.Client, err)
		return
	}

	m.subscribe(cmd.Client.GetConnID(), models.RoomTopic(req.RoomID))

	// Базова лінія непрочитаного для цього з'єднання.
	unread, err := m.Reads.UnreadCount(claims.UserID, req.RoomID)
	if err != nil {
		log.Printf("WARNING: Failed to compute unread baseline for %s in %s: %v", claims.UserID, req.RoomID, err)
	}
	m.sendToClient(cmd.Client, models.NewEvent(models.EventRoomJoined, models.RoomJoinedPayload{
		RoomID: req.RoomID,
		Unread: unread,
	}))

	joined := models.NewEvent(models.EventUserJoined, models.UserSummary{
		ID:          claims.UserID,
		DisplayName: claims.Name,
		Role:        models.NormalizeRole(claims.Role),
	})
	if err := m.Dispatcher.Publish(models.RoomTopic(req.RoomID), joined); err != nil {
		log.Printf("WARNING: Failed to publish userJoined to %s: %v", req.RoomID, err)
	}
}

func (m *ManagerService) handleLeaveRoom(cmd Command) {
	var req models.RoomRequest
	if err := json.Unmarshal(cmd.Data, &req); err != nil || req.RoomID == "" {
		m.reject(cmd.Client, "invalid leaveRoom payload")
		return
	}

	topic := models.RoomTopic(req.RoomID)
	// Вихід із неприєднаної кімнати — повний no-op: без підписки немає й
	// userLeft, інакше будь-хто міг би генерувати фантомні виходи в чужих
	// кімнатах.
	if !m.isSubscribed(cmd.Client.GetConnID(), topic) {
		return
	}
	m.unsubscribe(cmd.Client.GetConnID(), topic)

	left := models.NewEvent(models.EventUserLeft, models.UserLeftPayload{UserID: cmd.Client.GetUserID()})
	if err := m.Dispatcher.Publish(topic, left); err != nil {
		log.Printf("WARNING: Failed to publish userLeft to %s: %v", req.RoomID, err)
	}
}

func (m *ManagerService) handleSendMessage(cmd Command) {
	var req models.SendMessageRequest
	if err := json.Unmarshal(cmd.Data, &req); err != nil || req.RoomID == "" {
		m.reject(cmd.Client, "invalid sendMessage payload")
		return
	}
	claims := cmd.Client.GetClaims()

	ok, err := m.Guard.CanAccess(claims, req.RoomID)
	if err != nil {
		m.rejectErr(cmd.Client, err)
		return
	}
	if !ok {
		m.reject(cmd.Client, "access denied")
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" && req.AttachmentURL == nil {
		m.rejectErr(cmd.Client, ErrEmptyMessage)
		return
	}
	if utf8.RuneCountInString(content) > config.MaxMessageLength {
		m.rejectErr(cmd.Client, ErrMessageTooLong)
		return
	}

	msg := &models.Message{
		RoomID:         req.RoomID,
		SenderID:       claims.UserID,
		Content:        content,
		AttachmentURL:  req.AttachmentURL,
		AttachmentType: req.AttachmentType,
		AttachmentName: req.AttachmentName,
	}
	// Persist-then-broadcast: збереження (разом із оновленням годинника
	// активності кімнати) фіксується до публікації. Цикл хаба серіалізує
	// конкурентні send'и, тому порядок розсилки збігається з порядком фіксації.
	if err := m.Storage.SaveMessage(msg); err != nil {
		m.rejectErr(cmd.Client, err)
		return
	}
	if err := m.Dispatcher.Publish(models.RoomTopic(req.RoomID), models.NewEvent(models.EventNewMessage, msg)); err != nil {
		log.Printf("WARNING: Failed to publish newMessage to %s: %v", req.RoomID, err)
	}
}

func (m *ManagerService) handleDeleteMessage(cmd Command) {
	var req models.DeleteMessageRequest
	if err := json.Unmarshal(cmd.Data, &req); err != nil || req.MessageID == "" {
		m.reject(cmd.Client, "invalid deleteMessage payload")
		return
	}
	claims := cmd.Client.GetClaims()

	msg, err := m.Storage.FindMessageByID(req.MessageID)
	if err != nil {
		m.rejectErr(cmd.Client, err)
		return
	}
	if msg == nil || msg.RoomID != req.RoomID {
		m.rejectErr(cmd.Client, ErrMessageNotFound)
		return
	}
	// Видаляти може автор або глобальний оператор.
	if msg.SenderID != claims.UserID && !claims.IsOperator() {
		m.reject(cmd.Client, "access denied")
		return
	}

	if err := m.Storage.DeleteMessage(req.MessageID); err != nil {
		m.rejectErr(cmd.Client, err)
		return
	}
	deleted := models.NewEvent(models.EventMessageDeleted, models.MessageDeletedPayload{
		MessageID: req.MessageID,
		RoomID:    req.RoomID,
	})
	if err := m.Dispatcher.Publish(models.RoomTopic(req.RoomID), deleted); err != nil {
		log.Printf("WARNING: Failed to publish messageDeleted to %s: %v", req.RoomID, err)
	}
}

func (m *ManagerService) handleMarkAsRead(cmd Command) {
	var req models.RoomRequest
	if err := json.Unmarshal(cmd.Data, &req); err != nil || req.RoomID == "" {
		m.reject(cmd.Client, "invalid markAsRead payload")
		return
	}
	if err := m.Reads.MarkRead(cmd.Client.GetUserID(), req.RoomID); err != nil {
		m.rejectErr(cmd.Client, err)
	}
}

func (m *ManagerService) handleGetRoomUsers(cmd Command) {
	var req models.RoomRequest
	if err := json.Unmarshal(cmd.Data, &req); err != nil || req.RoomID == "" {
		m.reject(cmd.Client, "invalid getRoomUsers payload")
		return
	}
	claims := cmd.Client.GetClaims()

	ok, err := m.Guard.CanAccess(claims, req.RoomID)
	if err != nil {
		m.rejectErr(cmd.Client, err)
		return
	}
	if !ok {
		m.reject(cmd.Client, "access denied")
		return
	}

	users, err := m.Storage.GetRoomMembers(req.RoomID)
	if err != nil {
		m.rejectErr(cmd.Client, err)
		return
	}
	summaries := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, u.Summary())
	}
	m.sendToClient(cmd.Client, models.NewEvent(models.EventRoomUsers, models.RoomUsersPayload{
		RoomID: req.RoomID,
		Users:  summaries,
	}))
}

func (m *ManagerService) handleStartSession(cmd Command) {
	var req models.StartSessionRequest
	if err := json.Unmarshal(cmd.Data, &req); err != nil {
		m.reject(cmd.Client, "invalid startPrivateSession payload")
		return
	}
	if _, err := m.Sessions.Start(cmd.Client.GetClaims(), req.UserIDs, req.SourceRoomID); err != nil {
		m.rejectErr(cmd.Client, err)
	}
}

func (m *ManagerService) handleCloseSession(cmd Command) {
	var req models.CloseSessionRequest
	if err := json.Unmarshal(cmd.Data, &req); err != nil || req.RoomID == "" {
		m.reject(cmd.Client, "invalid closePrivateSession payload")
		return
	}
	actorID := cmd.Client.GetUserID()
	if err := m.Sessions.Close(req.RoomID, &actorID); err != nil {
		m.rejectErr(cmd.Client, err)
	}
}
