package models

import "encoding/json"

// Вхідні дії клієнта (client → coordinator).
const (
	ActionJoinRoom            = "joinRoom"
	ActionLeaveRoom           = "leaveRoom"
	ActionSendMessage         = "sendMessage"
	ActionDeleteMessage       = "deleteMessage"
	ActionMarkAsRead          = "markAsRead"
	ActionGetRoomUsers        = "getRoomUsers"
	ActionStartPrivateSession = "startPrivateSession"
	ActionClosePrivateSession = "closePrivateSession"
)

// Вихідні події (coordinator → clients).
const (
	EventNewMessage            = "newMessage"
	EventMessageDeleted        = "messageDeleted"
	EventUserJoined            = "userJoined"
	EventUserLeft              = "userLeft"
	EventRoomJoined            = "roomJoined"
	EventRoomRead              = "roomRead"
	EventRoomUsers             = "roomUsers"
	EventPrivateSessionStarted = "privateSessionStarted"
	EventPrivateSessionClosed  = "privateSessionClosed"
	EventError                 = "error"
)

// RoomTopic — назва топіка кімнати для fan-out.
func RoomTopic(roomID string) string { return "room:" + roomID }

// UserTopic — персональний топік користувача: доставка незалежно від того,
// які кімнати він зараз приєднав.
func UserTopic(userID string) string { return "user:" + userID }

// Event — вихідна подія, що доставляється підписникам топіка.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEvent серіалізує payload і загортає його в Event.
func NewEvent(name string, payload any) Event {
	data, _ := json.Marshal(payload)
	return Event{Event: name, Data: data}
}

// ErrorEvent будує подію-відмову для клієнта, що викликав операцію.
func ErrorEvent(message string) Event {
	return NewEvent(EventError, ErrorPayload{Message: message})
}

// ClientCommand — сирий вхідний запит із WebSocket.
type ClientCommand struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// --- Payload'и вхідних запитів ---

// RoomRequest використовується операціями, що адресують лише кімнату
// (joinRoom, leaveRoom, markAsRead, getRoomUsers).
type RoomRequest struct {
	RoomID string `json:"roomId"`
}

type SendMessageRequest struct {
	RoomID         string  `json:"roomId"`
	Content        string  `json:"content"`
	AttachmentURL  *string `json:"attachmentUrl,omitempty"`
	AttachmentType *string `json:"attachmentType,omitempty"`
	AttachmentName *string `json:"attachmentName,omitempty"`
}

type DeleteMessageRequest struct {
	MessageID string `json:"messageId"`
	RoomID    string `json:"roomId"`
}

type StartSessionRequest struct {
	UserIDs      []string `json:"userIds"`
	SourceRoomID *string  `json:"sourceRoomId,omitempty"`
}

type CloseSessionRequest struct {
	RoomID string `json:"roomId"`
}

// --- Payload'и вихідних подій ---

type UserLeftPayload struct {
	UserID string `json:"userId"`
}

type RoomJoinedPayload struct {
	RoomID string `json:"roomId"`
	Unread int64  `json:"unread"`
}

type RoomReadPayload struct {
	RoomID string `json:"roomId"`
}

type RoomUsersPayload struct {
	RoomID string        `json:"roomId"`
	Users  []UserSummary `json:"users"`
}

type MessageDeletedPayload struct {
	MessageID string `json:"messageId"`
	RoomID    string `json:"roomId"`
}

type SessionClosedPayload struct {
	RoomID string `json:"roomId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
