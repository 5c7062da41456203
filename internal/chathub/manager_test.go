package chathub_test

import (
	"encoding/json"
	"testing"
	"time"

	"chatspace/backend/internal/chathub"
	"chatspace/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	assert.NoError(t, err)
	return data
}

func eventNamed(name string) any {
	return mock.MatchedBy(func(ev models.Event) bool { return ev.Event == name })
}

func TestManager_RegisterJoinsPersonalTopic(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("SubscribeEvents").Return(nil)
	hub := newTestHub(storageMock)

	clientA := newMockClient("conn_A", models.Claims{UserID: "user_A", Role: models.RoleClient})

	go hub.Run()

	hub.RegisterCh <- clientA
	time.Sleep(100 * time.Millisecond)

	assert.True(t, hub.HasConnection("conn_A"))
	assert.True(t, hub.IsSubscribed("conn_A", "user:user_A"))

	hub.UnregisterCh <- clientA
	time.Sleep(100 * time.Millisecond)
	assert.False(t, hub.HasConnection("conn_A"))
}

func TestManager_JoinRoomSubscribesAndReportsUnread(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("SubscribeEvents").Return(nil)
	storageMock.On("IsMember", "room1", "user_A").Return(true, nil)
	storageMock.On("GetRoomByID", "room1").Return(&models.Room{ID: "room1", Name: "general"}, nil)
	lastRead := time.Now().Add(-time.Hour)
	storageMock.On("GetMember", "room1", "user_A").
		Return(&models.RoomMember{UserID: "user_A", RoomID: "room1", LastReadAt: lastRead}, nil)
	storageMock.On("CountMessagesSince", "room1", lastRead).Return(int64(3), nil)
	storageMock.On("PublishEvent", "room:room1", eventNamed(models.EventUserJoined)).Return(nil)

	hub := newTestHub(storageMock)
	clientA := newMockClient("conn_A", models.Claims{UserID: "user_A", Role: models.RoleClient, Name: "Alice"})

	go hub.Run()
	hub.RegisterCh <- clientA
	hub.IncomingCh <- chathub.Command{
		Client: clientA,
		Action: models.ActionJoinRoom,
		Data:   mustJSON(t, models.RoomRequest{RoomID: "room1"}),
	}
	time.Sleep(100 * time.Millisecond)

	assert.True(t, hub.IsSubscribed("conn_A", "room:room1"))

	events := clientA.DrainEvents()
	if assert.Len(t, events, 1) {
		assert.Equal(t, models.EventRoomJoined, events[0].Event)
		var payload models.RoomJoinedPayload
		assert.NoError(t, json.Unmarshal(events[0].Data, &payload))
		assert.Equal(t, "room1", payload.RoomID)
		assert.Equal(t, int64(3), payload.Unread)
	}
	storageMock.AssertCalled(t, "PublishEvent", "room:room1", eventNamed(models.EventUserJoined))
}

func TestManager_JoinRoomDeniedForNonMember(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("SubscribeEvents").Return(nil)
	storageMock.On("IsMember", "room1", "user_B").Return(false, nil)

	hub := newTestHub(storageMock)
	clientB := newMockClient("conn_B", models.Claims{UserID: "user_B", Role: models.RoleClient})

	go hub.Run()
	hub.RegisterCh <- clientB
	hub.IncomingCh <- chathub.Command{
		Client: clientB,
		Action: models.ActionJoinRoom,
		Data:   mustJSON(t, models.RoomRequest{RoomID: "room1"}),
	}
	time.Sleep(100 * time.Millisecond)

	assert.False(t, hub.IsSubscribed("conn_B", "room:room1"))
	events := clientB.DrainEvents()
	if assert.Len(t, events, 1) {
		assert.Equal(t, models.EventError, events[0].Event)
	}
	storageMock.AssertNotCalled(t, "PublishEvent", "room:room1", mock.Anything)
}

func TestManager_DeliverReachesTopicSubscribersOnly(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("SubscribeEvents").Return(nil)
	storageMock.On("GetRoomByID", "room1").Return(&models.Room{ID: "room1", Name: "general"}, nil)
	storageMock.On("GetMember", "room1", "user_A").Return(nil, nil)
	storageMock.On("PublishEvent", mock.Anything, mock.Anything).Return(nil)

	hub := newTestHub(storageMock)
	// Оператор проходить Guard без членства.
	clientA := newMockClient("conn_A", models.Claims{UserID: "user_A", Role: models.RoleManager, Name: "Alice"})
	clientB := newMockClient("conn_B", models.Claims{UserID: "user_B", Role: models.RoleClient})

	go hub.Run()
	hub.RegisterCh <- clientA
	hub.RegisterCh <- clientB
	hub.IncomingCh <- chathub.Command{
		Client: clientA,
		Action: models.ActionJoinRoom,
		Data:   mustJSON(t, models.RoomRequest{RoomID: "room1"}),
	}
	time.Sleep(100 * time.Millisecond)
	clientA.DrainEvents() // скидаємо roomJoined

	hub.PubSubCh <- chathub.TopicEvent{
		Topic: "room:room1",
		Event: models.NewEvent(models.EventNewMessage, models.Message{RoomID: "room1", Content: "hello"}),
	}
	time.Sleep(100 * time.Millisecond)

	eventsA := clientA.DrainEvents()
	if assert.Len(t, eventsA, 1) {
		assert.Equal(t, models.EventNewMessage, eventsA[0].Event)
	}
	assert.Empty(t, clientB.DrainEvents(), "clientB is not subscribed to room1")
}

func TestManager_DisconnectEmitsUserLeftForJoinedRooms(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("SubscribeEvents").Return(nil)
	storageMock.On("GetRoomByID", "room1").Return(&models.Room{ID: "room1", Name: "general"}, nil)
	storageMock.On("GetMember", "room1", "user_A").Return(nil, nil)
	storageMock.On("PublishEvent", mock.Anything, mock.Anything).Return(nil)

	hub := newTestHub(storageMock)
	clientA := newMockClient("conn_A", models.Claims{UserID: "user_A", Role: models.RoleAdmin, Name: "Alice"})

	go hub.Run()
	hub.RegisterCh <- clientA
	hub.IncomingCh <- chathub.Command{
		Client: clientA,
		Action: models.ActionJoinRoom,
		Data:   mustJSON(t, models.RoomRequest{RoomID: "room1"}),
	}
	time.Sleep(100 * time.Millisecond)

	hub.UnregisterCh <- clientA
	time.Sleep(100 * time.Millisecond)

	assert.False(t, hub.HasConnection("conn_A"))
	storageMock.AssertCalled(t, "PublishEvent", "room:room1", eventNamed(models.EventUserLeft))
}

func TestManager_SendMessagePersistsBeforeBroadcast(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("SubscribeEvents").Return(nil)
	storageMock.On("IsMember", "room1", "user_A").Return(true, nil)
	storageMock.On("SaveMessage", mock.AnythingOfType("*models.Message")).Return(nil)
	storageMock.On("PublishEvent", "room:room1", eventNamed(models.EventNewMessage)).Return(nil)

	hub := newTestHub(storageMock)
	clientA := newMockClient("conn_A", models.Claims{UserID: "user_A", Role: models.RoleClient})

	go hub.Run()
	hub.RegisterCh <- clientA
	hub.IncomingCh <- chathub.Command{
		Client: clientA,
		Action: models.ActionSendMessage,
		Data:   mustJSON(t, models.SendMessageRequest{RoomID: "room1", Content: "hello"}),
	}
	time.Sleep(100 * time.Millisecond)

	storageMock.AssertCalled(t, "SaveMessage", mock.AnythingOfType("*models.Message"))
	storageMock.AssertCalled(t, "PublishEvent", "room:room1", eventNamed(models.EventNewMessage))

	// Persist-then-broadcast: збереження має передувати публікації.
	saveIdx, publishIdx := -1, -1
	for i, call := range storageMock.Calls {
		switch call.Method {
		case "SaveMessage":
			saveIdx = i
		case "PublishEvent":
			publishIdx = i
		}
	}
	assert.True(t, saveIdx >= 0 && publishIdx >= 0 && saveIdx < publishIdx)
}

func TestManager_SendMessageRejectsEmptyPayload(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("SubscribeEvents").Return(nil)
	storageMock.On("IsMember", "room1", "user_A").Return(true, nil)

	hub := newTestHub(storageMock)
	clientA := newMockClient("conn_A", models.Claims{UserID: "user_A", Role: models.RoleClient})

	go hub.Run()
	hub.RegisterCh <- clientA
	hub.IncomingCh <- chathub.Command{
		Client: clientA,
		Action: models.ActionSendMessage,
		Data:   mustJSON(t, models.SendMessageRequest{RoomID: "room1", Content: "   "}),
	}
	time.Sleep(100 * time.Millisecond)

	events := clientA.DrainEvents()
	if assert.Len(t, events, 1) {
		assert.Equal(t, models.EventError, events[0].Event)
	}
	storageMock.AssertNotCalled(t, "SaveMessage", mock.Anything)
}

func TestManager_LeaveNeverJoinedRoomIsNoop(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("SubscribeEvents").Return(nil)
	storageMock.On("PublishEvent", mock.Anything, mock.Anything).Return(nil)

	hub := newTestHub(storageMock)
	clientA := newMockClient("conn_A", models.Claims{UserID: "user_A", Role: models.RoleClient})

	go hub.Run()
	hub.RegisterCh <- clientA
	hub.IncomingCh <- chathub.Command{
		Client: clientA,
		Action: models.ActionLeaveRoom,
		Data:   mustJSON(t, models.RoomRequest{RoomID: "never-joined"}),
	}
	time.Sleep(100 * time.Millisecond)

	// З'єднання живе, помилки немає — і жодного фантомного userLeft
	// у кімнату, до якої з'єднання ніколи не підписувалося.
	assert.True(t, hub.HasConnection("conn_A"))
	assert.Empty(t, clientA.DrainEvents())
	storageMock.AssertNotCalled(t, "PublishEvent", "room:never-joined", mock.Anything)
}

func TestManager_LeaveJoinedRoomPublishesUserLeft(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("SubscribeEvents").Return(nil)
	storageMock.On("IsMember", "room1", "user_A").Return(true, nil)
	storageMock.On("GetRoomByID", "room1").Return(&models.Room{ID: "room1", Name: "general"}, nil)
	storageMock.On("GetMember", "room1", "user_A").Return(nil, nil)
	storageMock.On("PublishEvent", mock.Anything, mock.Anything).Return(nil)

	hub := newTestHub(storageMock)
	clientA := newMockClient("conn_A", models.Claims{UserID: "user_A", Role: models.RoleClient, Name: "Alice"})

	go hub.Run()
	hub.RegisterCh <- clientA
	hub.IncomingCh <- chathub.Command{
		Client: clientA,
		Action: models.ActionJoinRoom,
		Data:   mustJSON(t, models.RoomRequest{RoomID: "room1"}),
	}
	hub.IncomingCh <- chathub.Command{
		Client: clientA,
		Action: models.ActionLeaveRoom,
		Data:   mustJSON(t, models.RoomRequest{RoomID: "room1"}),
	}
	time.Sleep(100 * time.Millisecond)

	assert.False(t, hub.IsSubscribed("conn_A", "room:room1"))
	storageMock.AssertCalled(t, "PublishEvent", "room:room1", eventNamed(models.EventUserLeft))
}
