package chathub_test

import (
	"time"

	"chatspace/backend/internal/chathub"
	"chatspace/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
)

// MockStorage is a comprehensive mock implementation of the storage.Storage
// interface. It uses testify/mock to allow flexible expectation setting in tests.
type MockStorage struct {
	mock.Mock
}

// User operations
func (m *MockStorage) GetUserByID(userID string) (*models.User, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) GetUsersByIDs(userIDs []string) ([]models.User, error) {
	args := m.Called(userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockStorage) UpdateUserRole(userID, role string) error {
	args := m.Called(userID, role)
	return args.Error(0)
}

// Room operations
func (m *MockStorage) CreateRoom(room *models.Room) error {
	args := m.Called(room)
	return args.Error(0)
}

func (m *MockStorage) GetRoomByID(roomID string) (*models.Room, error) {
	args := m.Called(roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Room), args.Error(1)
}

func (m *MockStorage) FindStaleSessions(before time.Time) ([]models.Room, error) {
	args := m.Called(before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Room), args.Error(1)
}

// Membership operations
func (m *MockStorage) AddMembers(roomID string, users []models.User, isPrivate bool) error {
	args := m.Called(roomID, users, isPrivate)
	return args.Error(0)
}

func (m *MockStorage) RemoveMember(roomID, userID string) error {
	args := m.Called(roomID, userID)
	return args.Error(0)
}

func (m *MockStorage) GetMember(roomID, userID string) (*models.RoomMember, error) {
	args := m.Called(roomID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RoomMember), args.Error(1)
}

func (m *MockStorage) GetRoomMembers(roomID string) ([]models.User, error) {
	args := m.Called(roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockStorage) IsMember(roomID, userID string) (bool, error) {
	args := m.Called(roomID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) MarkRead(roomID, userID string, at time.Time) (bool, error) {
	args := m.Called(roomID, userID, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) CountMessagesSince(roomID string, after time.Time) (int64, error) {
	args := m.Called(roomID, after)
	return args.Get(0).(int64), args.Error(1)
}

// Message operations
func (m *MockStorage) SaveMessage(msg *models.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockStorage) FindMessageByID(messageID string) (*models.Message, error) {
	args := m.Called(messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockStorage) DeleteMessage(messageID string) error {
	args := m.Called(messageID)
	return args.Error(0)
}

func (m *MockStorage) GetRoomHistory(roomID string, limit int) ([]models.Message, error) {
	args := m.Called(roomID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

// Audit / session lifecycle
func (m *MockStorage) SaveActionLog(entry *models.ActionLog) error {
	args := m.Called(entry)
	return args.Error(0)
}

func (m *MockStorage) CreateSession(room *models.Room, users []models.User) error {
	args := m.Called(room, users)
	return args.Error(0)
}

func (m *MockStorage) CloseSession(room *models.Room, actorID *string) error {
	args := m.Called(room, actorID)
	return args.Error(0)
}

// Pub/Sub
func (m *MockStorage) PublishEvent(topic string, ev models.Event) error {
	args := m.Called(topic, ev)
	return args.Error(0)
}

func (m *MockStorage) SubscribeEvents() *redis.PubSub {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*redis.PubSub)
}

// MockClient is a test double for the chathub.Client interface.
type MockClient struct {
	connID      string
	claims      models.Claims
	RecvChannel chan models.Event
	closed      bool
}

func newMockClient(connID string, claims models.Claims) *MockClient {
	return &MockClient{
		connID:      connID,
		claims:      claims,
		RecvChannel: make(chan models.Event, 10), // Buffered to prevent blocking in tests
	}
}

func (c *MockClient) GetConnID() string                   { return c.connID }
func (c *MockClient) GetUserID() string                   { return c.claims.UserID }
func (c *MockClient) GetClaims() models.Claims            { return c.claims }
func (c *MockClient) GetSendChannel() chan<- models.Event { return c.RecvChannel }

func (c *MockClient) Run() {
	// Not needed for testing
}

func (c *MockClient) Close() {
	c.closed = true
}

// DrainEvents збирає все, що встигло прийти у канал клієнта.
func (c *MockClient) DrainEvents() []models.Event {
	var events []models.Event
	for {
		select {
		case ev := <-c.RecvChannel:
			events = append(events, ev)
		default:
			return events
		}
	}
}

// newTestHub збирає хаб із повною композицією сервісів поверх мок-сховища.
func newTestHub(storageMock *MockStorage) *chathub.ManagerService {
	dispatcher := chathub.NewDispatcher(storageMock)
	guard := chathub.NewGuard(storageMock)
	sessions := chathub.NewSessionService(storageMock, dispatcher)
	reads := chathub.NewReadTracker(storageMock, dispatcher)
	return chathub.NewManagerService(storageMock, guard, sessions, reads, dispatcher)
}
