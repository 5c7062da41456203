package chathub

import (
	"log"
	"strings"
	"sync"

	"chatspace/backend/internal/models"
	"chatspace/backend/internal/storage"
)

// TopicEvent — подія разом із топіком, у який її опубліковано.
type TopicEvent struct {
	Topic string
	Event models.Event
}

// ManagerService — реєстр живих з'єднань і точка доставки подій.
// Весь змінний стан (clients, topics) належить єдиній goroutine Run():
// вона ж серіалізує публікації в межах топіка, тому два конкурентні
// відправники не можуть переплести свої повідомлення всупереч порядку
// фіксації в БД.
type ManagerService struct {
	// mu закриває читання реєстру ззовні циклу Run() (аксесори, тести);
	// всі мутації так само йдуть лише під ним, у самому циклі.
	mu sync.RWMutex

	clients map[string]Client          // connID -> з'єднання
	topics  map[string]map[string]bool // topic -> connID set
	conns   map[string]map[string]bool // connID -> topic set

	// Channels
	RegisterCh   chan Client
	UnregisterCh chan Client
	IncomingCh   chan Command
	PubSubCh     chan TopicEvent

	Storage    storage.Storage
	Guard      *Guard
	Sessions   *SessionService
	Reads      *ReadTracker
	Dispatcher Broadcaster
}

// NewManagerService створює хаб; колаборатори підставляються в composition root.
func NewManagerService(s storage.Storage, guard *Guard, sessions *SessionService, reads *ReadTracker, dispatcher Broadcaster) *ManagerService {
	return &ManagerService{
		clients:      make(map[string]Client),
		topics:       make(map[string]map[string]bool),
		conns:        make(map[string]map[string]bool),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		IncomingCh:   make(chan Command),
		PubSubCh:     make(chan TopicEvent, 64),
		Storage:      s,
		Guard:        guard,
		Sessions:     sessions,
		Reads:        reads,
		Dispatcher:   dispatcher,
	}
}

// Run — головний цикл хаба. Всі мутації реєстру та вся доставка подій
// проходять тут.
func (m *ManagerService) Run() {
	m.StartPubSubListener()

	for {
		select {
		case client := <-m.RegisterCh:
			m.mu.Lock()
			m.register(client)
			m.mu.Unlock()

		case client := <-m.UnregisterCh:
			m.mu.Lock()
			m.unregister(client)
			m.mu.Unlock()

		case cmd := <-m.IncomingCh:
			m.mu.Lock()
			m.handleCommand(cmd)
			m.mu.Unlock()

		case te := <-m.PubSubCh:
			m.mu.Lock()
			m.deliver(te.Topic, te.Event)
			m.mu.Unlock()
		}
	}
}

// register додає з'єднання до реєстру та одразу підписує його на
// персональний топік користувача, щоб адресні сповіщення (наприклад,
// "вас додали до приватної сесії") доходили ще до приєднання кімнат.
func (m *ManagerService) register(c Client) {
	connID := c.GetConnID()
	m.clients[connID] = c
	m.conns[connID] = make(map[string]bool)
	m.subscribe(connID, models.UserTopic(c.GetUserID()))
	log.Printf("Connection %s registered for user %s", connID, c.GetUserID())
}

// unregister знімає з'єднання з обліку. Список кімнатних топіків знімається
// ДО очищення стану підписок: після teardown'у його вже не відновити, а
// сповіщення userLeft має піти в кожну з цих кімнат.
func (m *ManagerService) unregister(c Client) {
	connID := c.GetConnID()
	if _, ok := m.clients[connID]; !ok {
		return // вже знято (гонка між overflow та readPump)
	}

	// Знімок кімнат до teardown'у.
	var roomTopics []string
	for topic := range m.conns[connID] {
		if strings.HasPrefix(topic, "room:") {
			roomTopics = append(roomTopics, topic)
		}
	}

	left := models.NewEvent(models.EventUserLeft, models.UserLeftPayload{UserID: c.GetUserID()})
	for _, topic := range roomTopics {
		if err := m.Dispatcher.Publish(topic, left); err != nil {
			log.Printf("WARNING: Failed to publish userLeft to %s: %v", topic, err)
		}
	}

	for topic := range m.conns[connID] {
		m.dropSubscription(connID, topic)
	}
	delete(m.conns, connID)
	delete(m.clients, connID)
	c.Close()
	log.Printf("Connection %s unregistered", connID)
}

// subscribe — ідемпотентна підписка з'єднання на топік.
func (m *ManagerService) subscribe(connID, topic string) {
	if m.topics[topic] == nil {
		m.topics[topic] = make(map[string]bool)
	}
	m.topics[topic][connID] = true
	if m.conns[connID] == nil {
		m.conns[connID] = make(map[string]bool)
	}
	m.conns[connID][topic] = true
}

// unsubscribe — ідемпотентне відписування; невідомий топік — no-op.
func (m *ManagerService) unsubscribe(connID, topic string) {
	m.dropSubscription(connID, topic)
	if set, ok := m.conns[connID]; ok {
		delete(set, topic)
	}
}

func (m *ManagerService) dropSubscription(connID, topic string) {
	if set, ok := m.topics[topic]; ok {
		delete(set, connID)
		if len(set) == 0 {
			delete(m.topics, topic)
		}
	}
}

// deliver роздає подію всім локальним підписникам топіка.
// Повільні з'єднання (переповнений Send-канал) знімаються з обліку.
func (m *ManagerService) deliver(topic string, ev models.Event) {
	var overflowed []Client
	for connID := range m.topics[topic] {
		client, ok := m.clients[connID]
		if !ok {
			continue
		}
		if !m.sendToClient(client, ev) {
			overflowed = append(overflowed, client)
		}
	}
	for _, client := range overflowed {
		log.Printf("WARNING: Connection %s too slow, dropping", client.GetConnID())
		m.unregister(client)
	}
}

// sendToClient — неблокуюча відправка у канал з'єднання.
func (m *ManagerService) sendToClient(c Client, ev models.Event) bool {
	select {
	case c.GetSendChannel() <- ev:
		return true
	default:
		return false
	}
}

// isSubscribed — перевірка підписки зсередини циклу Run() (без блокування).
func (m *ManagerService) isSubscribed(connID, topic string) bool {
	set, ok := m.conns[connID]
	return ok && set[topic]
}

// IsSubscribed повідомляє, чи підписане з'єднання на топік.
func (m *ManagerService) IsSubscribed(connID, topic string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isSubscribed(connID, topic)
}

// HasConnection повідомляє, чи зареєстроване з'єднання в хабі.
func (m *ManagerService) HasConnection(connID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.clients[connID]
	return ok
}
