package chathub

import (
	"encoding/json"
	"log"

	"chatspace/backend/internal/models"
)

// StartPubSubListener запускає goroutine, яка слухає Redis Pub/Sub і передає
// отримані події в цикл хаба. Ім'я каналу Redis і є назвою топіка, тому
// порядок подій у межах топіка зберігається від Publish до доставки.
func (m *ManagerService) StartPubSubListener() {
	pubsub := m.Storage.SubscribeEvents()
	if pubsub == nil {
		return // у тестах сховище працює без Redis
	}

	go func() {
		defer pubsub.Close()

		for msg := range pubsub.Channel() {
			var ev models.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("ERROR: Failed to unmarshal pub/sub event on %s: %v", msg.Channel, err)
				continue
			}
			m.PubSubCh <- TopicEvent{Topic: msg.Channel, Event: ev}
		}
	}()
}
