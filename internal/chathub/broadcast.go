package chathub

import (
	"chatspace/backend/internal/models"
	"chatspace/backend/internal/storage"
)

// Broadcaster — абстракція fan-out'у, від якої залежать менеджер сесій та
// трекер прочитаного. Розриває цикл "membership-логіка потребує розсилки,
// розсилка потребує membership-даних": конкретний диспетчер підставляється
// під час композиції.
type Broadcaster interface {
	// Publish доставляє подію кожному з'єднанню, підписаному на topic.
	// Без підтверджень і повторів; порядок гарантується лише в межах топіка.
	Publish(topic string, ev models.Event) error
	// PublishToUser доставляє подію на персональний топік користувача —
	// для адресних сповіщень, коли користувач ще не приєднав кімнату.
	PublishToUser(userID string, ev models.Event) error
}

// Dispatcher реалізує Broadcaster поверх Redis Pub/Sub: публікація йде в
// канал топіка, а цикл хаба доставляє її локальним підписникам.
type Dispatcher struct {
	Storage storage.Storage
}

// NewDispatcher створює диспетчер розсилки.
func NewDispatcher(s storage.Storage) *Dispatcher {
	return &Dispatcher{Storage: s}
}

func (d *Dispatcher) Publish(topic string, ev models.Event) error {
	return d.Storage.PublishEvent(topic, ev)
}

func (d *Dispatcher) PublishToUser(userID string, ev models.Event) error {
	return d.Publish(models.UserTopic(userID), ev)
}
