package chathub

import "chatspace/backend/internal/models"

// Client is the interface for one live, authenticated connection.
// It abstracts the underlying transport, allowing the hub to manage
// connections uniformly and tests to substitute in-memory doubles.
type Client interface {
	// GetConnID returns the unique identifier of this connection. A user may
	// hold several connections (tabs, devices) at once.
	GetConnID() string
	// GetUserID returns the authenticated user id of the connection.
	GetUserID() string
	// GetClaims returns the full authenticated claims attached at handshake.
	GetClaims() models.Claims

	// GetSendChannel returns the channel to which the hub delivers events
	// intended for this specific connection. It is a send-only channel.
	GetSendChannel() chan<- models.Event

	// Run starts the client's read and write pumps, which handle incoming and
	// outgoing traffic.
	Run()
	// Close gracefully shuts down the client's connection and associated channels.
	Close()
}

// Command — вхідна операція від клієнта, що обробляється циклом хаба.
type Command struct {
	Client Client
	Action string
	Data   []byte
}
