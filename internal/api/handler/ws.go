package handler

import (
	"net/http"

	"chatspace/backend/internal/chathub"
	"chatspace/backend/internal/config"
	"chatspace/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Дозволяє з'єднання з будь-якого домену. У продакшені налаштувати!
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket автентифікує handshake та оновлює HTTP-з'єднання до
// WebSocket. Невдала автентифікація закінчується 401 без деталей —
// fail closed, без витоку інформації. Перевірка відбувається до upgrade,
// у межах ReadTimeout сервера, тому handshake обмежений у часі.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	tokenString, ok := bearerToken(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	claims, err := h.validateToken(tokenString)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
		return
	}

	client := &chathub.WebSocketClient{
		ConnID: uuid.New().String(),
		Claims: claims,
		Conn:   conn,
		Hub:    h.Hub,
		Send:   make(chan models.Event, config.SendBufferSize),
	}

	// Реєстрація з'єднання в хабі (вона ж підписує на персональний топік)
	h.Hub.RegisterCh <- client

	client.Run()
}
