package handler

import (
	"net/http"
	"strconv"

	"chatspace/backend/internal/config"

	"github.com/gin-gonic/gin"
)

// GetRoomHistory повертає останні повідомлення кімнати. Доступ закритий тим
// самим предикатом, що й realtime-операції: оператор або учасник кімнати.
func (h *Handler) GetRoomHistory(c *gin.Context) {
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

	roomID := c.Param("id")
	allowed, err := h.Guard.CanAccess(claims, roomID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	limit := config.DefaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		if parsed > config.MaxHistoryLimit {
			parsed = config.MaxHistoryLimit
		}
		limit = parsed
	}

	history, err := h.Storage.GetRoomHistory(roomID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"roomId": roomID, "messages": history})
}

// Healthz — проба живучості.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
