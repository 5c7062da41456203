package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"chatspace/backend/internal/config"
	"chatspace/backend/internal/models"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
)

var errInvalidToken = errors.New("invalid token")

// generateJWT генерує bearer-токен із claims користувача.
func (h *Handler) generateJWT(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"role":     models.NormalizeRole(user.Role),
		"name":     user.DisplayName,
		"username": user.Username,
		"exp":      time.Now().Add(config.TokenTTL).Unix(),
		"iss":      "chatspace-service", // Видавець
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.Cfg.JWTSecret))
}

// IssueToken видає токен для існуючого користувача (dev-ендпоінт; у
// продакшені токени видає зовнішній auth-сервіс).
func (h *Handler) IssueToken(c *gin.Context) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	user, err := h.Storage.GetUserByID(req.UserID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	token, err := h.generateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user_id": user.ID})
}

// bearerToken витягує токен із заголовка Authorization.
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(authHeader, "Bearer "), true
}

// validateToken перевіряє підпис токена та декодує claims з'єднання.
func (h *Handler) validateToken(tokenString string) (models.Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return []byte(h.Cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return models.Claims{}, errInvalidToken
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Claims{}, errInvalidToken
	}
	sub, _ := mc["sub"].(string)
	if sub == "" {
		return models.Claims{}, errInvalidToken
	}
	role, _ := mc["role"].(string)
	name, _ := mc["name"].(string)
	username, _ := mc["username"].(string)

	return models.Claims{
		UserID:   sub,
		Role:     models.NormalizeRole(role),
		Name:     name,
		Username: username,
	}, nil
}
