package handler

import (
	"chatspace/backend/internal/chathub"
	"chatspace/backend/internal/config"
	"chatspace/backend/internal/storage"
)

// Handler містить посилання на хаб, сховище та конфігурацію.
type Handler struct {
	Hub     *chathub.ManagerService
	Guard   *chathub.Guard
	Storage storage.Storage
	Cfg     *config.Config
}

func NewHandler(hub *chathub.ManagerService, guard *chathub.Guard, s storage.Storage, cfg *config.Config) *Handler {
	return &Handler{Hub: hub, Guard: guard, Storage: s, Cfg: cfg}
}
