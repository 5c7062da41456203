package config

import "time"

const (
	// Reaper
	ReaperInterval       = time.Hour
	SessionIdleThreshold = 24 * time.Hour

	// Messages
	MaxMessageLength = 4000

	// Connections
	SendBufferSize = 256

	// Auth
	TokenTTL = 72 * time.Hour

	// History
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)
