// File: courtpilot/handlers/handlerBundle.go
package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Booking endpoints
	StartRunHandler     gin.HandlerFunc
	GetRunHandler       gin.HandlerFunc
	AvailabilityHandler gin.HandlerFunc
	VoiceRunHandler     gin.HandlerFunc

	// Auth endpoints
	MintTokenHandler gin.HandlerFunc

	// Admin endpoints
	AdminHandler *AdminHandler
}
