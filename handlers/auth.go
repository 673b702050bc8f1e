package handlers

import (
	"net/http"
	"time"

	"courtpilot/config"
	"courtpilot/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// tokenTTL is how long a minted API token stays valid.
const tokenTTL = 24 * time.Hour

// MintTokenHandler exchanges the shared API client key for a JWT. This is a
// single-operator service; there are no user accounts, just clients holding
// the key (the phone app, the CLI, a cron job).
func MintTokenHandler(c *gin.Context) {
	logger := getLogger(c)

	var req struct {
		ClientKey  string `json:"clientKey" binding:"required"`
		ClientName string `json:"clientName"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Invalid token request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if config.AppConfig.APIClientKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "token minting is not configured"})
		return
	}
	if req.ClientKey != config.AppConfig.APIClientKey {
		logger.Warn("Token mint rejected: bad client key")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid client key"})
		return
	}

	subject := req.ClientName
	if subject == "" {
		subject = "api-client"
	}

	token, err := utils.GenerateToken(subject, tokenTTL)
	if err != nil {
		logger.Error("Token generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token generation failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"expiresAt": time.Now().Add(tokenTTL).Unix(),
	})
}
