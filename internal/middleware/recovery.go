package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mountarc/mountarc-api/internal/models"
	"github.com/mountarc/mountarc-api/pkg/logger"
	"go.uber.org/zap"
)

// RecoveryMiddleware turns a panic into the generic JSON 500 so the website always gets its usual body.
func RecoveryMiddleware(message string) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		err := fmt.Errorf("panic: %v", recovered)
		_ = c.Error(err) //nolint:errcheck

		logger.Error("Recovered from panic",
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", RequestID(c)),
			zap.Any("panic", recovered),
			zap.Stack("stack"))

		c.AbortWithStatusJSON(http.StatusInternalServerError, models.SendEmailResponse{
			Success: false,
			Error:   message,
		})
	})
}
