package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/mountarc/mountarc-api/internal/models"
)

// attachError attaches err to the gin context so the observability middleware
// can include the reason in the request log. c.Error() returns *gin.Error (not
// the error interface), so we suppress errcheck here intentionally.
func attachError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err) //nolint:errcheck
	}
}

// respondError sends the standard failure body and attaches err for the request log.
func respondError(c *gin.Context, status int, message string, err error) {
	attachError(c, err)
	c.JSON(status, models.SendEmailResponse{Success: false, Error: message})
}
