package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthStatus describes how the service is wired.
type HealthStatus struct {
	MailProvider    string
	CaptchaEnforced bool
}

type HealthHandler struct {
	status HealthStatus
}

func NewHealthHandler(status HealthStatus) *HealthHandler {
	return &HealthHandler{
		status: status,
	}
}

func (h *HealthHandler) Healthcheck(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")

	captcha := "enforced"
	if !h.status.CaptchaEnforced {
		captcha = "disabled"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"mail":    h.status.MailProvider,
		"captcha": captcha,
	})
}
