package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mountarc/mountarc-api/internal/models"
	"github.com/mountarc/mountarc-api/internal/services"
	apperrors "github.com/mountarc/mountarc-api/pkg/errors"
)

type SendEmailHandler struct {
	service services.DispatchServiceInterface
}

func NewSendEmailHandler(service services.DispatchServiceInterface) *SendEmailHandler {
	return &SendEmailHandler{service: service}
}

// SendEmail handles POST /api/send-email.
func (h *SendEmailHandler) SendEmail(c *gin.Context) {
	var req models.SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, services.MsgInvalidBody, err)
			return
		}
		respondError(c, http.StatusBadRequest, services.MsgInvalidBody, err)
		return
	}

	resp, err := h.service.Dispatch(c.Request.Context(), &req)
	if err != nil {
		status := statusFor(err)

		var rlErr *apperrors.RateLimitError
		if apperrors.As(err, &rlErr) {
			c.Header("Retry-After", strconv.Itoa(rlErr.RetryAfterSeconds()))
		}

		// Provider and internal details stay in the log.
		if resp == nil || status == http.StatusInternalServerError {
			resp = &models.SendEmailResponse{Success: false, Error: services.MsgInternal}
		}
		attachError(c, err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func statusFor(err error) int {
	switch {
	case apperrors.Is(err, apperrors.ErrCaptchaFailed), apperrors.Is(err, apperrors.ErrInvalidInput):
		return http.StatusBadRequest
	case apperrors.Is(err, apperrors.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
