package services

import (
	"context"
	"time"

	"github.com/mountarc/mountarc-api/internal/models"
)

// DispatchServiceInterface defines the interface for form dispatch operations
type DispatchServiceInterface interface {
	Dispatch(ctx context.Context, req *models.SendEmailRequest) (*models.SendEmailResponse, error)
}

// CaptchaVerifier checks a reCAPTCHA token; nil means the submission passed.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token string) error
}

// EmailRenderer builds the notification and confirmation emails for a submission.
type EmailRenderer interface {
	Render(sub models.Submission, submittedAt time.Time, pageURL string) (notification, confirmation models.RenderedEmail, err error)
}
