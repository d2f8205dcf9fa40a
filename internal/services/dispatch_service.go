package services

import (
	"context"
	"fmt"
	"time"

	"github.com/mountarc/mountarc-api/internal/models"
	"github.com/mountarc/mountarc-api/internal/ratelimit"
	"github.com/mountarc/mountarc-api/internal/validation"
	apperrors "github.com/mountarc/mountarc-api/pkg/errors"
	"github.com/mountarc/mountarc-api/pkg/logger"
	"github.com/mountarc/mountarc-api/pkg/mailer"
	"github.com/mountarc/mountarc-api/pkg/metrics"
	"go.uber.org/zap"
)

// Messages returned to the website.
const (
	MsgSuccess       = "Email sent successfully"
	MsgCaptchaFailed = "reCAPTCHA verification failed. Please try again."
	MsgInternal      = "Something went wrong. Please try again."
	MsgInvalidBody   = "Invalid request"

	defaultPageURL = "Unknown"
)

// DispatchConfig holds the addresses used for outbound mail.
type DispatchConfig struct {
	From            string
	ReplyTo         string
	RecipientEmail  string
	ExternalTimeout time.Duration
}

// DispatchService runs a form submission through captcha, rate limit, validation,
// rendering and delivery, stopping at the first failure.
type DispatchService struct {
	cfg       DispatchConfig
	captcha   CaptchaVerifier
	limiter   ratelimit.Store
	validator *validation.Validator
	renderer  EmailRenderer
	sender    mailer.Sender
	now       func() time.Time
}

// NewDispatchService creates a new dispatch service instance
func NewDispatchService(
	cfg DispatchConfig,
	captcha CaptchaVerifier,
	limiter ratelimit.Store,
	validator *validation.Validator,
	renderer EmailRenderer,
	sender mailer.Sender,
) *DispatchService {
	if cfg.ExternalTimeout <= 0 {
		cfg.ExternalTimeout = 10 * time.Second
	}

	return &DispatchService{
		cfg:       cfg,
		captcha:   captcha,
		limiter:   limiter,
		validator: validator,
		renderer:  renderer,
		sender:    sender,
		now:       time.Now,
	}
}

var _ DispatchServiceInterface = (*DispatchService)(nil)

// Dispatch handles one submission. Expected failures come back as a response with Success=false
// together with an error wrapping ErrCaptchaFailed, ErrRateLimited or ErrInvalidInput;
// anything else is an internal or provider error.
func (s *DispatchService) Dispatch(ctx context.Context, req *models.SendEmailRequest) (*models.SendEmailResponse, error) {
	formType := string(req.Type)
	if !req.Type.Valid() {
		formType = "unknown"
	}
	pageURL := req.PageURL
	if pageURL == "" {
		pageURL = defaultPageURL
	}

	if err := s.verifyCaptcha(ctx, req.RecaptchaToken); err != nil {
		metrics.FormSubmissions.WithLabelValues(formType, "captcha_failed").Inc()
		logger.Warn("reCAPTCHA verification failed",
			zap.String("form_type", formType),
			zap.Error(err))
		return failure(MsgCaptchaFailed), fmt.Errorf("%w: %w", apperrors.ErrCaptchaFailed, err)
	}

	if email := validation.ExtractEmail(req.Data); email != "" {
		if res := s.limiter.Check(email); !res.Allowed {
			metrics.FormSubmissions.WithLabelValues(formType, "rate_limited").Inc()
			logger.Info("Submission rate limited",
				zap.String("form_type", formType),
				zap.Duration("retry_after", res.RetryAfter))
			return failure(ratelimit.Message(res.RetryAfter)), &apperrors.RateLimitError{RetryAfter: res.RetryAfter}
		}
	}

	sub, fieldErrs := s.validator.Validate(req.Type, req.Data)
	if len(fieldErrs) > 0 {
		first := fieldErrs.First()
		metrics.FormSubmissions.WithLabelValues(formType, "invalid").Inc()
		logger.Debug("Submission failed validation",
			zap.String("form_type", formType),
			zap.String("field", first.Field),
			zap.String("reason", first.Message))
		return failure(first.Message), apperrors.InvalidInputError(first.Field, first.Message)
	}

	if sub.Type() == models.FormTypeUnsubscribe {
		// No subscriber store yet; the log record is processed by hand.
		logger.Info("Unsubscribe request received",
			zap.String("email", sub.SubmitterEmail()),
			zap.String("page_url", pageURL))
		metrics.FormSubmissions.WithLabelValues(formType, "success").Inc()
		return &models.SendEmailResponse{Success: true, Message: MsgSuccess}, nil
	}

	notification, confirmation, err := s.renderer.Render(sub, s.now(), pageURL)
	if err != nil {
		metrics.FormSubmissions.WithLabelValues(formType, "error").Inc()
		logger.Error("Failed to render emails", zap.String("form_type", formType), zap.Error(err))
		return failure(MsgInternal), fmt.Errorf("%w: %w", apperrors.ErrInternal, err)
	}

	err = s.send(ctx, models.RoleNotification, mailer.Message{
		From:    s.cfg.From,
		To:      []string{s.cfg.RecipientEmail},
		Subject: notification.Subject,
		HTML:    notification.HTML,
	})
	if err == nil {
		err = s.send(ctx, models.RoleConfirmation, mailer.Message{
			From:    s.cfg.From,
			To:      []string{sub.SubmitterEmail()},
			ReplyTo: s.cfg.ReplyTo,
			Subject: confirmation.Subject,
			HTML:    confirmation.HTML,
		})
	}
	if err != nil {
		metrics.FormSubmissions.WithLabelValues(formType, "error").Inc()
		logger.Error("Failed to send email",
			zap.String("form_type", formType),
			zap.String("provider", s.sender.Provider()),
			zap.Error(err))
		return failure(MsgInternal), err
	}

	metrics.FormSubmissions.WithLabelValues(formType, "success").Inc()
	logger.Info("Form submission dispatched",
		zap.String("form_type", formType),
		zap.String("page_url", pageURL))

	return &models.SendEmailResponse{Success: true, Message: MsgSuccess}, nil
}

func (s *DispatchService) verifyCaptcha(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ExternalTimeout)
	defer cancel()

	if err := s.captcha.Verify(ctx, token); err != nil {
		metrics.CaptchaVerifications.WithLabelValues("failed").Inc()
		return err
	}
	metrics.CaptchaVerifications.WithLabelValues("passed").Inc()
	return nil
}

func (s *DispatchService) send(ctx context.Context, role models.EmailRole, msg mailer.Message) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ExternalTimeout)
	defer cancel()

	provider := s.sender.Provider()
	id, err := s.sender.Send(ctx, msg)
	if err != nil {
		metrics.EmailsSent.WithLabelValues(provider, string(role), "error").Inc()
		return fmt.Errorf("failed to send %s email: %w", role, err)
	}

	metrics.EmailsSent.WithLabelValues(provider, string(role), "success").Inc()
	logger.Debug("Email sent",
		zap.String("role", string(role)),
		zap.String("provider", provider),
		zap.String("message_id", id))
	return nil
}

func failure(msg string) *models.SendEmailResponse {
	return &models.SendEmailResponse{Success: false, Error: msg}
}
