package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mountarc/mountarc-api/pkg/circuitbreaker"
	apperrors "github.com/mountarc/mountarc-api/pkg/errors"
	"github.com/mountarc/mountarc-api/pkg/httpclient"
	"github.com/mountarc/mountarc-api/pkg/logger"
	"github.com/mountarc/mountarc-api/pkg/metrics"
	"github.com/mountarc/mountarc-api/pkg/tracing"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	DefaultResendURL = "https://api.resend.com/emails"
	providerResend   = "resend"
)

// APIError is a non-2xx answer from Resend.
type APIError struct {
	StatusCode int
	Name       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("resend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("resend returned status %d: %s: %s", e.StatusCode, e.Name, e.Message)
}

// clientSide reports whether the request itself was rejected, as opposed to a provider outage.
func (e *APIError) clientSide() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500 && e.StatusCode != http.StatusTooManyRequests
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	ReplyTo []string `json:"reply_to,omitempty"`
}

type resendResponse struct {
	ID string `json:"id"`
}

type resendErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

// ResendConfig holds credentials for the Resend HTTP API.
type ResendConfig struct {
	APIKey string
	APIURL string
}

// ResendClient sends email through https://resend.com behind a circuit breaker.
type ResendClient struct {
	cfg        ResendConfig
	httpClient httpclient.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewResendClient creates a Resend sender
func NewResendClient(cfg ResendConfig, httpClient httpclient.Client) *ResendClient {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultResendURL
	}

	breakerCfg := circuitbreaker.DefaultConfig(providerResend)
	isSuccessful := breakerCfg.IsSuccessful
	breakerCfg.IsSuccessful = func(err error) bool {
		var apiErr *APIError
		if apperrors.As(err, &apiErr) && apiErr.clientSide() {
			return true
		}
		return isSuccessful(err)
	}

	return &ResendClient{
		cfg:        cfg,
		httpClient: httpClient,
		breaker:    circuitbreaker.NewCircuitBreaker(breakerCfg),
	}
}

var _ Sender = (*ResendClient)(nil)

func (c *ResendClient) Provider() string {
	return providerResend
}

// Send posts msg to Resend. Failures are wrapped as ErrProviderUnavailable.
func (c *ResendClient) Send(ctx context.Context, msg Message) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "resend.send")
	defer span.End()

	start := time.Now()
	id, err := circuitbreaker.Execute(c.breaker, func() (string, error) {
		return c.post(ctx, msg)
	})
	duration := metrics.MeasureDuration(start)

	status := "success"
	switch {
	case err != nil && circuitbreaker.IsCircuitOpen(c.breaker):
		status = "circuit_open"
	case err != nil:
		status = "error"
	}
	metrics.EmailSendDuration.WithLabelValues(providerResend, status).Observe(duration)
	logger.LogAPICall(providerResend, "send_email", status, duration,
		zap.String("subject", msg.Subject),
		zap.Int("recipients", len(msg.To)),
		zap.String("message_id", id),
		zap.Error(err))

	if err != nil {
		span.RecordError(err)
		return "", apperrors.ProviderError(providerResend, err)
	}

	span.SetAttributes(attribute.String("email.id", id))
	return id, nil
}

func (c *ResendClient) post(ctx context.Context, msg Message) (string, error) {
	payload := resendRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
	}
	if msg.ReplyTo != "" {
		payload.ReplyTo = []string{msg.ReplyTo}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errResp resendErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil {
			apiErr.Name = errResp.Name
			apiErr.Message = errResp.Message
		}
		return "", apiErr
	}

	var result resendResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return result.ID, nil
}
