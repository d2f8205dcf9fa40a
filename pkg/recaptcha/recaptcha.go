package recaptcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mountarc/mountarc-api/pkg/httpclient"
	"github.com/mountarc/mountarc-api/pkg/logger"
	"github.com/mountarc/mountarc-api/pkg/metrics"
	"github.com/mountarc/mountarc-api/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"
	DefaultMinScore  = 0.5
)

var (
	// ErrVerificationFailed is returned when Google rejects the token.
	ErrVerificationFailed = errors.New("recaptcha verification failed")
	// ErrScoreTooLow is returned when the v3 score is under the threshold.
	ErrScoreTooLow = errors.New("recaptcha score too low")
)

// Response represents the response from Google's reCAPTCHA verification API
type Response struct {
	Success     bool     `json:"success"`
	Score       float64  `json:"score"`
	Action      string   `json:"action"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
}

// Config controls a Verifier.
type Config struct {
	SecretKey string
	// Enforced=false turns the verifier into an explicit pass-through.
	Enforced  bool
	MinScore  float64
	VerifyURL string
}

// Verifier handles reCAPTCHA v3 verification
type Verifier struct {
	cfg        Config
	httpClient httpclient.Client
}

// NewVerifier creates a new reCAPTCHA verifier
func NewVerifier(cfg Config, httpClient httpclient.Client) *Verifier {
	if cfg.VerifyURL == "" {
		cfg.VerifyURL = DefaultVerifyURL
	}
	if cfg.MinScore == 0 {
		cfg.MinScore = DefaultMinScore
	}
	if !cfg.Enforced {
		logger.Warn("reCAPTCHA verification is DISABLED - all form submissions will be accepted without a captcha check")
	}

	return &Verifier{
		cfg:        cfg,
		httpClient: httpClient,
	}
}

// Enforced reports whether tokens are actually checked.
func (v *Verifier) Enforced() bool {
	return v.cfg.Enforced
}

// Verify checks token with Google's API. A nil error means the submission passed;
// any transport or decoding problem is reported as a failure.
func (v *Verifier) Verify(ctx context.Context, token string) error {
	if !v.cfg.Enforced {
		logger.Warn("Skipping reCAPTCHA verification (open mode)")
		return nil
	}

	ctx, span := tracing.StartSpan(ctx, "recaptcha.verify")
	defer span.End()

	start := time.Now()
	result, err := v.siteVerify(ctx, token)
	duration := metrics.MeasureDuration(start)
	if err != nil {
		logger.LogAPICall("recaptcha", "siteverify", "error", duration, zap.Error(err))
		span.RecordError(err)
		return err
	}
	logger.LogAPICall("recaptcha", "siteverify", "success", duration)

	span.SetAttributes(
		attribute.Bool("recaptcha.success", result.Success),
		attribute.Float64("recaptcha.score", result.Score),
		attribute.String("recaptcha.action", result.Action),
	)

	if !result.Success {
		return fmt.Errorf("%w: %v", ErrVerificationFailed, result.ErrorCodes)
	}
	if result.Score < v.cfg.MinScore {
		return fmt.Errorf("%w: %.2f < %.2f", ErrScoreTooLow, result.Score, v.cfg.MinScore)
	}

	logger.Debug("reCAPTCHA verified",
		zap.Float64("score", result.Score),
		zap.String("action", result.Action),
		zap.String("hostname", result.Hostname))

	return nil
}

func (v *Verifier) siteVerify(ctx context.Context, token string) (*Response, error) {
	data := url.Values{}
	data.Set("secret", v.cfg.SecretKey)
	data.Set("response", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.cfg.VerifyURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build recaptcha request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to verify recaptcha: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to verify recaptcha: unexpected status %d", resp.StatusCode)
	}

	var result Response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode recaptcha response: %w", err)
	}

	return &result, nil
}
