package services_test

import (
	"context"
	"time"

	"github.com/mountarc/mountarc-api/internal/models"
	"github.com/mountarc/mountarc-api/internal/ratelimit"
	"github.com/mountarc/mountarc-api/pkg/mailer"
	"github.com/stretchr/testify/mock"
)

// MockCaptchaVerifier is a mock implementation of CaptchaVerifier
type MockCaptchaVerifier struct {
	mock.Mock
}

func (m *MockCaptchaVerifier) Verify(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// MockRateLimiter is a mock implementation of ratelimit.Store
type MockRateLimiter struct {
	mock.Mock
}

func (m *MockRateLimiter) Check(identity string) ratelimit.Result {
	args := m.Called(identity)
	return args.Get(0).(ratelimit.Result)
}

// MockRenderer is a mock implementation of EmailRenderer
type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(sub models.Submission, submittedAt time.Time, pageURL string) (models.RenderedEmail, models.RenderedEmail, error) {
	args := m.Called(sub, submittedAt, pageURL)
	return args.Get(0).(models.RenderedEmail), args.Get(1).(models.RenderedEmail), args.Error(2)
}

// MockSender is a mock implementation of mailer.Sender
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg mailer.Message) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

func (m *MockSender) Provider() string {
	return "mock"
}
