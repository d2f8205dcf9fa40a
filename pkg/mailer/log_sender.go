package mailer

import (
	"context"

	"github.com/mountarc/mountarc-api/pkg/logger"
	"go.uber.org/zap"
)

// LogSender drops every message after logging it. It stands in for Resend when no API key is set.
type LogSender struct{}

var _ Sender = LogSender{}

func (LogSender) Provider() string {
	return "log"
}

func (LogSender) Send(_ context.Context, msg Message) (string, error) {
	logger.Warn("Email delivery disabled, message not sent",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject))
	return "", nil
}
