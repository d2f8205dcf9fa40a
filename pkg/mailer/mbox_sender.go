package mailer

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/quotedprintable"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-mbox"
	"github.com/google/uuid"
	"github.com/mountarc/mountarc-api/pkg/logger"
	"go.uber.org/zap"
)

// MboxSender appends messages to a local mbox file so they can be inspected with any mail client.
type MboxSender struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewMboxSender creates the parent directory of path if needed.
func NewMboxSender(path string) (*MboxSender, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create mbox directory: %w", err)
	}
	return &MboxSender{path: path, now: time.Now}, nil
}

var _ Sender = (*MboxSender)(nil)

func (s *MboxSender) Provider() string {
	return "mbox"
}

func (s *MboxSender) Send(ctx context.Context, msg Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to open mbox: %w", err)
	}
	defer f.Close()

	now := s.now()
	id := uuid.NewString()

	w := mbox.NewWriter(f)
	mw, err := w.CreateMessage(envelopeSender(msg.From), now)
	if err != nil {
		return "", fmt.Errorf("failed to start mbox message: %w", err)
	}
	if err := writeMessage(mw, msg, id, now); err != nil {
		return "", fmt.Errorf("failed to write mbox message: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close mbox message: %w", err)
	}

	logger.Info("Email written to mbox",
		zap.String("path", s.path),
		zap.String("message_id", id),
		zap.String("subject", msg.Subject))

	return id, nil
}

func writeMessage(w io.Writer, msg Message, id string, date time.Time) error {
	var b strings.Builder
	header := func(k, v string) {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(v)
		b.WriteString("\r\n")
	}

	header("From", msg.From)
	header("To", strings.Join(msg.To, ", "))
	if msg.ReplyTo != "" {
		header("Reply-To", msg.ReplyTo)
	}
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Date", date.Format(time.RFC1123Z))
	header("Message-ID", "<"+id+"@mountarc.local>")
	header("MIME-Version", "1.0")
	header("Content-Type", "text/html; charset=utf-8")
	header("Content-Transfer-Encoding", "quoted-printable")
	b.WriteString("\r\n")

	if _, err := w.Write([]byte(b.String())); err != nil {
		return err
	}

	qp := quotedprintable.NewWriter(w)
	if _, err := qp.Write([]byte(msg.HTML)); err != nil {
		return err
	}
	return qp.Close()
}

// envelopeSender extracts the bare address for the mbox "From " line.
func envelopeSender(from string) string {
	if addr, err := mail.ParseAddress(from); err == nil {
		return addr.Address
	}
	return "MAILER-DAEMON"
}
