package mailer

import (
	"context"
	"log/slog"
	"sync"

	"cfp/internal/middleware"
)

// ConsoleMailer writes emails to the application log instead of
// sending them. It is the fallback when no SendGrid key is configured
// and the default in development and tests.
type ConsoleMailer struct {
	mu   sync.Mutex
	sent []Message
}

var _ Mailer = (*ConsoleMailer)(nil)

func NewConsoleMailer() *ConsoleMailer {
	return &ConsoleMailer{}
}

func (m *ConsoleMailer) Send(_ context.Context, msg Message) error {
	body, err := RenderBody(msg)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()

	middleware.Logger.Info("Email (console)",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("template", string(msg.Template)),
		slog.String("body", body),
	)
	return nil
}

func (m *ConsoleMailer) Healthy(_ context.Context) bool {
	return true
}

// Sent returns a copy of all messages recorded so far, used by tests.
func (m *ConsoleMailer) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.sent))
	copy(out, m.sent)
	return out
}
