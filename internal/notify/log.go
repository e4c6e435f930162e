package notify

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// LogSender writes messages to the log instead of sending them.
// It is the default in development.
type LogSender struct{}

// Send logs the message and returns a generated message ID.
func (LogSender) Send(ctx context.Context, phone, body string) (string, error) {
	id := "log-" + uuid.New().String()
	slog.InfoContext(ctx, "SMS (log only)", "to", phone, "message_id", id, "body", body)
	return id, nil
}
