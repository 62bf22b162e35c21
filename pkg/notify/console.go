package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Console prints notifications to a terminal.
type Console struct {
	Out io.Writer // default: os.Stdout
}

// Notify writes the message on its own line.
func (c *Console) Notify(_ context.Context, message string) error {
	out := c.Out
	if out == nil {
		out = os.Stdout
	}
	_, err := fmt.Fprintf(out, "NOTIFICATION: %s\n", message)
	return err
}

// Log emits notifications as warning records so they stand out in log files.
// A nil logger uses slog.Default().
func Log(logger *slog.Logger) Func {
	return func(ctx context.Context, message string) error {
		l := logger
		if l == nil {
			l = slog.Default()
		}
		l.WarnContext(ctx, "notification", "message", message)
		return nil
	}
}
