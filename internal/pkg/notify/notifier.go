package notify

import (
	"context"
	"log/slog"
)

// LogNotifier is the default notification.Notifier: it records deliveries in
// the structured log. A push or email gateway can replace it without touching
// the services.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Notify(ctx context.Context, userID, title, message, channel string) error {
	slog.Info("notification dispatched",
		"user_id", userID,
		"channel", channel,
		"title", title,
		"message", message,
	)
	return nil
}
