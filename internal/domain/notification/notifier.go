package notification

import "context"

// Notifier is the fire-and-forget delivery capability implemented by an
// external collaborator. Failures are logged by callers and never block the
// primary operation.
type Notifier interface {
	Notify(ctx context.Context, userID, title, message, channel string) error
}

const (
	ChannelPush  = "push"
	ChannelEmail = "email"
)
