package ports

import "context"

// Port: outbound notifications for failures and rescue operations.
// Publishing is best-effort; the monitor logs and continues on error.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// NoopPublisher discards events; used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }
