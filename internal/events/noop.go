package events

import "context"

// NoopPublisher discards every event. It stands in for NATS when
// EVEBOT_NATS_URL is unset, so callers never branch on bus presence.
type NoopPublisher struct{}

func (n *NoopPublisher) Publish(ctx context.Context, topic string, event any) error {
	return nil
}

func (n *NoopPublisher) Close() error {
	return nil
}
