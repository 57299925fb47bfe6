package events

// Subscriber consumes bot events from the bus; the CLI's bus command
// and downstream tooling read through it.
type Subscriber interface {
	// Subscribe delivers raw event payloads on the returned channel.
	// Call the returned cancel function to unsubscribe and close the
	// channel.
	Subscribe(topic string) (<-chan []byte, func(), error)
	Close() error
}
