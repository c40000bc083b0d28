package driven

import "context"

// Publisher delivers messages to the message bus. One call is one
// delivery attempt: the payload goes to "<prefix>/<topic>" and, when
// attributes are supplied, a companion JSON message goes best-effort to
// "<prefix>/<topic>/attributes". Retry policy belongs to the caller.
type Publisher interface {
	Publish(ctx context.Context, topic, payload string, attributes map[string]any) error

	// Close disconnects from the broker.
	Close()
}
