// Package pubsub provides a small publish abstraction used to mirror
// event envelopes onto a message bus alongside webhook delivery.
package pubsub

import "context"

// Publisher publishes messages to a subject.
type Publisher interface {
	// Publish sends a message to the specified subject.
	Publish(ctx context.Context, subject string, data []byte) error

	// Close releases resources.
	Close() error
}
