// Package memory provides an in-memory pubsub.Publisher that records
// published messages, used by unit tests.
package memory

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/tmforum-oda/reference-example-components/internal/pubsub"
)

// Message is a recorded publication.
type Message struct {
	Subject string
	Data    []byte
}

// Publisher records every published message.
type Publisher struct {
	mu       sync.Mutex
	messages []Message
	closed   atomic.Bool
}

var _ pubsub.Publisher = (*Publisher)(nil)

// NewPublisher creates an empty recording publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

func (p *Publisher) Publish(_ context.Context, subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	p.messages = append(p.messages, Message{Subject: subject, Data: buf})
	return nil
}

func (p *Publisher) Close() error {
	p.closed.Store(true)
	return nil
}

// Messages returns a snapshot of everything published so far.
func (p *Publisher) Messages() []Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Message, len(p.messages))
	copy(out, p.messages)
	return out
}
