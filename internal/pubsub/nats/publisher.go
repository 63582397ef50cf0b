// Package nats implements pubsub.Publisher over a NATS connection.
package nats

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/tmforum-oda/reference-example-components/internal/pubsub"
)

type publisher struct {
	conn          *nats.Conn
	subjectPrefix string
}

// NewPublisher connects to the NATS server at url and returns a
// Publisher. The subjectPrefix, when non-empty, is prepended to every
// published subject.
func NewPublisher(url, subjectPrefix string) (pubsub.Publisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return &publisher{conn: conn, subjectPrefix: subjectPrefix}, nil
}

func (p *publisher) Publish(_ context.Context, subject string, data []byte) error {
	fullSubject := subject
	if p.subjectPrefix != "" {
		fullSubject = p.subjectPrefix + "." + subject
	}
	if err := p.conn.Publish(fullSubject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", fullSubject, err)
	}
	return nil
}

func (p *publisher) Close() error {
	p.conn.Close()
	return nil
}
