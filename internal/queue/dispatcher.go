// Package queue carries background jobs over NATS JetStream.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/dtroode/reelscore-server/internal/model"
)

type publisher interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

type streamCreator interface {
	CreateOrUpdateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error)
}

var _ model.Dispatcher = (*Dispatcher)(nil)

// Dispatcher publishes jobs to a JetStream subject.
type Dispatcher struct {
	js      publisher
	subject string
}

func NewDispatcher(js publisher, subject string) *Dispatcher {
	return &Dispatcher{
		js:      js,
		subject: subject,
	}
}

// Enqueue wraps payload into a model.Job and publishes it. It returns once the
// stream has stored the message; processing happens later.
func (d *Dispatcher) Enqueue(ctx context.Context, jobName string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s job: %w", jobName, err)
	}

	data, err := json.Marshal(model.Job{Name: jobName, Payload: raw})
	if err != nil {
		return fmt.Errorf("failed to marshal job envelope: %w", err)
	}

	if _, err := d.js.Publish(ctx, d.subject, data); err != nil {
		return fmt.Errorf("failed to publish %s job: %w", jobName, err)
	}
	return nil
}

// EnsureStream creates the work-queue stream holding jobs for subject.
func EnsureStream(ctx context.Context, js streamCreator, name, subject string) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      name,
		Subjects:  []string{subject},
		Retention: jetstream.WorkQueuePolicy,
		Storage:   jetstream.FileStorage,
	})
	if err != nil {
		return fmt.Errorf("failed to create stream %s: %w", name, err)
	}
	return nil
}
