package queue

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dtroode/reelscore-server/internal/model"
	"github.com/dtroode/reelscore-server/internal/testutil"
)

type fakeMessage struct {
	data  []byte
	acked bool
	naked bool
	termd bool
}

func (m *fakeMessage) Data() []byte { return m.data }
func (m *fakeMessage) Ack() error   { m.acked = true; return nil }
func (m *fakeMessage) Nak() error   { m.naked = true; return nil }
func (m *fakeMessage) Term() error  { m.termd = true; return nil }

type handlerFunc func(ctx context.Context, job model.Job) error

func (f handlerFunc) Process(ctx context.Context, job model.Job) error { return f(ctx, job) }

type fakeConsumerCreator struct {
	cfg jetstream.ConsumerConfig
	err error
}

func (f *fakeConsumerCreator) CreateOrUpdateConsumer(_ context.Context, _ string, cfg jetstream.ConsumerConfig) (jetstream.Consumer, error) {
	f.cfg = cfg
	return nil, f.err
}

func TestWorker_Handle(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		handleErr error
		wantAck   bool
		wantNak   bool
		wantTerm  bool
	}{
		{
			name:    "processed job is acked",
			data:    `{"name":"confirmation","payload":{"email":"a@b.c"}}`,
			wantAck: true,
		},
		{
			name:      "failed job is naked for redelivery",
			data:      `{"name":"confirmation","payload":{}}`,
			handleErr: errors.New("smtp down"),
			wantNak:   true,
		},
		{
			name:      "undecodable payload is terminated without redelivery",
			data:      `{"name":"confirmation","payload":[1,2]}`,
			handleErr: fmt.Errorf("failed to decode confirmation job: %w", model.ErrUnprocessableJob),
			wantTerm:  true,
		},
		{
			name:     "malformed envelope is terminated",
			data:     `not json`,
			wantTerm: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen model.Job
			h := handlerFunc(func(_ context.Context, job model.Job) error {
				seen = job
				return tt.handleErr
			})
			w := NewWorker(nil, "MAIL", "mail.jobs", "mail-worker", h, testutil.MakeNoopLogger())
			msg := &fakeMessage{data: []byte(tt.data)}

			w.handle(context.Background(), msg)

			assert.Equal(t, tt.wantAck, msg.acked)
			assert.Equal(t, tt.wantNak, msg.naked)
			assert.Equal(t, tt.wantTerm, msg.termd)
			if tt.data != "not json" {
				assert.Equal(t, model.JobConfirmation, seen.Name)
			}
		})
	}
}

func TestWorker_Start_ConsumerError(t *testing.T) {
	defer goleak.VerifyNone(t)

	js := &fakeConsumerCreator{err: errors.New("stream not found")}
	w := NewWorker(js, "MAIL", "mail.jobs", "mail-worker", handlerFunc(nil), testutil.MakeNoopLogger())

	err := w.Start(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create consumer mail-worker")
	assert.Equal(t, "mail-worker", js.cfg.Durable)
	assert.Equal(t, "mail.jobs", js.cfg.FilterSubject)
	assert.Equal(t, jetstream.AckExplicitPolicy, js.cfg.AckPolicy)
	assert.Equal(t, MaxDeliver, js.cfg.MaxDeliver)

	w.Stop()
}
