package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/dtroode/reelscore-server/internal/logger"
	"github.com/dtroode/reelscore-server/internal/model"
)

// MaxDeliver bounds redelivery of a failing job.
const MaxDeliver = 3

// Handler processes one job.
type Handler interface {
	Process(ctx context.Context, job model.Job) error
}

type consumerCreator interface {
	CreateOrUpdateConsumer(ctx context.Context, stream string, cfg jetstream.ConsumerConfig) (jetstream.Consumer, error)
}

// message is the part of jetstream.Msg the worker uses.
type message interface {
	Data() []byte
	Ack() error
	Nak() error
	Term() error
}

// Worker consumes jobs from a durable consumer and hands them to a Handler.
type Worker struct {
	js      consumerCreator
	stream  string
	subject string
	name    string
	handler Handler
	logger  *logger.Logger

	mu         sync.Mutex
	consumeCtx jetstream.ConsumeContext
	cancel     context.CancelFunc
}

func NewWorker(js consumerCreator, stream, subject, name string, handler Handler, l *logger.Logger) *Worker {
	return &Worker{
		js:      js,
		stream:  stream,
		subject: subject,
		name:    name,
		handler: handler,
		logger:  l,
	}
}

// Start subscribes and returns. Messages are processed on the client's
// delivery goroutine until Stop is called.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.consumeCtx != nil {
		return nil
	}

	consumer, err := w.js.CreateOrUpdateConsumer(ctx, w.stream, jetstream.ConsumerConfig{
		Name:          w.name,
		Durable:       w.name,
		FilterSubject: w.subject,
		DeliverPolicy: jetstream.DeliverAllPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
		MaxDeliver:    MaxDeliver,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer %s: %w", w.name, err)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	consumeCtx, err := consumer.Consume(func(msg jetstream.Msg) {
		w.handle(runCtx, msg)
	})
	if err != nil {
		cancel()
		return fmt.Errorf("failed to start consuming %s: %w", w.name, err)
	}

	w.consumeCtx = consumeCtx
	w.cancel = cancel

	w.logger.Info("Mail worker started", "stream", w.stream, "consumer", w.name)
	return nil
}

func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.consumeCtx == nil {
		return
	}
	w.consumeCtx.Stop()
	w.cancel()
	w.consumeCtx = nil
	w.cancel = nil

	w.logger.Info("Mail worker stopped", "consumer", w.name)
}

// handle acks processed jobs and naks failures for redelivery. Messages that
// can never succeed, an undecodable envelope or a job the handler reports as
// model.ErrUnprocessableJob, are terminated.
func (w *Worker) handle(ctx context.Context, msg message) {
	var job model.Job
	if err := json.Unmarshal(msg.Data(), &job); err != nil {
		w.logger.Error("Mail worker: malformed job dropped", "error", err)
		if err := msg.Term(); err != nil {
			w.logger.Error("Mail worker: failed to terminate message", "error", err)
		}
		return
	}

	err := w.handler.Process(ctx, job)
	if errors.Is(err, model.ErrUnprocessableJob) {
		w.logger.Error("Mail worker: unprocessable job dropped", "job", job.Name, "error", err)
		if err := msg.Term(); err != nil {
			w.logger.Error("Mail worker: failed to terminate message", "error", err)
		}
		return
	}
	if err != nil {
		w.logger.Error("Mail worker: job failed", "job", job.Name, "error", err)
		if err := msg.Nak(); err != nil {
			w.logger.Error("Mail worker: failed to nak message", "error", err)
		}
		return
	}

	if err := msg.Ack(); err != nil {
		w.logger.Error("Mail worker: failed to ack message", "error", err)
		return
	}
	w.logger.Debug("Mail worker: job done", "job", job.Name)
}
