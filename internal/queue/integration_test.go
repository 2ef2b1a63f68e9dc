//go:build integration

package queue_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dtroode/reelscore-server/internal/model"
	"github.com/dtroode/reelscore-server/internal/queue"
	"github.com/dtroode/reelscore-server/internal/testutil"
)

var natsURL string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "nats:2-alpine",
			Cmd:          []string{"-js"},
			ExposedPorts: []string{"4222/tcp"},
			WaitingFor:   wait.ForListeningPort("4222/tcp").WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "4222")
	if err != nil {
		panic(err)
	}
	natsURL = fmt.Sprintf("nats://%s:%s", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

type countingHandler struct {
	jobs   chan model.Job
	failed atomic.Int32
	fails  int32
}

func (h *countingHandler) Process(_ context.Context, job model.Job) error {
	if h.failed.Load() < h.fails {
		h.failed.Add(1)
		return fmt.Errorf("transient")
	}
	h.jobs <- job
	return nil
}

func TestDispatcherWorker_RoundTrip(t *testing.T) {
	ctx := context.Background()
	nc, err := nats.Connect(natsURL)
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	js, err := jetstream.New(nc)
	require.NoError(t, err)
	require.NoError(t, queue.EnsureStream(ctx, js, "MAIL", "mail.jobs"))

	h := &countingHandler{jobs: make(chan model.Job, 1), fails: 1}
	w := queue.NewWorker(js, "MAIL", "mail.jobs", "mail-worker", h, testutil.MakeNoopLogger())
	require.NoError(t, w.Start(ctx))
	t.Cleanup(w.Stop)

	d := queue.NewDispatcher(js, "mail.jobs")
	require.NoError(t, d.Enqueue(ctx, model.JobConfirmation, model.ConfirmationJob{Email: "a@example.com", Name: "a", Token: "t"}))

	select {
	case job := <-h.jobs:
		var payload model.ConfirmationJob
		require.NoError(t, json.Unmarshal(job.Payload, &payload))
		assert.Equal(t, "t", payload.Token)
		assert.Equal(t, int32(1), h.failed.Load(), "first delivery failed and was redelivered")
	case <-time.After(30 * time.Second):
		t.Fatal("job was not delivered")
	}
}
