package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	"github.com/dtroode/reelscore-server/internal/apierror"
)

type observation struct {
	method string
	code   string
	d      time.Duration
}

type recordingObserver struct {
	seen []observation
}

func (r *recordingObserver) ObserveRequest(method, code string, d time.Duration) {
	r.seen = append(r.seen, observation{method: method, code: code, d: d})
}

func TestMetrics_HandleGRPC(t *testing.T) {
	obs := &recordingObserver{}
	m := NewMetrics(obs)
	info := &grpc.UnaryServerInfo{FullMethod: "/reelscore.Auth/Refresh"}

	resp, err := m.HandleGRPC(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)

	_, err = m.HandleGRPC(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		return nil, apierror.NewErrInvalidRefreshToken()
	})
	require.Error(t, err)

	require.Len(t, obs.seen, 2)
	assert.Equal(t, "/reelscore.Auth/Refresh", obs.seen[0].method)
	assert.Equal(t, "OK", obs.seen[0].code)
	assert.Equal(t, "Unauthenticated", obs.seen[1].code)
	assert.GreaterOrEqual(t, obs.seen[1].d, time.Duration(0))
}
