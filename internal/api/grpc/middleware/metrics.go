package middleware

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// RequestObserver records finished requests.
type RequestObserver interface {
	ObserveRequest(method, code string, d time.Duration)
}

// Metrics is a unary interceptor that reports request counts and latency.
type Metrics struct {
	observer RequestObserver
}

// NewMetrics creates a new Metrics middleware.
func NewMetrics(observer RequestObserver) *Metrics {
	return &Metrics{observer: observer}
}

// HandleGRPC times the handler and records its status code.
func (m *Metrics) HandleGRPC(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	m.observer.ObserveRequest(info.FullMethod, status.Code(err).String(), time.Since(start))
	return resp, err
}
