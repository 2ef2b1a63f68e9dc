package model

import (
	"context"
	"net"
)

// SecurityLayer opens the listener the API is served on. Implementations
// decide whether connections are wrapped in TLS.
type SecurityLayer interface {
	Listen(protocol, addr string) (net.Listener, error)
}

// Server is a long-running network server with graceful shutdown.
// Start blocks until the server stops; Stop must make it return.
type Server interface {
	Start(securityLayer SecurityLayer) error
	Stop(ctx context.Context) error
	Address() string
}
