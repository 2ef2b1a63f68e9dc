// Package server provides listeners for the gRPC server: TLS when a
// certificate is configured, plain TCP otherwise.
package server

import (
	"crypto/tls"
	"fmt"
	"net"

	"github.com/dtroode/reelscore-server/internal/model"
)

var (
	_ model.SecurityLayer = (*TLSListener)(nil)
	_ model.SecurityLayer = (*PlainListener)(nil)
)

// TLSListener represents a TLS-enabled network listener.
// It provides secure network connections using a certificate loaded from disk.
type TLSListener struct {
	certFileName       string
	privateKeyFileName string
}

// NewTLSListener creates a new TLSListener instance.
// It initializes a TLS listener with the specified certificate and private key files.
//
// Parameters:
//   - certFileName: Path to the PEM encoded TLS certificate file
//   - privateKeyFileName: Path to the PEM encoded private key file
//
// Returns a pointer to the newly created TLSListener instance.
func NewTLSListener(certFileName, privateKeyFileName string) *TLSListener {
	return &TLSListener{
		certFileName:       certFileName,
		privateKeyFileName: privateKeyFileName,
	}
}

// Listen creates a TLS-enabled network listener.
// It loads the certificate and private key, then creates a secure listener
// that advertises h2 over ALPN, which gRPC clients require.
//
// Parameters:
//   - protocol: The network protocol (typically "tcp")
//   - addr: The address to listen on
//
// Returns a TLS-enabled network listener or an error if setup fails.
func (l *TLSListener) Listen(protocol, addr string) (net.Listener, error) {
	cert, err := tls.LoadX509KeyPair(l.certFileName, l.privateKeyFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
	}

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
		NextProtos:   []string{"h2"},
	}

	ln, err := tls.Listen(protocol, addr, tlsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return ln, nil
}

// PlainListener represents a plain (non-TLS) network listener.
// It is meant for local development and deployments that terminate TLS in
// front of the server.
type PlainListener struct{}

// NewPlainListener creates a new PlainListener instance.
//
// Returns a pointer to the newly created PlainListener instance.
func NewPlainListener() *PlainListener {
	return &PlainListener{}
}

// Listen creates a plain network listener.
// It creates an unencrypted listener on the specified address.
//
// Parameters:
//   - protocol: The network protocol (typically "tcp")
//   - addr: The address to listen on
//
// Returns a plain network listener or an error if setup fails.
func (l *PlainListener) Listen(protocol, addr string) (net.Listener, error) {
	ln, err := net.Listen(protocol, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return ln, nil
}
