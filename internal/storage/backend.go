// Package storage persists the client and reservation collections as JSON documents.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotExist is returned by a Backend when a document was never written.
	ErrNotExist = errors.New("document does not exist")

	// ErrMalformed is returned in strict mode for documents that cannot be decoded.
	ErrMalformed = errors.New("malformed document")
)

// Document names used by the Gateway.
const (
	ClientsDocument      = "clientes"
	ReservationsDocument = "reservas"
)

// Backend reads and writes whole documents by name.
// Write must replace the previous content atomically.
type Backend interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
	Close() error
}

// Ping checks that backend is reachable. Backends without a connection
// always report ready.
func Ping(ctx context.Context, backend Backend) error {
	switch b := backend.(type) {
	case interface{ Ping(context.Context) error }:
		return b.Ping(ctx)
	case interface{ PingContext(context.Context) error }:
		return b.PingContext(ctx)
	}
	return nil
}
