// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package remoting

import (
	"context"

	"go.uber.org/zap"
)

// Connector is the protocol-agnostic entry point for remote calls.
// All application code should use this interface.
type Connector interface {
	// Invoke resolves the remote object called name and calls method on it.
	// The result is decoded into reply.
	Invoke(ctx context.Context, name, method string, args, reply interface{}) error
}

// Dispatcher executes a call against an already resolved endpoint.
// Implementations carry all protocol knowledge (JSON-RPC, ZAP, gRPC, ...).
type Dispatcher interface {
	Dispatch(ctx context.Context, endpoint Endpoint, method string, args, reply interface{}) error
}

// DispatcherFunc is a function adapter for Dispatcher
type DispatcherFunc func(ctx context.Context, endpoint Endpoint, method string, args, reply interface{}) error

func (f DispatcherFunc) Dispatch(ctx context.Context, endpoint Endpoint, method string, args, reply interface{}) error {
	return f(ctx, endpoint, method, args, reply)
}

// Server is the peer side of the ZAP transport.
type Server interface {
	// RegisterRaw registers a raw byte handler under a wire method key
	// ("<object path>/<method>", e.g. "/api/calc/Add").
	RegisterRaw(method string, handler RawHandler) error

	// Serve starts serving requests (blocks until the server is closed)
	Serve(ctx context.Context) error

	// Close stops the server
	Close() error

	// Addr returns the server's listen address
	Addr() string
}

// RawHandler handles raw byte RPC calls (for zero-copy)
type RawHandler func(ctx context.Context, payload []byte) ([]byte, error)

// Codec encodes/decodes RPC messages
type Codec interface {
	Encode(v interface{}) ([]byte, error)
	Decode(data []byte, v interface{}) error
}

// ServerOption configures servers
type ServerOption func(*serverOptions)

type serverOptions struct {
	logger *zap.Logger
}

// WithServerLogger sets the logger used to report handler failures
func WithServerLogger(l *zap.Logger) ServerOption {
	return func(o *serverOptions) { o.logger = l }
}
