// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package remoting

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// Mux dispatches each call with the dispatcher registered for the endpoint's
// URL scheme. Dispatchers are built on first use and reused afterwards.
type Mux struct {
	opts []DispatchOption

	mu          sync.Mutex
	dispatchers map[string]Dispatcher
	closed      bool
}

var _ Dispatcher = (*Mux)(nil)

// NewMux creates a Mux building transports with opts
func NewMux(opts ...DispatchOption) *Mux {
	return &Mux{
		opts:        opts,
		dispatchers: make(map[string]Dispatcher),
	}
}

// Handle makes d serve every endpoint with the given scheme
func (m *Mux) Handle(scheme string, d Dispatcher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatchers[scheme] = d
}

func (m *Mux) Dispatch(ctx context.Context, endpoint Endpoint, method string, args, reply interface{}) error {
	d, err := m.dispatcher(endpoint.Scheme())
	if err != nil {
		return err
	}
	return d.Dispatch(ctx, endpoint, method, args, reply)
}

func (m *Mux) dispatcher(scheme string) (Dispatcher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrConnectorClosed
	}
	if d, ok := m.dispatchers[scheme]; ok {
		return d, nil
	}
	d, err := NewDispatcher(scheme, m.opts...)
	if err != nil {
		return nil, err
	}
	m.dispatchers[scheme] = d
	return d, nil
}

// Close closes every dispatcher that holds connections
func (m *Mux) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true

	var errs []error
	for scheme, d := range m.dispatchers {
		if closer, ok := d.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s dispatcher: %w", scheme, err))
			}
		}
	}
	return errors.Join(errs...)
}
