// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package remoting

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"
)

// Open builds a connector from a file configuration. Calls are routed by the
// endpoint scheme through a Mux configured from cfg.HTTP.
func Open(cfg *Config, opts ...ConnectorOption) (*URLConnector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base, err := ParseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	o := &connectorOptions{}
	for _, opt := range opts {
		opt(o)
	}
	dispatchOpts := append(cfg.dispatchOptions(), WithDispatchLogger(o.logger))

	config, err := NewServiceConfig(base)
	if err != nil {
		return nil, err
	}
	connectorOpts := append([]ConnectorOption{WithMaxCachedEndpoints(cfg.MaxCachedEndpoints)}, opts...)
	return NewURLConnector(config, NewMux(dispatchOpts...), connectorOpts...), nil
}

// Listen creates a ZAP server listening on addr
func Listen(addr string, opts ...ServerOption) (Server, error) {
	o := &serverOptions{}
	for _, opt := range opts {
		opt(o)
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &zapServer{
		listener: listener,
		handlers: make(map[string]RawHandler),
		logger:   o.logger,
	}, nil
}

// zapDispatcher implements Dispatcher over ZAP, keeping one multiplexed
// connection per endpoint host.
type zapDispatcher struct {
	codec  Codec
	logger *zap.Logger

	mu     sync.Mutex
	conns  map[string]*ZAPConn
	closed bool
}

func newZAPDispatcher(o *dispatchOptions) (Dispatcher, error) {
	return &zapDispatcher{
		codec:  o.codec,
		logger: o.logger,
		conns:  make(map[string]*ZAPConn),
	}, nil
}

func (d *zapDispatcher) Dispatch(ctx context.Context, endpoint Endpoint, method string, args, reply interface{}) error {
	payload, err := encodeArgs(d.codec, args)
	if err != nil {
		return fmt.Errorf("encode args: %w", err)
	}

	conn, err := d.conn(ctx, endpoint.Host())
	if err != nil {
		return err
	}

	resp, err := conn.Call(ctx, methodPath(endpoint, method), payload)
	if err != nil {
		return err
	}

	if err := decodeReply(d.codec, resp, reply); err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	return nil
}

// conn returns the live connection to host, dialing a new one when needed.
// Dialing happens outside the lock; a concurrent dial to the same host keeps
// whichever connection was stored first.
func (d *zapDispatcher) conn(ctx context.Context, host string) (*ZAPConn, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, ErrZAPClosed
	}
	if c, ok := d.conns[host]; ok && c.Alive() {
		d.mu.Unlock()
		return c, nil
	}
	d.mu.Unlock()

	c, err := ZAPDial(ctx, host)
	if err != nil {
		return nil, err
	}
	d.logger.Debug("zap connection established", zap.String("host", host))

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		c.Close()
		return nil, ErrZAPClosed
	}
	if existing, ok := d.conns[host]; ok {
		if existing.Alive() {
			c.Close()
			return existing, nil
		}
		existing.Close()
	}
	d.conns[host] = c
	return c, nil
}

func (d *zapDispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	var errs []error
	for host, c := range d.conns {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", host, err))
		}
		delete(d.conns, host)
	}
	return errors.Join(errs...)
}

// zapServer implements Server using ZAP transport
type zapServer struct {
	listener net.Listener
	logger   *zap.Logger

	mu       sync.RWMutex
	handlers map[string]RawHandler
	server   *ZAPServer
}

func (s *zapServer) RegisterRaw(method string, handler RawHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.handlers[method]; ok {
		return fmt.Errorf("handler already registered for %s", method)
	}
	s.handlers[method] = handler
	return nil
}

func (s *zapServer) Serve(ctx context.Context) error {
	s.mu.Lock()
	s.server = NewZAPServer(s.listener, ZAPHandlerFunc(func(ctx context.Context, method string, payload []byte) ([]byte, error) {
		s.mu.RLock()
		handler, ok := s.handlers[method]
		s.mu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("unknown method: %s", method)
		}
		return handler(ctx, payload)
	}), s.logger)
	server := s.server
	s.mu.Unlock()
	return server.Serve(ctx)
}

func (s *zapServer) Close() error {
	s.mu.RLock()
	server := s.server
	s.mu.RUnlock()
	if server != nil {
		return server.Close()
	}
	return s.listener.Close()
}

func (s *zapServer) Addr() string {
	return s.listener.Addr().String()
}
