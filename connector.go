// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package remoting

import (
	"context"
	"io"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/luxfi/remoting"

// ConnectorOption configures a URLConnector
type ConnectorOption func(*connectorOptions)

type connectorOptions struct {
	maxCachedEndpoints int
	logger             *zap.Logger
	tracerProvider     trace.TracerProvider
}

// WithMaxCachedEndpoints sets the initial bound of the endpoint cache.
// 0 disables caching.
func WithMaxCachedEndpoints(n int) ConnectorOption {
	return func(o *connectorOptions) { o.maxCachedEndpoints = n }
}

// WithLogger sets the connector logger
func WithLogger(l *zap.Logger) ConnectorOption {
	return func(o *connectorOptions) { o.logger = l }
}

// WithTracerProvider sets the provider used to create Invoke spans
func WithTracerProvider(tp trace.TracerProvider) ConnectorOption {
	return func(o *connectorOptions) { o.tracerProvider = tp }
}

// URLConnector resolves remote names against a base URL and hands the call to
// a Dispatcher. It holds no protocol knowledge of its own.
type URLConnector struct {
	resolver   *Resolver
	dispatcher Dispatcher
	logger     *zap.Logger
	tracer     trace.Tracer
	closed     atomic.Bool
}

var _ Connector = (*URLConnector)(nil)

// NewURLConnector creates a connector resolving names against config and
// dispatching through d.
func NewURLConnector(config *ServiceConfig, d Dispatcher, opts ...ConnectorOption) *URLConnector {
	o := &connectorOptions{
		maxCachedEndpoints: DefaultMaxCachedEndpoints,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.tracerProvider == nil {
		o.tracerProvider = otel.GetTracerProvider()
	}

	return &URLConnector{
		resolver:   NewResolver(config, o.maxCachedEndpoints),
		dispatcher: d,
		logger:     o.logger,
		tracer:     o.tracerProvider.Tracer(tracerName),
	}
}

// Invoke resolves name and dispatches method to the resulting endpoint.
// Dispatch failures are returned exactly as the Dispatcher produced them.
func (c *URLConnector) Invoke(ctx context.Context, name, method string, args, reply interface{}) error {
	if c.closed.Load() {
		return ErrConnectorClosed
	}

	ctx, span := c.tracer.Start(ctx, "remoting.Invoke",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("remoting.name", name),
			attribute.String("rpc.method", method),
		),
	)
	defer span.End()

	endpoint, cached, err := c.resolver.resolve(name)
	if err != nil {
		c.logger.Debug("resolve failed", zap.String("name", name), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve")
		return err
	}
	c.logger.Debug("resolved endpoint",
		zap.String("name", name),
		zap.Stringer("endpoint", endpoint),
		zap.Bool("cached", cached),
	)
	span.SetAttributes(
		attribute.String("remoting.endpoint", endpoint.String()),
		attribute.Bool("remoting.cached", cached),
	)

	if err := c.dispatcher.Dispatch(ctx, endpoint, method, args, reply); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dispatch")
		return err
	}
	return nil
}

// Resolve returns the endpoint name maps to without calling it
func (c *URLConnector) Resolve(name string) (Endpoint, error) {
	return c.resolver.Resolve(name)
}

// SetMaxCachedEndpoints changes the endpoint cache bound at runtime.
// Shrinking it only takes effect on the next cache insertion.
func (c *URLConnector) SetMaxCachedEndpoints(n int) {
	c.resolver.SetMaxCachedEndpoints(n)
}

// Stats reports endpoint cache activity
func (c *URLConnector) Stats() ResolverStats {
	return c.resolver.Stats()
}

// Object returns a handle bound to a single remote name
func (c *URLConnector) Object(name string) *RemoteObject {
	return &RemoteObject{name: name, connector: c}
}

// Close closes the dispatcher when it holds connections.
// Invoke fails with ErrConnectorClosed afterwards.
func (c *URLConnector) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	if closer, ok := c.dispatcher.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// RemoteObject is a remote name bound to a Connector
type RemoteObject struct {
	name      string
	connector Connector
}

func (o *RemoteObject) Name() string {
	return o.name
}

// Call invokes method on the remote object
func (o *RemoteObject) Call(ctx context.Context, method string, args, reply interface{}) error {
	return o.connector.Invoke(ctx, o.name, method, args, reply)
}
