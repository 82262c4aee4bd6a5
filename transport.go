// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package remoting

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// Transport types, named after the endpoint URL scheme they serve
const (
	TransportHTTP  = "http"  // JSON-RPC 2.0 over HTTP
	TransportHTTPS = "https" // JSON-RPC 2.0 over HTTPS
	TransportZAP   = "zap"   // Zero-copy framed TCP
	TransportGRPC  = "grpc"  // Google RPC
)

const (
	defaultAttempts    = 3
	defaultHTTPTimeout = 30 * time.Second
)

// DispatchOption configures dispatchers built by NewDispatcher or a Mux
type DispatchOption func(*dispatchOptions)

type dispatchOptions struct {
	codec       Codec
	logger      *zap.Logger
	timeout     time.Duration
	attempts    int
	request     []Option
	grpcDialOps []grpc.DialOption
}

func newDispatchOptions(opts []DispatchOption) *dispatchOptions {
	o := &dispatchOptions{
		timeout:  defaultHTTPTimeout,
		attempts: defaultAttempts,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.attempts <= 0 {
		o.attempts = defaultAttempts
	}
	if o.timeout <= 0 {
		o.timeout = defaultHTTPTimeout
	}
	return o
}

// WithCodec sets the codec used for ZAP payloads and, when set, for gRPC messages
func WithCodec(c Codec) DispatchOption {
	return func(o *dispatchOptions) { o.codec = c }
}

// WithDispatchLogger sets the logger dispatchers report retries and failures to
func WithDispatchLogger(l *zap.Logger) DispatchOption {
	return func(o *dispatchOptions) { o.logger = l }
}

// WithTimeout sets the per attempt HTTP timeout
func WithTimeout(d time.Duration) DispatchOption {
	return func(o *dispatchOptions) { o.timeout = d }
}

// WithAttempts sets how many times a JSON-RPC request is tried on transient errors
func WithAttempts(n int) DispatchOption {
	return func(o *dispatchOptions) { o.attempts = n }
}

// WithRequestOptions sets headers and query parameters for JSON-RPC requests
func WithRequestOptions(opts ...Option) DispatchOption {
	return func(o *dispatchOptions) { o.request = append(o.request, opts...) }
}

// WithGRPCDialOptions appends dial options for gRPC connections
func WithGRPCDialOptions(opts ...grpc.DialOption) DispatchOption {
	return func(o *dispatchOptions) { o.grpcDialOps = append(o.grpcDialOps, opts...) }
}

type dispatcherFactory func(o *dispatchOptions) (Dispatcher, error)

var (
	transportsMu sync.RWMutex
	transports   = map[string]dispatcherFactory{
		TransportHTTP:  newJSONDispatcher,
		TransportHTTPS: newJSONDispatcher,
		TransportZAP:   newZAPDispatcher,
	}
)

// registerTransport registers a new transport (used by init of optional transports)
func registerTransport(scheme string, factory dispatcherFactory) {
	transportsMu.Lock()
	defer transportsMu.Unlock()
	transports[scheme] = factory
}

// NewDispatcher builds the dispatcher registered for scheme
func NewDispatcher(scheme string, opts ...DispatchOption) (Dispatcher, error) {
	transportsMu.RLock()
	factory, ok := transports[scheme]
	transportsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTransport, scheme)
	}
	return factory(newDispatchOptions(opts))
}

// AvailableTransports returns the sorted list of registered schemes
func AvailableTransports() []string {
	transportsMu.RLock()
	defer transportsMu.RUnlock()
	result := make([]string, 0, len(transports))
	for name := range transports {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// HasTransport checks if a transport is available
func HasTransport(scheme string) bool {
	transportsMu.RLock()
	defer transportsMu.RUnlock()
	_, ok := transports[scheme]
	return ok
}
