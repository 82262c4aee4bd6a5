// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package remoting

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func init() {
	registerTransport(TransportGRPC, newGRPCDispatcher)
}

// GRPCCodec adapts a Codec to grpc's encoding.Codec so non protobuf
// messages can travel over gRPC.
type GRPCCodec struct {
	Codec Codec
}

func (c GRPCCodec) Marshal(v any) ([]byte, error) {
	return codecOrDefault(c.Codec).Encode(v)
}

func (c GRPCCodec) Unmarshal(data []byte, v any) error {
	return codecOrDefault(c.Codec).Decode(data, v)
}

func (c GRPCCodec) Name() string {
	if n, ok := codecOrDefault(c.Codec).(interface{ Name() string }); ok {
		return n.Name()
	}
	return "remoting"
}

// grpcDispatcher keeps one client connection per endpoint host. The full
// method name is "<endpoint path>/<method>", so a base of "grpc://host/" and
// the name "pkg.Service" call "/pkg.Service/<method>".
type grpcDispatcher struct {
	dialOpts []grpc.DialOption
	callOpts []grpc.CallOption
	logger   *zap.Logger

	mu     sync.Mutex
	conns  map[string]*grpc.ClientConn
	closed bool
}

func newGRPCDispatcher(o *dispatchOptions) (Dispatcher, error) {
	d := &grpcDispatcher{
		dialOpts: append([]grpc.DialOption{
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		}, o.grpcDialOps...),
		logger: o.logger,
		conns:  make(map[string]*grpc.ClientConn),
	}
	if o.codec != nil {
		d.callOpts = append(d.callOpts, grpc.ForceCodec(GRPCCodec{Codec: o.codec}))
	}
	return d, nil
}

func (d *grpcDispatcher) Dispatch(ctx context.Context, endpoint Endpoint, method string, args, reply interface{}) error {
	conn, err := d.conn(endpoint.Host())
	if err != nil {
		return err
	}
	return conn.Invoke(ctx, methodPath(endpoint, method), args, reply, d.callOpts...)
}

// conn creates client connections lazily; grpc.NewClient does no I/O.
func (d *grpcDispatcher) conn(host string) (*grpc.ClientConn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, errors.New("grpc dispatcher closed")
	}
	if c, ok := d.conns[host]; ok {
		return c, nil
	}
	c, err := grpc.NewClient(host, d.dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial: %w", err)
	}
	d.logger.Debug("grpc client created", zap.String("host", host))
	d.conns[host] = c
	return c, nil
}

func (d *grpcDispatcher) Close() error {
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
