// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package remoting

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAvailableTransports(t *testing.T) {
	want := []string{TransportGRPC, TransportHTTP, TransportHTTPS, TransportZAP}
	if diff := cmp.Diff(want, AvailableTransports()); diff != "" {
		t.Errorf("transports (-want +got):\n%s", diff)
	}
	for _, scheme := range want {
		if !HasTransport(scheme) {
			t.Errorf("HasTransport(%s) = false", scheme)
		}
	}
	if HasTransport("ftp") {
		t.Error("HasTransport(ftp) = true")
	}
}

func TestNewDispatcherUnknownScheme(t *testing.T) {
	if _, err := NewDispatcher("ftp"); !errors.Is(err, ErrUnknownTransport) {
		t.Errorf("err = %v, want ErrUnknownTransport", err)
	}
}

func TestMuxRoutesByScheme(t *testing.T) {
	ctx := context.Background()
	httpCalls := &recordingDispatcher{}
	zapCalls := &recordingDispatcher{}

	m := NewMux()
	m.Handle(TransportHTTP, httpCalls)
	m.Handle(TransportZAP, zapCalls)
	c := newTestConnector(t, "http://host/api/", m)

	for _, name := range []string{"calc", "zap://node:9000/calc", "wallet"} {
		if err := c.Invoke(ctx, name, "m", nil, nil); err != nil {
			t.Fatalf("Invoke(%s): %v", name, err)
		}
	}

	if len(httpCalls.calls) != 2 || len(zapCalls.calls) != 1 {
		t.Fatalf("http got %d calls, zap got %d", len(httpCalls.calls), len(zapCalls.calls))
	}
	if got := zapCalls.calls[0].Endpoint; got != "zap://node:9000/calc" {
		t.Errorf("zap endpoint = %s", got)
	}

	err := c.Invoke(ctx, "ftp://files/x", "m", nil, nil)
	if !errors.Is(err, ErrUnknownTransport) {
		t.Errorf("err = %v, want ErrUnknownTransport", err)
	}
}

func TestMuxBuildsOnceAndCloses(t *testing.T) {
	m := NewMux()
	first, err := m.dispatcher(TransportZAP)
	if err != nil {
		t.Fatal(err)
	}
	second, err := m.dispatcher(TransportZAP)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("Mux built two dispatchers for one scheme")
	}

	custom := &recordingDispatcher{}
	m.Handle("custom", custom)

	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !custom.closed {
		t.Error("handled dispatcher not closed")
	}
	if !first.(*zapDispatcher).closed {
		t.Error("zap dispatcher not closed")
	}
	if _, err := m.dispatcher(TransportHTTP); !errors.Is(err, ErrConnectorClosed) {
		t.Errorf("dispatcher after Close err = %v", err)
	}
}
