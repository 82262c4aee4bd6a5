// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package remoting provides a protocol-agnostic client for calling remote
// objects by name.
//
// A remote name is resolved as a relative URL against a base URL, and the
// resulting endpoint is memoized in a bounded least-recently-used cache. The
// call itself is carried out by a Dispatcher chosen for the endpoint.
//
// # Usage
//
//	base, err := remoting.ParseBaseURL("http://localhost:9650/ext/")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	config, err := remoting.NewServiceConfig(base)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	conn := remoting.NewURLConnector(
//	    config,
//	    remoting.NewMux(),
//	    remoting.WithMaxCachedEndpoints(32),
//	)
//	defer conn.Close()
//
//	// POSTs a JSON-RPC 2.0 request to http://localhost:9650/ext/info
//	var reply InfoReply
//	err = conn.Invoke(ctx, "info", "info.getNodeVersion", &InfoArgs{}, &reply)
//
// Or from a TOML file:
//
//	cfg, err := remoting.LoadConfig("remoting.toml")
//	conn, err := remoting.Open(cfg)
//
// # Transports
//
// The Mux picks a dispatcher from the endpoint scheme:
//
//	http, https   JSON-RPC 2.0 over HTTP (gorilla/rpc json2 encoding)
//	zap           ZAP framed TCP, method key "<path>/<method>"
//	grpc          gRPC, full method "<path>/<method>"
//
// Any other protocol plugs in by implementing Dispatcher, either directly in
// NewURLConnector or per scheme with Mux.Handle.
//
// # Architecture
//
//   - client.go: Connector, Dispatcher and Server interfaces
//   - endpoint.go: BaseURL, ServiceConfig and Endpoint values
//   - cache.go: EndpointCache, the LRU map of resolved endpoints
//   - resolver.go: Resolver, the locked lookup-or-resolve sequence
//   - connector.go: URLConnector, resolution followed by dispatch
//   - transport.go, mux.go: transport registry and scheme routing
//   - json.go, zap.go, dial.go, dial_grpc.go: transport implementations
//   - config.go: TOML configuration
//
// # Cache bound
//
// The cache holds DefaultMaxCachedEndpoints entries unless configured
// otherwise. Raising the bound applies immediately; lowering it only evicts
// on the next insertion. A bound of 0 disables caching.
package remoting
