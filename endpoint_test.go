// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package remoting

import (
	"errors"
	"net/url"
	"testing"
)

func TestParseBaseURL(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr bool
	}{
		{raw: "http://host/api/"},
		{raw: "https://host:8443"},
		{raw: "zap://127.0.0.1:9000/objects/"},
		{raw: "grpc://localhost:50051/"},
		{raw: "", wantErr: true},
		{raw: "/relative/path", wantErr: true},
		{raw: "host/api", wantErr: true},
		{raw: "mailto:ops@lux.network", wantErr: true},
		{raw: "http://[::1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			b, err := ParseBaseURL(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidBaseURL) {
					t.Fatalf("ParseBaseURL(%q) err = %v, want ErrInvalidBaseURL", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseBaseURL(%q): %v", tt.raw, err)
			}
			if b.String() != tt.raw {
				t.Errorf("String() = %q, want %q", b.String(), tt.raw)
			}
		})
	}
}

func TestNewBaseURLCopies(t *testing.T) {
	u, _ := url.Parse("http://host/api/")
	b, err := NewBaseURL(u)
	if err != nil {
		t.Fatal(err)
	}
	u.Host = "elsewhere"
	if got := b.String(); got != "http://host/api/" {
		t.Errorf("base changed with its source: %s", got)
	}

	b.URL().Path = "/mutated/"
	if got := b.String(); got != "http://host/api/" {
		t.Errorf("base changed through URL(): %s", got)
	}
}

func TestBaseURLResolve(t *testing.T) {
	tests := []struct {
		base string
		name string
		want string
	}{
		{"http://host/api/", "a", "http://host/api/a"},
		{"http://host/api/", "calc/v2", "http://host/api/calc/v2"},
		{"http://host/api", "a", "http://host/a"},
		{"http://host/api/", "/root", "http://host/root"},
		{"http://host/api/", "../up", "http://host/up"},
		{"http://host/api/", "", "http://host/api/"},
		{"http://host/api/", "a?v=2", "http://host/api/a?v=2"},
		{"http://host/api/", "//other:81/x", "http://other:81/x"},
		{"http://host/api/", "https://secure/x", "https://secure/x"},
		{"zap://127.0.0.1:9000/objects/", "calc", "zap://127.0.0.1:9000/objects/calc"},
	}
	for _, tt := range tests {
		t.Run(tt.base+"+"+tt.name, func(t *testing.T) {
			ep := mustEndpoint(t, tt.base, tt.name)
			if ep.String() != tt.want {
				t.Errorf("Resolve(%q) = %s, want %s", tt.name, ep, tt.want)
			}
		})
	}
}

func TestBaseURLResolveMalformed(t *testing.T) {
	b, err := ParseBaseURL("http://host/api/")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"bad%zz", "line\nbreak", ":nope", "mailto:ops@lux.network"} {
		_, err := b.Resolve(name)
		if !errors.Is(err, ErrMalformedReference) {
			t.Errorf("Resolve(%q) err = %v, want ErrMalformedReference", name, err)
			continue
		}
		var mre *MalformedReferenceError
		if !errors.As(err, &mre) {
			t.Fatalf("Resolve(%q) err is %T, want *MalformedReferenceError", name, err)
		}
		if mre.Name != name || mre.Base != "http://host/api/" {
			t.Errorf("error fields = %q/%q", mre.Name, mre.Base)
		}
	}
}

func TestEndpointAccessors(t *testing.T) {
	ep := mustEndpoint(t, "grpc://localhost:50051/", "calc.Calculator")
	if ep.Scheme() != "grpc" || ep.Host() != "localhost:50051" || ep.Path() != "/calc.Calculator" {
		t.Errorf("accessors = %s %s %s", ep.Scheme(), ep.Host(), ep.Path())
	}
	if got := methodPath(ep, "Add"); got != "/calc.Calculator/Add" {
		t.Errorf("methodPath = %s", got)
	}

	ep.URL().Path = "/changed"
	if ep.Path() != "/calc.Calculator" {
		t.Error("endpoint mutated through URL()")
	}

	if !ep.Equal(mustEndpoint(t, "grpc://localhost:50051/", "calc.Calculator")) {
		t.Error("equal endpoints compare unequal")
	}
	var zero Endpoint
	if !zero.IsZero() || zero.String() != "" {
		t.Error("zero endpoint")
	}
}
