// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package remoting

import (
	"fmt"
	"net/url"
	"strings"
)

// BaseURL is the absolute URL every remote name is resolved against.
// The zero value is not usable; build one with ParseBaseURL or NewBaseURL.
type BaseURL struct {
	u *url.URL
}

// ParseBaseURL parses raw and checks that it is absolute and has a host.
func ParseBaseURL(raw string) (BaseURL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return BaseURL{}, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	return NewBaseURL(u)
}

// NewBaseURL copies u into a BaseURL. Later changes to u are not observed.
func NewBaseURL(u *url.URL) (BaseURL, error) {
	if u == nil {
		return BaseURL{}, fmt.Errorf("%w: nil url", ErrInvalidBaseURL)
	}
	if !u.IsAbs() || u.Host == "" {
		return BaseURL{}, fmt.Errorf("%w: %q is not an absolute url with a host", ErrInvalidBaseURL, u.String())
	}
	cp := *u
	return BaseURL{u: &cp}, nil
}

// URL returns a copy of the base URL
func (b BaseURL) URL() *url.URL {
	if b.u == nil {
		return nil
	}
	cp := *b.u
	return &cp
}

func (b BaseURL) String() string {
	if b.u == nil {
		return ""
	}
	return b.u.String()
}

// IsZero reports whether b was never initialized
func (b BaseURL) IsZero() bool {
	return b.u == nil
}

// Resolve resolves name as a URI reference relative to b (RFC 3986, section 5).
// With a base of "http://host/api/", "calc" becomes "http://host/api/calc" while
// "/calc" becomes "http://host/calc".
func (b BaseURL) Resolve(name string) (Endpoint, error) {
	if b.u == nil {
		return Endpoint{}, fmt.Errorf("%w: missing base url", ErrInvalidBaseURL)
	}
	ref, err := url.Parse(name)
	if err != nil {
		return Endpoint{}, &MalformedReferenceError{Name: name, Base: b.String(), Err: err}
	}
	target := b.u.ResolveReference(ref)
	if !target.IsAbs() || target.Host == "" || target.Opaque != "" {
		return Endpoint{}, &MalformedReferenceError{Name: name, Base: b.String(), Err: errNotHierarchical}
	}
	return Endpoint{u: target}, nil
}

// ServiceConfig holds the base URL shared by every resolver built from it.
type ServiceConfig struct {
	base BaseURL
}

// NewServiceConfig fails with ErrInvalidBaseURL when base was never initialized
func NewServiceConfig(base BaseURL) (*ServiceConfig, error) {
	if base.IsZero() {
		return nil, fmt.Errorf("%w: missing base url", ErrInvalidBaseURL)
	}
	return &ServiceConfig{base: base}, nil
}

func (c *ServiceConfig) BaseURL() BaseURL {
	return c.base
}

// Endpoint is the fully qualified address of one remote object.
// Endpoints are immutable; URL hands out copies.
type Endpoint struct {
	u *url.URL
}

// URL returns a copy of the endpoint address
func (e Endpoint) URL() *url.URL {
	if e.u == nil {
		return nil
	}
	cp := *e.u
	return &cp
}

func (e Endpoint) String() string {
	if e.u == nil {
		return ""
	}
	return e.u.String()
}

func (e Endpoint) Scheme() string {
	if e.u == nil {
		return ""
	}
	return e.u.Scheme
}

// Host returns host or host:port
func (e Endpoint) Host() string {
	if e.u == nil {
		return ""
	}
	return e.u.Host
}

func (e Endpoint) Path() string {
	if e.u == nil {
		return ""
	}
	return e.u.Path
}

func (e Endpoint) IsZero() bool {
	return e.u == nil
}

func (e Endpoint) Equal(other Endpoint) bool {
	return e.String() == other.String()
}

// methodPath joins the endpoint path and a method name into the key used by
// path routed transports: "/api/calc" + "Add" -> "/api/calc/Add".
func methodPath(e Endpoint, method string) string {
	return strings.TrimSuffix(e.Path(), "/") + "/" + method
}
