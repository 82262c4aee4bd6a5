// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package remoting

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedReference = errors.New("remoting: malformed reference")
	ErrInvalidBaseURL     = errors.New("remoting: invalid base url")
	ErrUnknownTransport   = errors.New("remoting: unknown transport")
	ErrConnectorClosed    = errors.New("remoting: connector closed")

	errNotHierarchical = errors.New("reference does not resolve to a host based url")
)

// MalformedReferenceError is returned when a remote name cannot be combined
// with the base URL into a valid endpoint. It matches ErrMalformedReference.
type MalformedReferenceError struct {
	Name string
	Base string
	Err  error
}

func (e *MalformedReferenceError) Error() string {
	return fmt.Sprintf("remoting: malformed reference %q against %s: %v", e.Name, e.Base, e.Err)
}

func (e *MalformedReferenceError) Unwrap() error {
	return e.Err
}

func (e *MalformedReferenceError) Is(target error) bool {
	return target == ErrMalformedReference
}
