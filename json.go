// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package remoting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	rpc "github.com/gorilla/rpc/v2/json2"
	"go.uber.org/zap"
)

const retryBaseWait = 500 * time.Millisecond

// newHTTPClient creates a fresh HTTP client with disabled connection reuse.
// This avoids EOF errors that can occur with connection pooling in complex
// process hierarchies.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DisableKeepAlives: true,
		},
	}
}

// CleanlyCloseBody drains and closes an HTTP response body to prevent
// HTTP/2 GOAWAY errors caused by closing bodies with unread data.
// See: https://github.com/golang/go/issues/46071
func CleanlyCloseBody(body io.ReadCloser) error {
	if body == nil {
		return nil
	}
	_, _ = io.Copy(io.Discard, body)
	return body.Close()
}

// isRetryableError checks if an error is transient and worth retrying
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	// EOF errors are often transient connection issues
	if errors.Is(err, io.EOF) || strings.Contains(errStr, "EOF") {
		return true
	}
	if strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "broken pipe") {
		return true
	}
	return false
}

// jsonDispatcher sends JSON-RPC 2.0 requests to the endpoint URL over HTTP(S)
type jsonDispatcher struct {
	timeout  time.Duration
	attempts int
	options  []Option
	logger   *zap.Logger
}

func newJSONDispatcher(o *dispatchOptions) (Dispatcher, error) {
	return &jsonDispatcher{
		timeout:  o.timeout,
		attempts: o.attempts,
		options:  o.request,
		logger:   o.logger,
	}, nil
}

func (d *jsonDispatcher) Dispatch(ctx context.Context, endpoint Endpoint, method string, args, reply interface{}) error {
	return d.send(ctx, endpoint.URL(), method, args, reply)
}

// SendJSONRequest issues a single JSON-RPC 2.0 call to uri with the default
// timeout and retry policy.
func SendJSONRequest(
	ctx context.Context,
	uri *url.URL,
	method string,
	params interface{},
	reply interface{},
	options ...Option,
) error {
	d := &jsonDispatcher{
		timeout:  defaultHTTPTimeout,
		attempts: defaultAttempts,
		options:  options,
		logger:   zap.NewNop(),
	}
	cp := *uri
	return d.send(ctx, &cp, method, params, reply)
}

func (d *jsonDispatcher) send(ctx context.Context, uri *url.URL, method string, params, reply interface{}) error {
	requestBodyBytes, err := rpc.EncodeClientRequest(method, params)
	if err != nil {
		return fmt.Errorf("failed to encode client params: %w", err)
	}

	ops := NewOptions(d.options)
	if len(ops.queryParams) > 0 {
		query := uri.Query()
		for k, vs := range ops.queryParams {
			query[k] = vs
		}
		uri.RawQuery = query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt < d.attempts; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 500ms, 1s, 2s, ...
			waitTime := retryBaseWait * time.Duration(1<<(attempt-1))
			timer := time.NewTimer(waitTime)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		// Create fresh request for each attempt (body buffer is consumed)
		request, err := http.NewRequestWithContext(
			ctx,
			http.MethodPost,
			uri.String(),
			bytes.NewBuffer(requestBodyBytes),
		)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		request.Header = ops.headers.Clone()
		request.Header.Set("Content-Type", "application/json")

		resp, err := newHTTPClient(d.timeout).Do(request)
		if err != nil {
			lastErr = err
			retryable := isRetryableError(err) && ctx.Err() == nil
			d.logger.Warn("request attempt failed",
				zap.String("uri", uri.String()),
				zap.String("method", method),
				zap.Int("attempt", attempt+1),
				zap.Bool("retryable", retryable),
				zap.Error(err),
			)
			if retryable {
				continue
			}
			return fmt.Errorf("failed to issue request: %w", err)
		}
		if attempt > 0 {
			d.logger.Debug("request succeeded after retry", zap.String("method", method), zap.Int("attempt", attempt+1))
		}

		// Return an error for any non successful status code
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			_ = CleanlyCloseBody(resp.Body)
			return fmt.Errorf("received status code: %d", resp.StatusCode)
		}

		target := reply
		if target == nil {
			target = new(json.RawMessage)
		}
		err = rpc.DecodeClientResponse(resp.Body, target)
		_ = CleanlyCloseBody(resp.Body)
		if reply == nil && errors.Is(err, rpc.ErrNullResult) {
			return nil
		}
		if err != nil {
			var rpcErr *rpc.Error
			if errors.As(err, &rpcErr) {
				return rpcErr
			}
			return fmt.Errorf("failed to decode client response: %w", err)
		}
		return nil
	}

	return fmt.Errorf("failed to issue request after %d attempts: %w", d.attempts, lastErr)
}
