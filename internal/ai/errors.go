package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"time"
)

// AuthError indicates authentication/authorization failures (401/403).
type AuthError struct{ *APIError }

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.APIError.Error())
}

// RateLimitError indicates 429 responses and may include a Retry-After.
type RateLimitError struct {
	*APIError
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: wait about %ds before retrying: %s", int(e.RetryAfter.Seconds()), e.APIError.Error())
	}
	return fmt.Sprintf("rate limited: %s", e.APIError.Error())
}

// ModelNotFoundError indicates the requested model is not available.
type ModelNotFoundError struct{ *APIError }

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("model not found: %s", e.APIError.Error())
}

// BadRequestError indicates a 4xx request problem (e.g., 400 validation).
type BadRequestError struct{ *APIError }

func (e *BadRequestError) Error() string { return fmt.Sprintf("bad request: %s", e.APIError.Error()) }

// QuotaExceededError indicates billing/quota problems.
type QuotaExceededError struct{ *APIError }

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded: %s", e.APIError.Error())
}

// ServerError indicates 5xx errors from the provider.
type ServerError struct{ *APIError }

func (e *ServerError) Error() string { return fmt.Sprintf("provider error: %s", e.APIError.Error()) }

// TimeoutError indicates the request did not complete in time (client timeout,
// context deadline, or a 408/504 from the provider).
type TimeoutError struct{ Err error }

func (e *TimeoutError) Error() string { return fmt.Sprintf("request timed out: %v", e.Err) }

func (e *TimeoutError) Unwrap() error { return e.Err }

// UnreachableError indicates the target endpoint is not reachable (e.g., local Ollama down).
type UnreachableError struct {
	Host string
	Err  error
}

func (e *UnreachableError) Error() string {
	if e == nil {
		return "unreachable"
	}
	if e.Host != "" {
		return fmt.Sprintf("endpoint unreachable at %s: %v", e.Host, e.Err)
	}
	return fmt.Sprintf("endpoint unreachable: %v", e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// ConnectionError is a dropped or reset connection mid-request.
type ConnectionError struct{ Err error }

func (e *ConnectionError) Error() string { return fmt.Sprintf("connection error: %v", e.Err) }

func (e *ConnectionError) Unwrap() error { return e.Err }

// IsTransient reports whether err is worth retrying: rate limits, timeouts,
// provider 5xx and dropped connections.
func IsTransient(err error) bool {
	var (
		rl   *RateLimitError
		to   *TimeoutError
		srv  *ServerError
		conn *ConnectionError
	)
	return errors.As(err, &rl) || errors.As(err, &to) || errors.As(err, &srv) || errors.As(err, &conn)
}

// IsConfiguration reports whether err points at a setup problem (bad key,
// unknown model, endpoint down) rather than at a single request.
func IsConfiguration(err error) bool {
	var (
		auth  *AuthError
		nf    *ModelNotFoundError
		unr   *UnreachableError
		quota *QuotaExceededError
	)
	return errors.As(err, &auth) || errors.As(err, &nf) || errors.As(err, &unr) || errors.As(err, &quota)
}

// classifyTransportError maps errors from http.Client.Do.
func classifyTransportError(host string, err error) error {
	if isTimeout(err) {
		return &TimeoutError{Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, syscall.ECONNRESET) {
		return &ConnectionError{Err: err}
	}
	var dnsErr *net.DNSError
	if errors.Is(err, syscall.ECONNREFUSED) || errors.As(err, &dnsErr) {
		return &UnreachableError{Host: host, Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Op == "dial" {
			return &UnreachableError{Host: host, Err: err}
		}
		return &ConnectionError{Err: err}
	}
	return fmt.Errorf("http request: %w", err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
