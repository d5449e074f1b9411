package transport

import (
	"context"
	"io"
	"net/url"
	"time"
)

// Transport performs one physical request/response exchange for a URI. It
// never follows redirects itself; the request engine owns that decision, so a
// 3xx comes back like any other status with its raw header lines intact.
type Transport interface {
	// Schemes returns the URI schemes this transport handles (e.g. "http", "https")
	Schemes() []string

	// RoundTrip performs a single exchange and returns the response as
	// received, redirects included.
	RoundTrip(ctx context.Context, req *Request) (*Response, error)
}

// Request describes one physical attempt.
type Request struct {
	// URI is the resource to request
	URI *url.URL

	// Method is the HTTP method; empty means GET
	Method string

	// Header holds additional request headers
	Header map[string]string

	// Timeout for this attempt (optional; transports apply their own default)
	Timeout time.Duration
}

// Response is the raw result of one physical attempt.
type Response struct {
	// Status is the numeric status code as received
	Status int

	// RawHeader holds the response header lines, one "Name: value" string per
	// physical line, duplicates preserved
	RawHeader []string

	// Body is the response body stream; the caller owns closing it
	Body io.ReadCloser

	// ProtoMajor and ProtoMinor identify the protocol version
	ProtoMajor int
	ProtoMinor int
}

type RoundTripError struct {
	URI    *url.URL
	Reason string
	Err    error
}

func (e *RoundTripError) Error() string {
	return "request to " + e.URI.String() + " failed: " + e.Reason
}

func (e *RoundTripError) Unwrap() error {
	return e.Err
}

type UnsupportedSchemeError struct {
	Scheme string
}

func (e *UnsupportedSchemeError) Error() string {
	return "unsupported scheme: " + e.Scheme
}
