package fetch

import (
	"net/url"
	"time"

	"github.com/hoplink/hoplink/pkg/header"
)

// Options configures one logical request. The zero value asks for engine
// defaults everywhere. Pointer fields are output slots: they are filled on
// every terminal outcome, errors included, so callers can inspect what
// happened without re-deriving it.
type Options struct {
	// Accept lists acceptable media types, most preferred first; it becomes a
	// single Accept header with evenly spaced quality weights
	Accept []string

	// AcceptSpec is shorthand for a singleton Accept list: a bare media type
	// or a registered extension name like "json"
	AcceptSpec string

	// Method overrides the request method; a head-only method means no body
	// is read (existence probes)
	Method string

	// Header holds extra request headers sent on every attempt
	Header map[string]string

	// MaxHops and MaxRetries override the engine defaults when positive
	MaxHops    int
	MaxRetries int

	// Success and Failure drive the status policy; zero means 200 and 400
	Success int
	Failure int

	// Timeout applies per physical attempt
	Timeout time.Duration

	// Status, when non-nil, bypasses the success/failure policy entirely and
	// receives the raw final status code
	Status *int

	// FinalURI receives the fully resolved URI after all redirects
	FinalURI **url.URL

	// Metadata receives one Record per physical attempt, oldest first
	Metadata *[]Record

	// Next receives the pagination URI discovered in the final response's
	// Link headers, if any
	Next **url.URL
}

// withDefaults resolves zero fields against the engine configuration and
// builds the Accept header value once per logical request.
func (o *Options) withDefaults(cfg Config) (resolved Options, accept string, err error) {
	r := Options{}
	if o != nil {
		r = *o
	}
	if r.MaxHops <= 0 {
		r.MaxHops = cfg.MaxHops
	}
	if r.MaxRetries <= 0 {
		r.MaxRetries = cfg.MaxRetries
	}
	if r.Success == 0 {
		r.Success = 200
	}
	if r.Failure == 0 {
		r.Failure = 400
	}
	if r.Timeout <= 0 {
		r.Timeout = cfg.Timeout
	}

	switch {
	case len(r.Accept) > 0:
		accept, err = header.BuildAccept(r.Accept)
	case r.AcceptSpec != "":
		accept, err = header.AcceptFor(r.AcceptSpec)
	}
	return r, accept, err
}
