package fetch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/hoplink/hoplink/pkg/header"
	"github.com/hoplink/hoplink/pkg/transport"
)

// requestState is owned exclusively by one logical request. It is created at
// the start of Open and discarded on the terminal outcome; nothing here is
// shared across concurrent requests.
type requestState struct {
	// visited holds the URIs requested so far, most recent first. Its length
	// is always the number of redirect hops taken plus one.
	visited []*url.URL

	maxHops    int
	maxRetries int

	// retries starts at 1: the first attempt occupies the first retry slot,
	// so maxRetries is the total attempt count, not the count of re-attempts.
	retries int

	// meta accumulates one record per physical attempt, oldest first
	meta []Record
}

func (st *requestState) push(u *url.URL) {
	st.visited = append([]*url.URL{u}, st.visited...)
}

func (st *requestState) alreadyVisited(u *url.URL) bool {
	// Ignore the just-pushed entry at the head.
	for _, v := range st.visited[1:] {
		if v.String() == u.String() {
			return true
		}
	}
	return false
}

// Open issues one logical request and returns the response body on success.
// It drives physical attempts through the transport until a terminal outcome:
// redirects are resolved against Location and re-requested, failure statuses
// are retried against the same URI, and a 401 is returned as-is so the caller
// can add credentials. A nil body with a nil error is the "silent negative"
// outcome for the caller's designated failure code. The caller owns closing a
// returned body.
func (e *Engine) Open(ctx context.Context, uri *url.URL, opts *Options) (io.ReadCloser, error) {
	o, accept, err := opts.withDefaults(e.cfg)
	if err != nil {
		return nil, err
	}

	st := &requestState{
		visited:    []*url.URL{uri},
		maxHops:    o.MaxHops,
		maxRetries: o.MaxRetries,
		retries:    1,
	}

	body, err := e.run(ctx, st, &o, accept)

	// Output slots are filled on every terminal path, errors included.
	if o.Metadata != nil {
		*o.Metadata = st.meta
	}
	if o.FinalURI != nil {
		if final, ok := FinalURI(st.meta); ok {
			*o.FinalURI = final
		}
	}
	if o.Next != nil {
		if next, ok := NextLink(st.meta); ok {
			*o.Next = next
		}
	}
	return body, err
}

func (e *Engine) run(ctx context.Context, st *requestState, o *Options, accept string) (io.ReadCloser, error) {
	cur := st.visited[0]
	for {
		resp, rec, err := e.attempt(ctx, cur, o, accept)
		if err != nil {
			return nil, err
		}
		st.meta = append(st.meta, *rec)

		switch {
		case resp.Status >= 200 && resp.Status <= 299:
			return e.succeed(resp, rec, o, cur)

		case resp.Status >= 300 && resp.Status <= 399:
			resp.Body.Close()
			loc := rec.Header.Get("location")
			if loc == "" {
				return nil, fmt.Errorf("%s: redirect status %d without Location header", cur, resp.Status)
			}
			next, err := cur.Parse(loc)
			if err != nil {
				return nil, fmt.Errorf("%s: unresolvable Location %q: %w", cur, loc, err)
			}
			st.push(next)
			if len(st.visited) > st.maxHops {
				if st.alreadyVisited(next) {
					return nil, &RedirectLoopError{Visited: st.visited}
				}
				return nil, &MaxRedirectsError{Visited: st.visited}
			}
			e.logger.Debug().Stringer("from", cur).Stringer("to", next).Msg("following redirect")
			cur = next

		case resp.Status == 401:
			// Terminal but not an error: the caller is expected to inspect
			// the challenge, add credentials, and try again on its own.
			if o.Status != nil {
				*o.Status = resp.Status
			}
			return resp.Body, nil

		case resp.Status >= 400 && resp.Status <= 599:
			if o.Status == nil && resp.Status == o.Failure {
				// The designated failure code is an ordinary negative
				// outcome, reported without an error and without retrying.
				resp.Body.Close()
				return nil, nil
			}
			if st.retries >= st.maxRetries {
				return e.fail(resp, o, cur)
			}
			st.retries++
			resp.Body.Close()
			e.logger.Debug().Stringer("uri", cur).Int("status", resp.Status).
				Int("attempt", st.retries).Msg("retrying after failure status")

		default:
			resp.Body.Close()
			return nil, &StatusRangeError{Status: resp.Status}
		}
	}
}

// attempt performs one physical exchange and builds its metadata record.
func (e *Engine) attempt(ctx context.Context, uri *url.URL, o *Options, accept string) (*transport.Response, *Record, error) {
	req := &transport.Request{
		URI:     uri,
		Method:  o.Method,
		Timeout: o.Timeout,
		Header:  make(map[string]string, len(o.Header)+1),
	}
	for k, v := range o.Header {
		req.Header[k] = v
	}
	if accept != "" {
		req.Header["Accept"] = accept
	}

	method := o.Method
	if method == "" {
		method = "GET"
	}
	e.logger.Debug().Str("method", method).Stringer("uri", uri).Msg("issuing request")

	start := time.Now()
	resp, err := e.registry.RoundTrip(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	end := time.Now()

	rec := &Record{
		URI:        uri,
		Status:     resp.Status,
		Header:     header.Normalize(resp.RawHeader),
		Start:      start,
		End:        end,
		ProtoMajor: resp.ProtoMajor,
		ProtoMinor: resp.ProtoMinor,
	}
	e.logger.Debug().Stringer("uri", uri).Int("status", resp.Status).
		Int("headers", len(rec.Header)).Dur("elapsed", end.Sub(start)).
		Msg("received response")
	return resp, rec, nil
}

// succeed finalizes a 2xx outcome.
func (e *Engine) succeed(resp *transport.Response, rec *Record, o *Options, cur *url.URL) (io.ReadCloser, error) {
	if o.Status != nil {
		*o.Status = resp.Status
		return resp.Body, nil
	}
	if resp.Status != o.Success {
		// A 2xx that differs from the declared success code is accepted
		// as-is. Tightening this would break callers that only ever declare
		// 200 but receive 201/204 from well-behaved servers.
		e.logger.Debug().Stringer("uri", cur).Int("status", resp.Status).
			Int("expected", o.Success).Msg("status differs from declared success code")
	}
	if !rec.Header.Has("content-type") {
		return e.checkUntypedBody(resp.Body, cur), nil
	}
	return resp.Body, nil
}

// checkUntypedBody peeks at a response that arrived without a Content-Type.
// Such a response must be empty; a non-empty one is a misbehaving server,
// tolerated with a warning rather than failing the request.
func (e *Engine) checkUntypedBody(body io.ReadCloser, cur *url.URL) io.ReadCloser {
	br := bufio.NewReader(body)
	peeked, _ := br.Peek(512)
	if len(peeked) > 0 {
		e.logger.Warn().Stringer("uri", cur).
			Str("sniffed", mimetype.Detect(peeked).String()).
			Msg("response has a body but no content-type header")
	}
	return &peekedBody{Reader: br, closer: body}
}

// fail finalizes a failure status after retries are exhausted.
func (e *Engine) fail(resp *transport.Response, o *Options, cur *url.URL) (io.ReadCloser, error) {
	if o.Status != nil {
		// Raw status passthrough: no success/failure interpretation at all.
		*o.Status = resp.Status
		return resp.Body, nil
	}
	defer resp.Body.Close()
	buf := make([]byte, maxErrorBody)
	n, _ := io.ReadFull(resp.Body, buf)
	return nil, &StatusError{
		Status: resp.Status,
		URI:    cur,
		Body:   string(buf[:n]),
	}
}

type peekedBody struct {
	*bufio.Reader
	closer io.Closer
}

func (b *peekedBody) Close() error {
	return b.closer.Close()
}
