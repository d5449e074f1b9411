package fetch

import (
	"context"
	"io"
	"iter"
	"net/url"
)

// Page is one element of a pagination sequence. Body is only valid inside the
// iteration that yielded it; the sequence closes it as soon as the consumer
// returns, so at most one page's stream is ever open. Body is nil when the
// page resolved to the silent negative outcome.
type Page struct {
	// URI is the page's request URI before redirect resolution
	URI *url.URL

	// Body is the page's response stream, closed automatically after use
	Body io.Reader

	// Meta holds the page's per-attempt records, oldest first
	Meta []Record
}

// Pages walks a Link-header pagination chain as a lazy sequence: one Open per
// iteration with fresh request state, advancing to the rel="next" URI of each
// response until none is advertised. Stopping iteration early still closes
// the current page's body. A next link pointing back at the page that was
// just requested raises a CyclicLinkError instead of looping forever.
func (e *Engine) Pages(ctx context.Context, uri *url.URL, opts *Options) iter.Seq2[*Page, error] {
	return func(yield func(*Page, error) bool) {
		cur := uri
		for {
			o := Options{}
			if opts != nil {
				o = *opts
			}
			var next *url.URL
			var meta []Record
			o.Next = &next
			o.Metadata = &meta

			body, err := e.Open(ctx, cur, &o)

			// Mirror the discoveries into the caller's own slots on every
			// terminal outcome, errors included.
			if opts != nil {
				if opts.Next != nil {
					*opts.Next = next
				}
				if opts.Metadata != nil {
					*opts.Metadata = meta
				}
			}
			if err != nil {
				yield(nil, err)
				return
			}

			page := &Page{URI: cur, Body: body, Meta: meta}
			more := func() bool {
				if body != nil {
					defer body.Close()
				}
				return yield(page, nil)
			}()
			if !more {
				return
			}

			if next == nil {
				return
			}
			if next.String() == cur.String() {
				yield(nil, &CyclicLinkError{URI: next})
				return
			}
			e.logger.Debug().Stringer("from", cur).Stringer("to", next).Msg("following next link")
			cur = next
		}
	}
}

// Call invokes consume once per page of the pagination sequence, with the
// body closed after each invocation whether consume returns or fails. Pages
// that resolved to the silent negative outcome are skipped.
func (e *Engine) Call(ctx context.Context, uri *url.URL, opts *Options, consume func(io.Reader) error) error {
	for page, err := range e.Pages(ctx, uri, opts) {
		if err != nil {
			return err
		}
		if page.Body == nil {
			continue
		}
		if err := consume(page.Body); err != nil {
			return err
		}
	}
	return nil
}
