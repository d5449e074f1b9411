package fetch

import (
	"fmt"
	"net/url"
	"strings"
)

// maxErrorBody bounds how much of a failure response body is carried in a
// StatusError.
const maxErrorBody = 1000

// RedirectLoopError reports a redirect target that was already visited within
// the same logical request. Visited holds the full chain, most recent first.
type RedirectLoopError struct {
	Visited []*url.URL
}

func (e *RedirectLoopError) Error() string {
	return "redirect loop detected: " + formatChain(e.Visited)
}

// MaxRedirectsError reports a redirect chain that reached the configured hop
// cap without revisiting a URI. Visited holds the full chain, most recent
// first.
type MaxRedirectsError struct {
	Visited []*url.URL
}

func (e *MaxRedirectsError) Error() string {
	return fmt.Sprintf("too many redirects (%d): %s", len(e.Visited)-1, formatChain(e.Visited))
}

// CyclicLinkError reports a Link header whose rel="next" points back at the
// page that was just requested.
type CyclicLinkError struct {
	URI *url.URL
}

func (e *CyclicLinkError) Error() string {
	return "cyclic Link header: " + e.URI.String() + " points at itself"
}

// StatusRangeError reports a status code outside 100-599 or one that falls
// outside every handled band. Servers sending these are breaking the protocol
// contract, so there is nothing sensible to retry.
type StatusRangeError struct {
	Status int
}

func (e *StatusRangeError) Error() string {
	return fmt.Sprintf("unrecognized status code %d", e.Status)
}

// StatusError reports a failure status that is not the caller's designated
// failure code, after retries were exhausted. Body holds up to maxErrorBody
// bytes of the response so the condition can be logged without re-fetching.
type StatusError struct {
	Status int
	URI    *url.URL
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s answered status %d", e.URI, e.Status)
}

// formatChain renders a visited chain oldest first for readability.
func formatChain(visited []*url.URL) string {
	parts := make([]string, len(visited))
	for i, u := range visited {
		parts[len(visited)-1-i] = u.String()
	}
	return strings.Join(parts, " -> ")
}
