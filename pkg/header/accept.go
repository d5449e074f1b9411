package header

import (
	"fmt"
	"mime"
	"strings"
)

// extensions maps registered short names to media types, so callers can say
// "json" instead of "application/json" when they only want one format.
var extensions = map[string]string{
	"json": "application/json",
	"xml":  "application/xml",
	"html": "text/html",
	"txt":  "text/plain",
	"text": "text/plain",
	"csv":  "text/csv",
	"bin":  "application/octet-stream",
}

// RegisterExtension adds or replaces a short extension name used by AcceptFor.
func RegisterExtension(ext, mediaType string) {
	extensions[strings.ToLower(ext)] = mediaType
}

// BuildAccept joins an ordered list of media types, most preferred first,
// into a single Accept header value. The i-th of N types (1-indexed) gets
// quality weight i/N formatted to 3 decimals, so weights are strictly
// increasing and evenly spaced. Existing negotiation behavior depends on this
// exact spacing, so keep the formula as-is.
func BuildAccept(types []string) (string, error) {
	n := len(types)
	if n == 0 {
		return "", fmt.Errorf("no media types given")
	}
	parts := make([]string, n)
	for i, t := range types {
		parts[i] = fmt.Sprintf("%s;q=%.3f", t, float64(i+1)/float64(n))
	}
	return strings.Join(parts, ", "), nil
}

// AcceptFor resolves a single media type, or a registered short extension
// name, into an Accept header value for a singleton list.
func AcceptFor(spec string) (string, error) {
	if strings.Contains(spec, "/") {
		return BuildAccept([]string{spec})
	}
	if mt, ok := extensions[strings.ToLower(spec)]; ok {
		return BuildAccept([]string{mt})
	}
	if mt := mime.TypeByExtension("." + spec); mt != "" {
		// TypeByExtension may attach parameters like charset; only the bare
		// media type belongs in an Accept entry.
		if bare, _, ok := MediaType(mt); ok {
			return BuildAccept([]string{bare})
		}
	}
	return "", fmt.Errorf("unknown media type shorthand %q", spec)
}
