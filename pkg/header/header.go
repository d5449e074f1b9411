package header

import (
	"strings"
)

// Header is a normalized HTTP header section: names are lower-cased and each
// name maps to its values in the order they appeared on the wire. Values are
// stored in a slice because headers may legally repeat (e.g. Link, Set-Cookie).
type Header map[string][]string

// Normalize turns raw header lines into a Header. Each line is split on the
// first colon; the name is lower-cased and the value is stripped of leading
// and trailing horizontal whitespace. Lines that do not look like
// "name: value" are dropped without failing the whole section. HTTP allows
// obsolete line folding and other junk, so tolerating a bad line is better
// than rejecting an otherwise usable response.
func Normalize(lines []string) Header {
	h := make(Header, len(lines))
	for _, line := range lines {
		// Continuation lines from obsolete folding start with whitespace.
		if len(line) > 0 && (line[0] == ' ' || line[0] == '\t') {
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		h[name] = append(h[name], strings.Trim(value, " \t"))
	}
	return h
}

// Get returns the first value for the given name, or "" if absent.
// Lookup is case-insensitive.
func (h Header) Get(name string) string {
	vs := h[strings.ToLower(name)]
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

// Values returns all values for the given name in wire order.
func (h Header) Values(name string) []string {
	return h[strings.ToLower(name)]
}

// Has reports whether the header section contains the given name.
func (h Header) Has(name string) bool {
	_, ok := h[strings.ToLower(name)]
	return ok
}
