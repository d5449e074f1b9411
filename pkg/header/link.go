package header

import (
	"iter"
	"mime"
	"strings"
)

// MediaType parses a Content-Type style structured value into its bare media
// type (lower-cased "type/subtype") and parameters. A missing or unparseable
// value is reported as ok=false rather than an error: "not present" is a
// normal signal, not a failure.
func MediaType(value string) (mtype string, params map[string]string, ok bool) {
	if value == "" {
		return "", nil, false
	}
	mtype, params, err := mime.ParseMediaType(value)
	if err != nil || !strings.Contains(mtype, "/") {
		return "", nil, false
	}
	return mtype, params, true
}

// Filename extracts the filename parameter from a Content-Disposition value
// of the form `attachment; filename="X"`.
func Filename(disposition string) (string, bool) {
	if disposition == "" {
		return "", false
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return "", false
	}
	name, ok := params["filename"]
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// Links parses RFC 5988 Link header values into an iterator of (rel, uri)
// pairs. Repeated Link headers are concatenated with ";" before splitting on
// "," into individual link-values; each entry looks like
// `<uri>; rel="relation"[; other-params]`. Entries without a uri or rel are
// skipped.
func Links(values []string) iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		joined := strings.Join(values, ";")
		for entry := range strings.SplitSeq(joined, ",") {
			uri, rel := parseLinkValue(entry)
			if uri == "" || rel == "" {
				continue
			}
			if !yield(rel, uri) {
				return
			}
		}
	}
}

// LinkByRel returns the uri of the first link-value whose rel parameter
// matches the requested relation, case-insensitively.
func LinkByRel(values []string, rel string) (string, bool) {
	for r, uri := range Links(values) {
		if strings.EqualFold(r, rel) {
			return uri, true
		}
	}
	return "", false
}

func parseLinkValue(entry string) (uri, rel string) {
	for seg := range strings.SplitSeq(entry, ";") {
		seg = strings.TrimSpace(seg)
		if uri == "" && strings.HasPrefix(seg, "<") {
			uri = strings.Trim(seg, "<> ")
			continue
		}
		k, v, ok := strings.Cut(seg, "=")
		if !ok {
			continue
		}
		if rel == "" && strings.EqualFold(strings.TrimSpace(k), "rel") {
			rel = strings.Trim(strings.TrimSpace(v), `"`)
		}
	}
	return uri, rel
}
