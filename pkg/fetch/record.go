package fetch

import (
	"net/url"
	"time"

	"github.com/hoplink/hoplink/pkg/header"
)

// Record describes one physical attempt. Records are immutable once created
// and accumulate in chronological order within a single logical request.
type Record struct {
	// URI actually requested for this attempt, after any redirect resolution
	URI *url.URL

	// Status is the HTTP status code, 100-599
	Status int

	// Header is the normalized response header section
	Header header.Header

	// Start and End bound the attempt in wall-clock time
	Start time.Time
	End   time.Time

	// ProtoMajor and ProtoMinor identify the protocol version
	ProtoMajor int
	ProtoMinor int
}

// The extraction helpers below read from the final attempt's record: after
// redirects, that is the response whose headers describe the body the caller
// actually received.

func finalRecord(meta []Record) (*Record, bool) {
	if len(meta) == 0 {
		return nil, false
	}
	return &meta[len(meta)-1], true
}

// ContentType returns the structured content type of the final attempt.
func ContentType(meta []Record) (mtype string, params map[string]string, ok bool) {
	rec, ok := finalRecord(meta)
	if !ok {
		return "", nil, false
	}
	return header.MediaType(rec.Header.Get("content-type"))
}

// Filename returns the name advertised by a Content-Disposition header.
func Filename(meta []Record) (string, bool) {
	rec, ok := finalRecord(meta)
	if !ok {
		return "", false
	}
	return header.Filename(rec.Header.Get("content-disposition"))
}

// FinalURI returns the fully resolved URI of the final attempt.
func FinalURI(meta []Record) (*url.URL, bool) {
	rec, ok := finalRecord(meta)
	if !ok {
		return nil, false
	}
	return rec.URI, true
}

// Status returns the final attempt's status code.
func Status(meta []Record) (int, bool) {
	rec, ok := finalRecord(meta)
	if !ok {
		return 0, false
	}
	return rec.Status, true
}

// NextLink returns the pagination URI advertised by the final attempt's Link
// headers under rel="next", resolved relative to the attempt's URI.
func NextLink(meta []Record) (*url.URL, bool) {
	rec, ok := finalRecord(meta)
	if !ok {
		return nil, false
	}
	raw, ok := header.LinkByRel(rec.Header.Values("link"), "next")
	if !ok {
		return nil, false
	}
	next, err := rec.URI.Parse(raw)
	if err != nil {
		return nil, false
	}
	return next, true
}
