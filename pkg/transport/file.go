package transport

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

var _ Transport = &FileTransport{}

// FileTransport serves file:// URIs through the same physical-attempt
// contract as HTTP: a missing file is a 404 response, not a transport error,
// so the engine's status handling works uniformly across schemes.
type FileTransport struct{}

func NewFileTransport() *FileTransport {
	return &FileTransport{}
}

func (t *FileTransport) Schemes() []string {
	return []string{"file"}
}

func (t *FileTransport) RoundTrip(ctx context.Context, req *Request) (*Response, error) {
	path := req.URI.Path
	if req.URI.Host != "" {
		// Handle file://host/path format (though host should be empty for local files)
		path = filepath.Join(req.URI.Host, path)
	}

	select {
	case <-ctx.Done():
		return nil, &RoundTripError{
			URI:    req.URI,
			Reason: "context cancelled",
			Err:    ctx.Err(),
		}
	default:
	}

	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Response{
				Status:     http.StatusNotFound,
				RawHeader:  []string{"Content-Length: 0"},
				Body:       io.NopCloser(strings.NewReader("")),
				ProtoMajor: 1,
				ProtoMinor: 1,
			}, nil
		}
		return nil, &RoundTripError{
			URI:    req.URI,
			Reason: "failed to stat file",
			Err:    err,
		}
	}

	if fileInfo.IsDir() {
		return nil, &RoundTripError{
			URI:    req.URI,
			Reason: "path is a directory",
			Err:    nil,
		}
	}

	lines := []string{
		fmt.Sprintf("Content-Length: %d", fileInfo.Size()),
		fmt.Sprintf("Last-Modified: %s", fileInfo.ModTime().UTC().Format(http.TimeFormat)),
	}
	if mt := mime.TypeByExtension(filepath.Ext(path)); mt != "" {
		lines = append(lines, fmt.Sprintf("Content-Type: %s", mt))
	}

	// Head-only probes never read the content
	if strings.EqualFold(req.Method, http.MethodHead) {
		return &Response{
			Status:     http.StatusOK,
			RawHeader:  lines,
			Body:       io.NopCloser(strings.NewReader("")),
			ProtoMajor: 1,
			ProtoMinor: 1,
		}, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, &RoundTripError{
			URI:    req.URI,
			Reason: "failed to open file",
			Err:    err,
		}
	}

	return &Response{
		Status:     http.StatusOK,
		RawHeader:  lines,
		Body:       file,
		ProtoMajor: 1,
		ProtoMinor: 1,
	}, nil
}
