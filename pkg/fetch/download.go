package fetch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// Exists performs a head-only probe: redirects are still resolved, but no
// body is read and no success/failure policy applies.
func (e *Engine) Exists(ctx context.Context, uri *url.URL) (bool, error) {
	var status int
	body, err := e.Open(ctx, uri, &Options{
		Method: http.MethodHead,
		Status: &status,
	})
	if err != nil {
		return false, err
	}
	if body != nil {
		body.Close()
	}
	return status >= 200 && status <= 299, nil
}

// Download streams every page of uri into a single file. The content goes to
// a temporary file in the destination directory first and is renamed into
// place only after the whole sequence succeeded, so a partial download never
// shadows an existing file. It returns the final path written.
//
// When dest is an existing directory, the file name is taken from the
// response's Content-Disposition header, then the resolved URI's path, then a
// Content-Type derived fallback.
func (e *Engine) Download(ctx context.Context, uri *url.URL, dest string, opts *Options) (string, error) {
	target := dest
	destIsDir := false
	if fi, err := os.Stat(dest); err == nil && fi.IsDir() {
		destIsDir = true
	}

	var tmp *os.File
	var tmpPath string
	cleanup := func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}

	for page, err := range e.Pages(ctx, uri, opts) {
		if err != nil {
			cleanup()
			return "", err
		}
		if page.Body == nil {
			continue
		}
		body := page.Body
		if tmp == nil {
			if destIsDir {
				var name string
				name, body = downloadName(page.Meta, body)
				target = filepath.Join(dest, name)
			}
			tmp, err = os.CreateTemp(filepath.Dir(target), ".hoplink-*")
			if err != nil {
				return "", fmt.Errorf("failed to create temporary file: %w", err)
			}
			tmpPath = tmp.Name()
		}
		if _, err := io.Copy(tmp, body); err != nil {
			cleanup()
			return "", fmt.Errorf("failed to write download: %w", err)
		}
	}

	if tmp == nil {
		// Every page was a silent negative; nothing to write.
		return "", nil
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to flush download: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to move download into place: %w", err)
	}
	return target, nil
}

// Sync is the idempotent variant of Download: a no-op when dest already
// exists as a file.
func (e *Engine) Sync(ctx context.Context, uri *url.URL, dest string, opts *Options) (string, error) {
	if fi, err := os.Stat(dest); err == nil && !fi.IsDir() {
		return dest, nil
	}
	return e.Download(ctx, uri, dest, opts)
}

// downloadName derives a local file name from a completed request's metadata.
// When neither a Content-Disposition name nor a usable URI basename exists,
// the first bytes of the body are sniffed for a file extension; the returned
// reader replays any bytes consumed by the sniff.
func downloadName(meta []Record, body io.Reader) (string, io.Reader) {
	if name, ok := Filename(meta); ok {
		return filepath.Base(name), body
	}
	if final, ok := FinalURI(meta); ok {
		if base := path.Base(final.Path); base != "" && base != "." && base != "/" {
			return base, body
		}
	}
	name := "download"
	br := bufio.NewReader(body)
	if peeked, _ := br.Peek(512); len(peeked) > 0 {
		if ext := mimetype.Detect(peeked).Extension(); ext != "" {
			return name + ext, br
		}
	}
	if mtype, _, ok := ContentType(meta); ok {
		if exts, err := mime.ExtensionsByType(mtype); err == nil && len(exts) > 0 {
			name += exts[0]
		}
	}
	return name, br
}
