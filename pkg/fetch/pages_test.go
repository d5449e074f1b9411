package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoplink/hoplink/pkg/transport"
)

// pagedServer serves /page/N with a rel="next" link to /page/N+1 until last.
func pagedServer(t *testing.T, last int) *httptest.Server {
	t.Helper()
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var n int
		fmt.Sscanf(r.URL.Path, "/page/%d", &n)
		w.Header().Set("Content-Type", "text/plain")
		if n < last {
			w.Header().Set("Link", fmt.Sprintf(`<%s/page/%d>; rel="next"`, server.URL, n+1))
		}
		fmt.Fprintf(w, "page %d", n)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCall_ConsumesEveryPageInOrder(t *testing.T) {
	server := pagedServer(t, 3)

	var pages []string
	err := newEngine().Call(context.Background(), mustParse(t, server.URL+"/page/1"), nil,
		func(body io.Reader) error {
			content, err := io.ReadAll(body)
			if err != nil {
				return err
			}
			pages = append(pages, string(content))
			return nil
		})
	require.NoError(t, err)

	assert.Equal(t, []string{"page 1", "page 2", "page 3"}, pages)
}

func TestCall_SinglePageWithoutNextLink(t *testing.T) {
	server := pagedServer(t, 1)

	var calls int
	err := newEngine().Call(context.Background(), mustParse(t, server.URL+"/page/1"), nil,
		func(body io.Reader) error {
			calls++
			return nil
		})
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}

func TestCall_ConsumerErrorStopsIteration(t *testing.T) {
	server := pagedServer(t, 5)

	var calls int
	err := newEngine().Call(context.Background(), mustParse(t, server.URL+"/page/1"), nil,
		func(body io.Reader) error {
			calls++
			return fmt.Errorf("enough")
		})
	require.Error(t, err)
	assert.EqualError(t, err, "enough")
	assert.Equal(t, 1, calls)
}

func TestCall_CyclicNextLink(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Header().Set("Link", fmt.Sprintf(`<%s/page/1>; rel="next"`, server.URL))
		io.WriteString(w, "page 1")
	}))
	defer server.Close()

	var calls int
	err := newEngine().Call(context.Background(), mustParse(t, server.URL+"/page/1"), nil,
		func(body io.Reader) error {
			calls++
			return nil
		})
	require.Error(t, err)

	var cyclicErr *CyclicLinkError
	require.ErrorAs(t, err, &cyclicErr)
	assert.Equal(t, 1, calls, "cycle detected on the first iteration")
}

func TestPages_NextSlotPropagatedToCaller(t *testing.T) {
	server := pagedServer(t, 2)

	var next *url.URL
	opts := &Options{Next: &next}
	for page, err := range newEngine().Pages(context.Background(), mustParse(t, server.URL+"/page/1"), opts) {
		require.NoError(t, err)
		require.NotNil(t, page)
		break
	}

	require.NotNil(t, next)
	assert.Contains(t, next.String(), "/page/2")
}

func TestPages_MetadataSlotFilledOnError(t *testing.T) {
	mux := http.NewServeMux()
	var server *httptest.Server
	mux.HandleFunc("/page/1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Header().Set("Link", fmt.Sprintf(`<%s/page/2>; rel="next"`, server.URL))
		io.WriteString(w, "page 1")
	})
	mux.HandleFunc("/page/2", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	var meta []Record
	opts := &Options{Metadata: &meta}
	var lastErr error
	for _, err := range newEngine().Pages(context.Background(), mustParse(t, server.URL+"/page/1"), opts) {
		if err != nil {
			lastErr = err
		}
	}
	require.Error(t, lastErr)

	// The slot reflects the failing page's attempts, not the prior page's.
	require.NotEmpty(t, meta)
	status, ok := Status(meta)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, status)
}

// trackingTransport wraps responses so tests can observe stream lifecycles.
type trackingTransport struct {
	mu     sync.Mutex
	inner  transport.Transport
	events []string
	open   int
}

func (tt *trackingTransport) Schemes() []string { return tt.inner.Schemes() }

func (tt *trackingTransport) RoundTrip(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	resp, err := tt.inner.RoundTrip(ctx, req)
	if err != nil {
		return nil, err
	}
	tt.mu.Lock()
	tt.open++
	tt.events = append(tt.events, "open "+req.URI.Path)
	tt.mu.Unlock()
	resp.Body = &trackedStream{ReadCloser: resp.Body, tt: tt, path: req.URI.Path}
	return resp, nil
}

type trackedStream struct {
	io.ReadCloser
	tt     *trackingTransport
	path   string
	closed bool
}

func (s *trackedStream) Close() error {
	s.tt.mu.Lock()
	if !s.closed {
		s.closed = true
		s.tt.open--
		s.tt.events = append(s.tt.events, "close "+s.path)
	}
	s.tt.mu.Unlock()
	return s.ReadCloser.Close()
}

func TestPages_OnePageStreamOpenAtATime(t *testing.T) {
	server := pagedServer(t, 3)

	tracker := &trackingTransport{inner: transport.NewHTTPTransport()}
	registry := transport.NewRegistry()
	registry.Register(tracker)

	engine := newEngine()
	engine.SetRegistry(registry)

	err := engine.Call(context.Background(), mustParse(t, server.URL+"/page/1"), nil,
		func(body io.Reader) error {
			_, err := io.ReadAll(body)
			return err
		})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"open /page/1", "close /page/1",
		"open /page/2", "close /page/2",
		"open /page/3", "close /page/3",
	}, tracker.events)
	assert.Zero(t, tracker.open)
}

func TestPages_EarlyBreakClosesBody(t *testing.T) {
	server := pagedServer(t, 5)

	tracker := &trackingTransport{inner: transport.NewHTTPTransport()}
	registry := transport.NewRegistry()
	registry.Register(tracker)

	engine := newEngine()
	engine.SetRegistry(registry)

	for page, err := range engine.Pages(context.Background(), mustParse(t, server.URL+"/page/1"), nil) {
		require.NoError(t, err)
		require.NotNil(t, page.Body)
		break
	}

	assert.Equal(t, []string{"open /page/1", "close /page/1"}, tracker.events)
	assert.Zero(t, tracker.open)
}

func TestPages_FreshStatePerPage(t *testing.T) {
	server := pagedServer(t, 2)

	var metas [][]Record
	for page, err := range newEngine().Pages(context.Background(), mustParse(t, server.URL+"/page/1"), nil) {
		require.NoError(t, err)
		metas = append(metas, page.Meta)
	}

	// Each page carries only its own attempt records, not the prior page's.
	require.Len(t, metas, 2)
	assert.Len(t, metas[0], 1)
	assert.Len(t, metas[1], 1)
}
