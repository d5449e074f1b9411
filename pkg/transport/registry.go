package transport

import (
	"context"
	"sync"
)

var DefaultRegistry = NewRegistry()

func init() {
	DefaultRegistry.Register(NewHTTPTransport())
	DefaultRegistry.Register(NewFileTransport())
}

// Registry dispatches physical attempts to the transport registered for the
// URI's scheme.
type Registry struct {
	transports map[string]Transport
	mu         sync.RWMutex
}

// NewRegistry creates a new transport registry
func NewRegistry() *Registry {
	return &Registry{
		transports: make(map[string]Transport),
	}
}

// Register adds a transport for each scheme it handles
func (r *Registry) Register(transport Transport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, scheme := range transport.Schemes() {
		r.transports[scheme] = transport
	}
}

func (r *Registry) Select(scheme string) (Transport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transports[scheme]
	if !ok {
		return nil, &UnsupportedSchemeError{Scheme: scheme}
	}
	return t, nil
}

func (r *Registry) RoundTrip(ctx context.Context, req *Request) (*Response, error) {
	t, err := r.Select(req.URI.Scheme)
	if err != nil {
		return nil, err
	}
	return t.RoundTrip(ctx, req)
}
