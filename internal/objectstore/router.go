package objectstore

import (
	"context"
	"fmt"
	"io"

	"github.com/xlml/bench-metrics/internal/abstractions"
)

// Router dispatches to the store registered for the scheme of a location.
type Router struct {
	stores map[string]abstractions.ObjectStore
}

func NewRouter() *Router {
	return &Router{stores: map[string]abstractions.ObjectStore{}}
}

func (r *Router) Register(scheme string, store abstractions.ObjectStore) *Router {
	r.stores[scheme] = store
	return r
}

func (r *Router) storeFor(location string) (abstractions.ObjectStore, error) {
	parsed, err := ParseLocation(location)
	if err != nil {
		return nil, err
	}
	store, ok := r.stores[parsed.Scheme]
	if !ok {
		return nil, fmt.Errorf("no object store configured for scheme %q", parsed.Scheme)
	}
	return store, nil
}

func (r *Router) List(ctx context.Context, prefix string) ([]string, error) {
	store, err := r.storeFor(prefix)
	if err != nil {
		return nil, err
	}
	return store.List(ctx, prefix)
}

func (r *Router) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	store, err := r.storeFor(location)
	if err != nil {
		return nil, err
	}
	return store.Open(ctx, location)
}
