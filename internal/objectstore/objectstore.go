package objectstore

import (
	"context"

	"github.com/xlml/bench-metrics/internal/config"
)

// New returns a router serving local paths and, unless localOnly is set,
// gs:// and s3:// locations.
func New(ctx context.Context, cfg *config.ObjectStoreConfig, localOnly bool) (*Router, error) {
	router := NewRouter().Register(SchemeLocal, NewLocalStore())
	if localOnly {
		return router, nil
	}
	for _, scheme := range []string{SchemeGCS, SchemeS3} {
		store, err := NewS3Store(ctx, scheme, cfg)
		if err != nil {
			return nil, err
		}
		router.Register(scheme, store)
	}
	return router, nil
}
