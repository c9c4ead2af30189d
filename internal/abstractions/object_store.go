package abstractions

import (
	"context"
	"io"
)

// ObjectStore reads the files a benchmark run wrote.
type ObjectStore interface {
	// List returns the full locations of all objects beneath prefix in
	// lexicographic order.
	List(ctx context.Context, prefix string) ([]string, error)
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}
