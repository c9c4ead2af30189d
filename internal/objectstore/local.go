package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/xlml/bench-metrics/internal/abstractions"
)

// LocalStore serves plain paths and file:// locations from the local disk.
type LocalStore struct{}

func NewLocalStore() *LocalStore {
	return &LocalStore{}
}

func (s *LocalStore) List(ctx context.Context, prefix string) ([]string, error) {
	parsed, err := ParseLocation(prefix)
	if err != nil {
		return nil, err
	}
	withScheme := strings.HasPrefix(prefix, SchemeLocal+"://")

	root := parsed.Key
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		root = filepath.Dir(root)
	}

	var matches []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !strings.HasPrefix(path, parsed.Key) {
			return nil
		}
		if withScheme {
			path = SchemeLocal + "://" + path
		}
		matches = append(matches, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
	}
	slices.Sort(matches)
	return matches, nil
}

func (s *LocalStore) Open(_ context.Context, location string) (io.ReadCloser, error) {
	parsed, err := ParseLocation(location)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(parsed.Key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", location, abstractions.ErrObjectNotFound)
		}
		return nil, err
	}
	return f, nil
}
