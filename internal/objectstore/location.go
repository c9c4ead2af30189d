package objectstore

import (
	"fmt"
	"strings"
)

const (
	SchemeGCS   = "gs"
	SchemeS3    = "s3"
	SchemeLocal = "file"
)

// Location is a parsed object location. Local paths have the file scheme,
// an empty bucket and the path as key.
type Location struct {
	Scheme string
	Bucket string
	Key    string
}

// ParseLocation splits gs://bucket/key, s3://bucket/key, file:///path or a
// plain path.
func ParseLocation(location string) (Location, error) {
	scheme, rest, found := strings.Cut(location, "://")
	if !found {
		if location == "" {
			return Location{}, fmt.Errorf("empty location")
		}
		return Location{Scheme: SchemeLocal, Key: location}, nil
	}
	switch scheme {
	case SchemeLocal:
		if rest == "" {
			return Location{}, fmt.Errorf("location %q has no path", location)
		}
		return Location{Scheme: SchemeLocal, Key: rest}, nil
	case SchemeGCS, SchemeS3:
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return Location{}, fmt.Errorf("location %q has no bucket", location)
		}
		return Location{Scheme: scheme, Bucket: bucket, Key: key}, nil
	default:
		return Location{}, fmt.Errorf("unsupported scheme %q in location %q", scheme, location)
	}
}

func (l Location) String() string {
	if l.Scheme == SchemeLocal {
		return l.Key
	}
	return l.Scheme + "://" + l.Bucket + "/" + l.Key
}
