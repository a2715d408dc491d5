package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupportedScheme = errors.New("unsupported scheme")
	ErrInvalidLocation   = errors.New("invalid object location")
)

// ObjectStore reads whole objects keyed by container and key.
type ObjectStore interface {
	// Read returns the full object body. It does not stream.
	Read(ctx context.Context, bucket, key string) ([]byte, error)
}

// Location is a parsed s3://bucket/key or file:///path reference.
type Location struct {
	Scheme string
	Bucket string
	Key    string
}

func (l Location) String() string {
	if l.Scheme == "file" {
		return "file://" + l.Key
	}
	return "s3://" + l.Bucket + "/" + l.Key
}

// ParseLocation accepts s3://bucket/key, file:///abs/path or a bare path,
// which is treated as file://.
func ParseLocation(uri string) (Location, error) {
	if !strings.Contains(uri, "://") {
		if uri == "" {
			return Location{}, ErrInvalidLocation
		}
		return Location{Scheme: "file", Key: uri}, nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %v", ErrInvalidLocation, err)
	}
	switch u.Scheme {
	case "file":
		p := strings.TrimPrefix(uri, "file://")
		if p == "" {
			return Location{}, ErrInvalidLocation
		}
		return Location{Scheme: "file", Key: p}, nil
	case "s3":
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return Location{}, ErrInvalidLocation
		}
		return Location{Scheme: "s3", Bucket: u.Host, Key: key}, nil
	default:
		return Location{}, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}
}

// DirStore reads objects from the local filesystem as Root/bucket/key.
type DirStore struct {
	Root string
}

func (d DirStore) Read(ctx context.Context, bucket, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if key == "" {
		return nil, ErrInvalidLocation
	}
	return os.ReadFile(filepath.Join(d.Root, bucket, key))
}
