// Package gcs implements the Google Cloud Storage backend for "gs://"
// paths.
//
// Import it for its side effects:
//
//	import _ "github.com/gobeaver/repofs/driver/gcs"
//
// Credentials come from a matched credential entry's service-account key
// file, or from Application Default Credentials when none is configured.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/gobeaver/repofs"
	"google.golang.org/api/iterator"
)

// Adapter provides a Google Cloud Storage implementation of
// repofs.FileSystem. Object stores have no real directories; the listing
// operations infer them from "/"-delimited key prefixes.
type Adapter struct {
	client *storage.Client
}

var (
	_ repofs.FileSystem    = (*Adapter)(nil)
	_ repofs.ClientChecker = (*Adapter)(nil)
)

// New creates a GCS adapter on an existing client.
func New(client *storage.Client) *Adapter {
	return &Adapter{client: client}
}

// parsePath splits a "gs://bucket/object" path into bucket and object key.
// The object key may be empty (bucket root).
func parsePath(path string) (bucket, object string, err error) {
	trimmed := strings.TrimPrefix(path, "gs://")
	if trimmed == path {
		return "", "", repofs.NewPathError("parse", path, fmt.Errorf("%w: missing gs:// prefix", repofs.ErrInvalidArgument))
	}
	bucket, object, _ = strings.Cut(trimmed, "/")
	if bucket == "" {
		return "", "", repofs.NewPathError("parse", path, fmt.Errorf("%w: no bucket name", repofs.ErrInvalidArgument))
	}
	return bucket, object, nil
}

// CheckClient validates the client against the bucket in path, when one
// is named. Resolution by kind passes a bare scheme with no bucket; client
// construction is the only validation possible then. The resolver treats a
// failure here as a possible stale credential.
func (a *Adapter) CheckClient(ctx context.Context, path string) error {
	if strings.TrimPrefix(path, "gs://") == "" {
		return nil
	}
	bucket, _, err := parsePath(path)
	if err != nil {
		return err
	}
	if _, err := a.client.Bucket(bucket).Attrs(ctx); err != nil {
		return mapGCSError("check-client", path, err)
	}
	return nil
}

// FileExists reports whether path names an object or an inferred
// directory.
func (a *Adapter) FileExists(ctx context.Context, path string) (bool, error) {
	bucket, object, err := parsePath(path)
	if err != nil {
		return false, err
	}
	if object != "" {
		_, err := a.client.Bucket(bucket).Object(object).Attrs(ctx)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, storage.ErrObjectNotExist) {
			return false, mapGCSError("exists", path, err)
		}
	}
	return a.IsDirectory(ctx, path)
}

// IsDirectory reports whether path is an inferred directory: the bucket
// root, or a prefix with at least one object under it.
func (a *Adapter) IsDirectory(ctx context.Context, path string) (bool, error) {
	bucket, object, err := parsePath(path)
	if err != nil {
		return false, err
	}
	bkt := a.client.Bucket(bucket)

	if object == "" {
		if _, err := bkt.Attrs(ctx); err != nil {
			if errors.Is(err, storage.ErrBucketNotExist) {
				return false, nil
			}
			return false, mapGCSError("isdir", path, err)
		}
		return true, nil
	}

	it := bkt.Objects(ctx, &storage.Query{Prefix: repofs.AppendSlash(object)})
	if _, err := it.Next(); err != nil {
		if errors.Is(err, iterator.Done) {
			return false, nil
		}
		return false, mapGCSError("isdir", path, err)
	}
	return true, nil
}

// FileModificationTime returns the object's update time in nanoseconds
// since the epoch. Inferred directories report 0.
func (a *Adapter) FileModificationTime(ctx context.Context, path string) (int64, error) {
	bucket, object, err := parsePath(path)
	if err != nil {
		return 0, err
	}
	isDir, err := a.IsDirectory(ctx, path)
	if err != nil {
		return 0, err
	}
	if isDir {
		return 0, nil
	}
	attrs, err := a.client.Bucket(bucket).Object(object).Attrs(ctx)
	if err != nil {
		return 0, mapGCSError("mtime", path, err)
	}
	return attrs.Updated.UnixNano(), nil
}

// GetDirectoryContents lists the immediate child names under path. Each
// name appears once; a self-marker object for the prefix itself is skipped.
func (a *Adapter) GetDirectoryContents(ctx context.Context, path string) ([]string, error) {
	bucket, object, err := parsePath(path)
	if err != nil {
		return nil, err
	}
	prefix := repofs.AppendSlash(object)

	seen := make(map[string]struct{})
	it := a.client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, mapGCSError("list", path, err)
		}
		if name, ok := childName(attrs.Name, prefix); ok {
			seen[name] = struct{}{}
		}
	}
	return sortedNames(seen), nil
}

// GetDirectorySubdirs returns the immediate children of path that are
// directories.
func (a *Adapter) GetDirectorySubdirs(ctx context.Context, path string) ([]string, error) {
	return filterChildren(ctx, a, path, true)
}

// GetDirectoryFiles returns the immediate children of path that are
// objects.
func (a *Adapter) GetDirectoryFiles(ctx context.Context, path string) ([]string, error) {
	return filterChildren(ctx, a, path, false)
}

// NewReader opens the object at path for streaming reads.
func (a *Adapter) NewReader(ctx context.Context, path string) (io.ReadCloser, error) {
	bucket, object, err := parsePath(path)
	if err != nil {
		return nil, err
	}
	r, err := a.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, mapGCSError("open", path, err)
	}
	return r, nil
}

// ReadTextFile returns the entire content of the object at path.
func (a *Adapter) ReadTextFile(ctx context.Context, path string) (string, error) {
	r, err := a.NewReader(ctx, path)
	if err != nil {
		return "", err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return "", mapGCSError("read", path, err)
	}
	return string(data), nil
}

// WriteTextFile is not supported on GCS.
func (a *Adapter) WriteTextFile(ctx context.Context, path, contents string) error {
	return repofs.NewPathError("write", path, repofs.ErrNotSupported)
}

// WriteBinaryFile is not supported on GCS.
func (a *Adapter) WriteBinaryFile(ctx context.Context, path string, contents []byte) error {
	return repofs.NewPathError("write", path, repofs.ErrNotSupported)
}

// MakeDirectory is not supported on GCS; directories are inferred from
// object keys.
func (a *Adapter) MakeDirectory(ctx context.Context, dir string, recursive bool) error {
	return repofs.NewPathError("mkdir", dir, repofs.ErrNotSupported)
}

// MakeTemporaryDirectory is not supported on GCS.
func (a *Adapter) MakeTemporaryDirectory(ctx context.Context) (string, error) {
	return "", repofs.NewPathError("mkdtemp", "", repofs.ErrNotSupported)
}

// DeleteDirectory is not supported on GCS.
func (a *Adapter) DeleteDirectory(ctx context.Context, dir string) error {
	return repofs.NewPathError("rmdir", dir, repofs.ErrNotSupported)
}

// LocalizeDirectory mirrors the tree under path into a local temporary
// directory.
func (a *Adapter) LocalizeDirectory(ctx context.Context, path string) (*repofs.LocalizedDirectory, error) {
	return repofs.Localize(ctx, a, path)
}

// childName extracts the immediate child name of prefix from an object
// key: the substring between the prefix and the next "/". The self-marker
// key equal to the prefix yields no child.
func childName(key, prefix string) (string, bool) {
	rest := strings.TrimPrefix(key, prefix)
	if rest == key || rest == "" {
		return "", false
	}
	if idx := strings.Index(rest, "/"); idx >= 0 {
		rest = rest[:idx]
	}
	return rest, rest != ""
}

func sortedNames(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func filterChildren(ctx context.Context, fs repofs.FileSystem, path string, wantDirs bool) ([]string, error) {
	names, err := fs.GetDirectoryContents(ctx, path)
	if err != nil {
		return nil, err
	}
	kept := names[:0]
	for _, name := range names {
		isDir, err := fs.IsDirectory(ctx, repofs.JoinPath(path, name))
		if err != nil {
			return nil, err
		}
		if isDir == wantDirs {
			kept = append(kept, name)
		}
	}
	return kept, nil
}

func mapGCSError(op, path string, err error) error {
	if errors.Is(err, storage.ErrObjectNotExist) {
		return &repofs.PathError{
			Op:   op,
			Path: path,
			Err:  repofs.ErrNotExist,
		}
	}

	if errors.Is(err, storage.ErrBucketNotExist) {
		return &repofs.PathError{
			Op:   op,
			Path: path,
			Err:  repofs.ErrNotExist,
		}
	}

	return &repofs.PathError{
		Op:   op,
		Path: path,
		Err:  err,
	}
}
