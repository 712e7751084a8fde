// Package memory implements an in-memory object store with the same
// pseudo-directory semantics as the cloud backends: flat keys, "/"
// delimiters, directories inferred from prefixes. It backs tests that
// exercise listing and localization without network access.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gobeaver/repofs"
)

type object struct {
	content []byte
	modTime time.Time
}

// Adapter provides an in-memory implementation of repofs.FileSystem.
// Keys are full paths as given; any scheme prefix is kept verbatim.
type Adapter struct {
	mu      sync.RWMutex
	objects map[string]*object
	tmpSeq  int
}

var _ repofs.FileSystem = (*Adapter)(nil)

// New creates an empty in-memory store.
func New() *Adapter {
	return &Adapter{objects: make(map[string]*object)}
}

// Put seeds an object at path, replacing any existing one.
func (a *Adapter) Put(path string, contents []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.objects[path] = &object{
		content: append([]byte(nil), contents...),
		modTime: time.Now(),
	}
}

// FileExists reports whether path names an object or an inferred
// directory.
func (a *Adapter) FileExists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	a.mu.RLock()
	_, ok := a.objects[path]
	a.mu.RUnlock()
	if ok {
		return true, nil
	}
	return a.IsDirectory(ctx, path)
}

// IsDirectory reports whether at least one object lives under path's
// slash-terminated prefix.
func (a *Adapter) IsDirectory(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	prefix := repofs.AppendSlash(path)
	a.mu.RLock()
	defer a.mu.RUnlock()
	for key := range a.objects {
		if strings.HasPrefix(key, prefix) {
			return true, nil
		}
	}
	return false, nil
}

// FileModificationTime returns the object's modification time in
// nanoseconds since the epoch. Inferred directories report 0.
func (a *Adapter) FileModificationTime(ctx context.Context, path string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	isDir, err := a.IsDirectory(ctx, path)
	if err != nil {
		return 0, err
	}
	if isDir {
		return 0, nil
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	obj, ok := a.objects[path]
	if !ok {
		return 0, repofs.NewPathError("mtime", path, repofs.ErrNotExist)
	}
	return obj.modTime.UnixNano(), nil
}

// GetDirectoryContents lists the immediate child names under path. A
// self-marker object for the prefix itself is skipped.
func (a *Adapter) GetDirectoryContents(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix := repofs.AppendSlash(path)

	a.mu.RLock()
	defer a.mu.RUnlock()
	seen := make(map[string]struct{})
	for key := range a.objects {
		rest := strings.TrimPrefix(key, prefix)
		if rest == key || rest == "" {
			continue
		}
		if idx := strings.Index(rest, "/"); idx >= 0 {
			rest = rest[:idx]
		}
		if rest != "" {
			seen[rest] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// GetDirectorySubdirs returns the immediate children of path that are
// directories.
func (a *Adapter) GetDirectorySubdirs(ctx context.Context, path string) ([]string, error) {
	return a.filterChildren(ctx, path, true)
}

// GetDirectoryFiles returns the immediate children of path that are
// objects.
func (a *Adapter) GetDirectoryFiles(ctx context.Context, path string) ([]string, error) {
	return a.filterChildren(ctx, path, false)
}

func (a *Adapter) filterChildren(ctx context.Context, path string, wantDirs bool) ([]string, error) {
	names, err := a.GetDirectoryContents(ctx, path)
	if err != nil {
		return nil, err
	}
	kept := names[:0]
	for _, name := range names {
		isDir, err := a.IsDirectory(ctx, repofs.JoinPath(path, name))
		if err != nil {
			return nil, err
		}
		if isDir == wantDirs {
			kept = append(kept, name)
		}
	}
	return kept, nil
}

// NewReader opens the object at path for reads.
func (a *Adapter) NewReader(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.mu.RLock()
	obj, ok := a.objects[path]
	a.mu.RUnlock()
	if !ok {
		return nil, repofs.NewPathError("open", path, repofs.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader(obj.content)), nil
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
		return "", repofs.NewPathError("read", path, err)
	}
	return string(data), nil
}

// WriteTextFile replaces the object at path with contents.
func (a *Adapter) WriteTextFile(ctx context.Context, path, contents string) error {
	return a.WriteBinaryFile(ctx, path, []byte(contents))
}

// WriteBinaryFile replaces the object at path with contents.
func (a *Adapter) WriteBinaryFile(ctx context.Context, path string, contents []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.Put(path, contents)
	return nil
}

// MakeDirectory stores a self-marker object so the empty directory is
// listable. recursive is irrelevant for a flat key space.
func (a *Adapter) MakeDirectory(ctx context.Context, dir string, recursive bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.Put(repofs.AppendSlash(dir), nil)
	return nil
}

// MakeTemporaryDirectory creates a uniquely named empty directory and
// returns its path.
func (a *Adapter) MakeTemporaryDirectory(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	a.mu.Lock()
	a.tmpSeq++
	dir := fmt.Sprintf("mem://tmp/%d", a.tmpSeq)
	a.objects[dir+"/"] = &object{modTime: time.Now()}
	a.mu.Unlock()
	return dir, nil
}

// DeleteDirectory removes every object under dir's prefix, including the
// self-marker.
func (a *Adapter) DeleteDirectory(ctx context.Context, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	prefix := repofs.AppendSlash(dir)
	a.mu.Lock()
	defer a.mu.Unlock()
	deleted := false
	for key := range a.objects {
		if strings.HasPrefix(key, prefix) {
			delete(a.objects, key)
			deleted = true
		}
	}
	if !deleted {
		return repofs.NewPathError("rmdir", dir, repofs.ErrNotExist)
	}
	return nil
}

// LocalizeDirectory mirrors the tree under path into a local temporary
// directory.
func (a *Adapter) LocalizeDirectory(ctx context.Context, path string) (*repofs.LocalizedDirectory, error) {
	return repofs.Localize(ctx, a, path)
}
