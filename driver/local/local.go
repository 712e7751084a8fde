// Package local implements the local-disk backend.
//
// Import it for its side effects to make plain paths resolvable:
//
//	import _ "github.com/gobeaver/repofs/driver/local"
package local

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/gobeaver/repofs"
)

// Adapter serves plain filesystem paths. It is stateless; the zero value is
// usable.
type Adapter struct{}

var _ repofs.FileSystem = (*Adapter)(nil)

// New returns a local-disk backend.
func New() *Adapter {
	return &Adapter{}
}

// FileExists reports whether path names an existing file or directory.
func (a *Adapter) FileExists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, repofs.NewPathError("exists", path, err)
	}
	return true, nil
}

// IsDirectory reports whether path is a directory.
func (a *Adapter) IsDirectory(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, repofs.NewPathError("isdir", path, repofs.ErrNotExist)
		}
		return false, repofs.NewPathError("isdir", path, err)
	}
	return info.IsDir(), nil
}

// FileModificationTime returns the file's mtime in nanoseconds since the
// epoch. Directories report 0.
func (a *Adapter) FileModificationTime(ctx context.Context, path string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, repofs.NewPathError("mtime", path, repofs.ErrNotExist)
		}
		return 0, repofs.NewPathError("mtime", path, err)
	}
	if info.IsDir() {
		return 0, nil
	}
	return info.ModTime().UnixNano(), nil
}

// GetDirectoryContents returns the sorted names of path's immediate
// children.
func (a *Adapter) GetDirectoryContents(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, repofs.NewPathError("list", path, repofs.ErrNotExist)
		}
		return nil, repofs.NewPathError("list", path, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

// GetDirectorySubdirs returns the immediate children of path that are
// directories.
func (a *Adapter) GetDirectorySubdirs(ctx context.Context, path string) ([]string, error) {
	return a.filterChildren(ctx, path, true)
}

// GetDirectoryFiles returns the immediate children of path that are files.
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
		isDir, err := a.IsDirectory(ctx, filepath.Join(path, name))
		if err != nil {
			return nil, err
		}
		if isDir == wantDirs {
			kept = append(kept, name)
		}
	}
	sort.Strings(kept)
	return kept, nil
}

// NewReader opens path for streaming reads.
func (a *Adapter) NewReader(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, repofs.NewPathError("open", path, repofs.ErrNotExist)
		}
		return nil, repofs.NewPathError("open", path, err)
	}
	return f, nil
}

// ReadTextFile returns the entire content of path.
func (a *Adapter) ReadTextFile(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", repofs.NewPathError("read", path, repofs.ErrNotExist)
		}
		return "", repofs.NewPathError("read", path, err)
	}
	return string(data), nil
}

// WriteTextFile replaces the file at path with contents.
func (a *Adapter) WriteTextFile(ctx context.Context, path, contents string) error {
	return a.WriteBinaryFile(ctx, path, []byte(contents))
}

// WriteBinaryFile replaces the file at path with contents.
func (a *Adapter) WriteBinaryFile(ctx context.Context, path string, contents []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.WriteFile(path, contents, 0o600); err != nil {
		return repofs.NewPathError("write", path, err)
	}
	return nil
}

// MakeDirectory creates dir. With recursive set, missing parents are
// created as well; an existing directory is not an error in that mode.
func (a *Adapter) MakeDirectory(ctx context.Context, dir string, recursive bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var err error
	if recursive {
		err = os.MkdirAll(dir, 0o700)
	} else {
		err = os.Mkdir(dir, 0o700)
	}
	if err != nil {
		return repofs.NewPathError("mkdir", dir, err)
	}
	return nil
}

// MakeTemporaryDirectory creates a fresh, uniquely named directory under
// the system temp root and returns its path.
func (a *Adapter) MakeTemporaryDirectory(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir, err := os.MkdirTemp("", "repofs")
	if err != nil {
		return "", repofs.NewPathError("mkdtemp", "", err)
	}
	return dir, nil
}

// DeleteDirectory removes dir and everything under it.
func (a *Adapter) DeleteDirectory(ctx context.Context, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	isDir, err := a.IsDirectory(ctx, dir)
	if err != nil {
		return err
	}
	if !isDir {
		return repofs.NewPathError("rmdir", dir, repofs.ErrNotDir)
	}
	if err := os.RemoveAll(dir); err != nil {
		return repofs.NewPathError("rmdir", dir, err)
	}
	return nil
}

// LocalizeDirectory uses the directory in place: no copy is made and the
// returned handle's Release is a no-op.
func (a *Adapter) LocalizeDirectory(ctx context.Context, path string) (*repofs.LocalizedDirectory, error) {
	isDir, err := a.IsDirectory(ctx, path)
	if err != nil {
		return nil, err
	}
	if !isDir {
		return nil, repofs.NewPathError("localize", path, repofs.ErrNotExist)
	}
	return repofs.NewLocalizedDirectory(path), nil
}
