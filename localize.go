package repofs

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// LocalizedDirectory is a handle to a directory usable through the local
// filesystem. It either owns a temporary mirror of a remote tree or points
// at a local source in place; only the former is deleted on Release.
type LocalizedDirectory struct {
	source  string
	local   string
	release sync.Once
}

// NewLocalizedDirectory wraps a directory that is used in place: Path
// reports source unchanged and Release is a no-op.
func NewLocalizedDirectory(source string) *LocalizedDirectory {
	return &LocalizedDirectory{source: source}
}

// Path returns the directory to operate on: the local mirror when one is
// owned, the original source otherwise.
func (d *LocalizedDirectory) Path() string {
	if d.local != "" {
		return d.local
	}
	return d.source
}

// Source returns the path the handle was localized from.
func (d *LocalizedDirectory) Source() string {
	return d.source
}

// Release deletes the owned mirror, if any. It is idempotent and safe to
// call concurrently; deletion failures are logged, never returned, so
// cleanup in defer chains cannot mask the primary error.
func (d *LocalizedDirectory) Release() {
	d.release.Do(func() {
		if d.local == "" {
			return
		}
		if err := os.RemoveAll(d.local); err != nil {
			log().Error("failed to delete localized directory",
				zap.String("path", d.local),
				zap.Error(err))
		}
	})
}

// Localize mirrors the directory tree at source into a fresh temporary
// directory on local disk, using only fs's listing and read primitives.
// Remote-backed drivers delegate their LocalizeDirectory to this.
//
// The copy proceeds breadth first and aborts on the first failed entry; a
// partial mirror is left on disk in that case and only the error is
// returned.
func Localize(ctx context.Context, fs FileSystem, source string) (*LocalizedDirectory, error) {
	exists, err := fs.FileExists(ctx, source)
	if err != nil {
		return nil, err
	}
	isDir := false
	if exists {
		if isDir, err = fs.IsDirectory(ctx, source); err != nil {
			return nil, err
		}
	}
	if !isDir {
		return nil, NewPathError("localize", source, fmt.Errorf("directory does not exist: %w", ErrNotExist))
	}

	tmp, err := os.MkdirTemp("", "repofs")
	if err != nil {
		return nil, NewPathError("localize", source, err)
	}
	dir := &LocalizedDirectory{source: source, local: tmp}

	log().Debug("localizing directory",
		zap.String("source", source),
		zap.String("target", tmp))

	frontier, err := childPaths(ctx, fs, source)
	if err != nil {
		return nil, err
	}
	for len(frontier) > 0 {
		batch := frontier
		frontier = nil
		for _, p := range batch {
			rel := strings.TrimPrefix(p, source)
			local := JoinPath(tmp, rel)

			isSub, err := fs.IsDirectory(ctx, p)
			if err != nil {
				return nil, err
			}
			if isSub {
				if err := os.Mkdir(local, 0o700); err != nil {
					return nil, NewPathError("localize", local, err)
				}
				children, err := childPaths(ctx, fs, p)
				if err != nil {
					return nil, err
				}
				frontier = append(frontier, children...)
				continue
			}
			if err := copyRemoteFile(ctx, fs, p, local); err != nil {
				return nil, err
			}
		}
	}
	return dir, nil
}

func childPaths(ctx context.Context, fs FileSystem, dir string) ([]string, error) {
	names, err := fs.GetDirectoryContents(ctx, dir)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(names))
	for _, name := range names {
		paths = append(paths, JoinPath(dir, name))
	}
	return paths, nil
}

func copyRemoteFile(ctx context.Context, fs FileSystem, source, target string) error {
	r, err := fs.NewReader(ctx, source)
	if err != nil {
		return err
	}
	defer r.Close()

	w, err := os.Create(target)
	if err != nil {
		return NewPathError("localize", target, err)
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return NewPathError("localize", target, err)
	}
	if err := w.Close(); err != nil {
		return NewPathError("localize", target, err)
	}
	return nil
}
