package repofs

import (
	"context"
	"io"
	"strings"
)

// Package-level operations: each call resolves a fresh backend for the path
// and forwards to it. Callers doing many operations against one location
// should Resolve once and use the FileSystem directly.

// FileExists reports whether path names an existing file or directory.
func FileExists(ctx context.Context, path string) (bool, error) {
	fs, err := Resolve(ctx, path)
	if err != nil {
		return false, err
	}
	return fs.FileExists(ctx, path)
}

// IsDirectory reports whether path names a directory.
func IsDirectory(ctx context.Context, path string) (bool, error) {
	fs, err := Resolve(ctx, path)
	if err != nil {
		return false, err
	}
	return fs.IsDirectory(ctx, path)
}

// FileModificationTime returns the modification time of path in nanoseconds
// since the Unix epoch. Directories report zero.
func FileModificationTime(ctx context.Context, path string) (int64, error) {
	fs, err := Resolve(ctx, path)
	if err != nil {
		return 0, err
	}
	return fs.FileModificationTime(ctx, path)
}

// GetDirectoryContents returns the immediate child names of dir.
func GetDirectoryContents(ctx context.Context, dir string) ([]string, error) {
	fs, err := Resolve(ctx, dir)
	if err != nil {
		return nil, err
	}
	return fs.GetDirectoryContents(ctx, dir)
}

// GetDirectorySubdirs returns the immediate child directory names of dir.
func GetDirectorySubdirs(ctx context.Context, dir string) ([]string, error) {
	fs, err := Resolve(ctx, dir)
	if err != nil {
		return nil, err
	}
	return fs.GetDirectorySubdirs(ctx, dir)
}

// GetDirectoryFiles returns the immediate child file names of dir. With
// skipHidden set, names starting with "." are omitted.
func GetDirectoryFiles(ctx context.Context, dir string, skipHidden bool) ([]string, error) {
	fs, err := Resolve(ctx, dir)
	if err != nil {
		return nil, err
	}
	files, err := fs.GetDirectoryFiles(ctx, dir)
	if err != nil {
		return nil, err
	}
	if !skipHidden {
		return files, nil
	}
	visible := files[:0]
	for _, name := range files {
		if !strings.HasPrefix(name, ".") {
			visible = append(visible, name)
		}
	}
	return visible, nil
}

// NewReader opens path for streaming reads.
func NewReader(ctx context.Context, path string) (io.ReadCloser, error) {
	fs, err := Resolve(ctx, path)
	if err != nil {
		return nil, err
	}
	return fs.NewReader(ctx, path)
}

// ReadTextFile returns the entire content of path as a string.
func ReadTextFile(ctx context.Context, path string) (string, error) {
	fs, err := Resolve(ctx, path)
	if err != nil {
		return "", err
	}
	return fs.ReadTextFile(ctx, path)
}

// WriteTextFile writes contents to path, replacing any existing file.
func WriteTextFile(ctx context.Context, path, contents string) error {
	fs, err := Resolve(ctx, path)
	if err != nil {
		return err
	}
	return fs.WriteTextFile(ctx, path, contents)
}

// WriteBinaryFile writes contents to path, replacing any existing file.
func WriteBinaryFile(ctx context.Context, path string, contents []byte) error {
	fs, err := Resolve(ctx, path)
	if err != nil {
		return err
	}
	return fs.WriteBinaryFile(ctx, path, contents)
}

// MakeDirectory creates dir. With recursive set, missing parents are
// created as well.
func MakeDirectory(ctx context.Context, dir string, recursive bool) error {
	fs, err := Resolve(ctx, dir)
	if err != nil {
		return err
	}
	return fs.MakeDirectory(ctx, dir, recursive)
}

// MakeTemporaryDirectory creates a fresh temporary directory on the backend
// of the given kind and returns its path.
func MakeTemporaryDirectory(ctx context.Context, kind Kind) (string, error) {
	fs, err := ResolveKind(ctx, kind)
	if err != nil {
		return "", err
	}
	return fs.MakeTemporaryDirectory(ctx)
}

// DeleteDirectory removes dir and everything below it.
func DeleteDirectory(ctx context.Context, dir string) error {
	fs, err := Resolve(ctx, dir)
	if err != nil {
		return err
	}
	return fs.DeleteDirectory(ctx, dir)
}

// LocalizeDirectory makes the directory at path available on local disk and
// returns a handle to it. Callers must Release the handle when done.
func LocalizeDirectory(ctx context.Context, path string) (*LocalizedDirectory, error) {
	fs, err := Resolve(ctx, path)
	if err != nil {
		return nil, err
	}
	return fs.LocalizeDirectory(ctx, path)
}
