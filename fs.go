package repofs

import (
	"context"
	"io"
)

// FileSystem is the capability contract every backend satisfies. All
// operations are synchronous; the calling goroutine blocks for the duration
// of any network round trip. Paths are full URIs in the backend's own form
// ("gs://bucket/obj", "s3://bucket/obj", "as://account/container/obj", or a
// plain local path).
//
// A backend may decline an operation it cannot express by returning a
// *PathError wrapping [ErrNotSupported]; the cloud backends decline binary
// writes, directory creation and deletion, and temporary-directory creation.
type FileSystem interface {
	// FileExists reports whether path names an existing file or
	// directory (including an inferred pseudo-directory).
	FileExists(ctx context.Context, path string) (bool, error)

	// IsDirectory reports whether path is a directory. Object stores
	// infer directories from key prefixes: a path is a directory iff at
	// least one object lives under its slash-terminated prefix, or the
	// path is the bucket/container root.
	IsDirectory(ctx context.Context, path string) (bool, error)

	// FileModificationTime returns the modification time in nanoseconds
	// since the epoch. Directories report 0.
	FileModificationTime(ctx context.Context, path string) (int64, error)

	// GetDirectoryContents returns the names of the immediate children
	// of path, files and subdirectories mixed, each name appearing once.
	// Order carries no meaning.
	GetDirectoryContents(ctx context.Context, path string) ([]string, error)

	// GetDirectorySubdirs returns the immediate children that are
	// directories. Derived from GetDirectoryContents plus one
	// IsDirectory probe per child.
	GetDirectorySubdirs(ctx context.Context, path string) ([]string, error)

	// GetDirectoryFiles returns the immediate children that are files.
	GetDirectoryFiles(ctx context.Context, path string) ([]string, error)

	// NewReader opens path for streaming reads. The caller closes it.
	NewReader(ctx context.Context, path string) (io.ReadCloser, error)

	// ReadTextFile reads the entire file into memory.
	ReadTextFile(ctx context.Context, path string) (string, error)

	// WriteTextFile replaces the file at path with contents.
	WriteTextFile(ctx context.Context, path, contents string) error

	// WriteBinaryFile replaces the file at path with contents.
	WriteBinaryFile(ctx context.Context, path string, contents []byte) error

	// MakeDirectory creates dir. With recursive set, missing parents are
	// created as well.
	MakeDirectory(ctx context.Context, dir string, recursive bool) error

	// MakeTemporaryDirectory creates a fresh, uniquely named directory
	// and returns its path. Creation is race-free across processes.
	MakeTemporaryDirectory(ctx context.Context) (string, error)

	// DeleteDirectory removes path and everything under it.
	DeleteDirectory(ctx context.Context, path string) error

	// LocalizeDirectory mirrors the directory tree at path onto local
	// disk so it can be consumed as ordinary files. Local backends use
	// the source in place.
	LocalizeDirectory(ctx context.Context, path string) (*LocalizedDirectory, error)
}

// ClientChecker is implemented by backends whose construction involves a
// credential handshake that should be verified before use. The resolver
// calls CheckClient after constructing a cloud backend and applies its
// stale-credential retry policy to failures.
type ClientChecker interface {
	CheckClient(ctx context.Context, path string) error
}
