// Package s3 implements the Amazon S3 backend for "s3://" paths,
// including S3-compatible stores reachable through a custom endpoint:
//
//	s3://bucket/object                     AWS, endpoint from region
//	s3://host:port/bucket/object           custom endpoint, https assumed
//	s3://https://host:port/bucket/object   custom endpoint, explicit scheme
//
// Import it for its side effects:
//
//	import _ "github.com/gobeaver/repofs/driver/s3"
//
// Credentials come from a matched credential entry's static keys, or from
// the SDK's default chain (AWS_* environment variables, shared config)
// when none is configured.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gobeaver/repofs"
)

// Adapter provides an Amazon S3 implementation of repofs.FileSystem.
type Adapter struct {
	client *s3.Client
}

var (
	_ repofs.FileSystem    = (*Adapter)(nil)
	_ repofs.ClientChecker = (*Adapter)(nil)
)

// New creates an S3 adapter on an existing client.
func New(client *s3.Client) *Adapter {
	return &Adapter{client: client}
}

// endpointPattern recognizes the custom-endpoint path form
// s3://[scheme://]host:port/bucket[/object...].
var endpointPattern = regexp.MustCompile(
	`^s3://(http://|https://|)([0-9a-zA-Z\-.]+):([0-9]+)/([0-9a-z.\-]+)((/[0-9a-zA-Z.\-_]+)*)$`)

// cleanPath strips any embedded endpoint from an s3 path, returning the
// canonical "s3://bucket/object" form and the endpoint URL (empty when the
// path carries none). A missing scheme on the endpoint defaults to https.
func cleanPath(path string) (clean, endpoint string) {
	m := endpointPattern.FindStringSubmatch(path)
	if m == nil {
		return path, ""
	}
	scheme := m[1]
	if scheme == "" {
		scheme = "https://"
	}
	return "s3://" + m[4] + m[5], scheme + m[2] + ":" + m[3]
}

// parsePath splits an s3 path into bucket and object key, tolerating an
// embedded endpoint. The object key may be empty (bucket root).
func parsePath(path string) (bucket, object string, err error) {
	clean, _ := cleanPath(path)
	trimmed := strings.TrimPrefix(clean, "s3://")
	if trimmed == clean {
		return "", "", repofs.NewPathError("parse", path, fmt.Errorf("%w: missing s3:// prefix", repofs.ErrInvalidArgument))
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
	if strings.TrimPrefix(path, "s3://") == "" {
		return nil
	}
	bucket, _, err := parsePath(path)
	if err != nil {
		return err
	}
	if _, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err != nil {
		return mapS3Error("check-client", path, err)
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
		_, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(object),
		})
		if err == nil {
			return true, nil
		}
		if !isNotFound(err) {
			return false, mapS3Error("exists", path, err)
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

	if object == "" {
		_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
		if err != nil {
			if isNotFound(err) {
				return false, nil
			}
			return false, mapS3Error("isdir", path, err)
		}
		return true, nil
	}

	out, err := a.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		Prefix:  aws.String(repofs.AppendSlash(object)),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return false, mapS3Error("isdir", path, err)
	}
	return len(out.Contents) > 0, nil
}

// FileModificationTime returns the object's last-modified time in
// nanoseconds since the epoch. Inferred directories report 0.
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
	out, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(object),
	})
	if err != nil {
		return 0, mapS3Error("mtime", path, err)
	}
	if out.LastModified == nil {
		return 0, nil
	}
	return out.LastModified.UnixNano(), nil
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
	paginator := s3.NewListObjectsV2Paginator(a.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, mapS3Error("list", path, err)
		}
		for _, obj := range page.Contents {
			if name, ok := childName(aws.ToString(obj.Key), prefix); ok {
				seen[name] = struct{}{}
			}
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
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(object),
	})
	if err != nil {
		return nil, mapS3Error("open", path, err)
	}
	return out.Body, nil
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
		return "", mapS3Error("read", path, err)
	}
	return string(data), nil
}

// WriteTextFile is not supported on S3.
func (a *Adapter) WriteTextFile(ctx context.Context, path, contents string) error {
	return repofs.NewPathError("write", path, repofs.ErrNotSupported)
}

// WriteBinaryFile is not supported on S3.
func (a *Adapter) WriteBinaryFile(ctx context.Context, path string, contents []byte) error {
	return repofs.NewPathError("write", path, repofs.ErrNotSupported)
}

// MakeDirectory is not supported on S3; directories are inferred from
// object keys.
func (a *Adapter) MakeDirectory(ctx context.Context, dir string, recursive bool) error {
	return repofs.NewPathError("mkdir", dir, repofs.ErrNotSupported)
}

// MakeTemporaryDirectory is not supported on S3.
func (a *Adapter) MakeTemporaryDirectory(ctx context.Context) (string, error) {
	return "", repofs.NewPathError("mkdtemp", "", repofs.ErrNotSupported)
}

// DeleteDirectory is not supported on S3.
func (a *Adapter) DeleteDirectory(ctx context.Context, dir string) error {
	return repofs.NewPathError("rmdir", dir, repofs.ErrNotSupported)
}

// LocalizeDirectory mirrors the tree under path into a local temporary
// directory.
func (a *Adapter) LocalizeDirectory(ctx context.Context, path string) (*repofs.LocalizedDirectory, error) {
	return repofs.Localize(ctx, a, path)
}

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

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	var nsb *types.NoSuchBucket
	var notFound *types.NotFound
	return errors.As(err, &nsk) || errors.As(err, &nsb) || errors.As(err, &notFound)
}

func mapS3Error(op, filePath string, err error) error {
	if isNotFound(err) {
		return repofs.NewPathError(op, filePath, repofs.ErrNotExist)
	}
	return repofs.NewPathError(op, filePath, err)
}
