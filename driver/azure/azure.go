// Package azure implements the Azure Blob Storage backend for "as://"
// paths. Both short and fully qualified hosts are accepted:
//
//	as://account/container/blob
//	as://account.blob.core.windows.net/container/blob
//
// Import it for its side effects:
//
//	import _ "github.com/gobeaver/repofs/driver/azure"
//
// Credentials come from a matched credential entry's shared account key,
// or from AZURE_STORAGE_ACCOUNT / AZURE_STORAGE_KEY when none is
// configured. Without a key the client is anonymous, which suffices for
// public containers.
package azure

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
	"github.com/gobeaver/repofs"
)

const blobHostSuffix = ".blob.core.windows.net"

// Adapter provides an Azure Blob Storage implementation of
// repofs.FileSystem.
type Adapter struct {
	client  *azblob.Client
	account string
}

var (
	_ repofs.FileSystem    = (*Adapter)(nil)
	_ repofs.ClientChecker = (*Adapter)(nil)
)

// New creates an Azure adapter on an existing client.
func New(client *azblob.Client, account string) *Adapter {
	return &Adapter{client: client, account: account}
}

// parsePath splits an "as://host/container/blob" path. The host may be a
// bare account name or a fully qualified blob endpoint; a query string on
// the blob segment (SAS token) is dropped. Container and blob may be
// empty.
func parsePath(path string) (account, containerName, blobName string, err error) {
	trimmed := strings.TrimPrefix(path, "as://")
	if trimmed == path {
		return "", "", "", repofs.NewPathError("parse", path, fmt.Errorf("%w: missing as:// prefix", repofs.ErrInvalidArgument))
	}
	host, rest, _ := strings.Cut(trimmed, "/")
	containerName, blobName, _ = strings.Cut(rest, "/")
	if idx := strings.Index(blobName, "?"); idx >= 0 {
		blobName = blobName[:idx]
	}
	account = strings.TrimSuffix(host, blobHostSuffix)
	return account, containerName, blobName, nil
}

// requireContainer parses path and rejects it if no container is named.
func requireContainer(op, path string) (containerName, blobName string, err error) {
	_, containerName, blobName, err = parsePath(path)
	if err != nil {
		return "", "", err
	}
	if containerName == "" {
		return "", "", repofs.NewPathError(op, path, fmt.Errorf("%w: no container name", repofs.ErrInvalidArgument))
	}
	return containerName, blobName, nil
}

func (a *Adapter) containerClient(name string) *container.Client {
	return a.client.ServiceClient().NewContainerClient(name)
}

// CheckClient validates the client against the container in path, when one
// is named. The resolver treats a failure here as a possible stale
// credential.
func (a *Adapter) CheckClient(ctx context.Context, path string) error {
	_, containerName, _, err := parsePath(path)
	if err != nil {
		return err
	}
	if containerName == "" {
		return nil
	}
	if _, err := a.containerClient(containerName).GetProperties(ctx, nil); err != nil {
		return mapAzureError("check-client", path, err)
	}
	return nil
}

// FileExists reports whether path names a blob or an inferred directory.
func (a *Adapter) FileExists(ctx context.Context, path string) (bool, error) {
	containerName, blobName, err := requireContainer("exists", path)
	if err != nil {
		return false, err
	}
	if blobName != "" {
		blobClient := a.containerClient(containerName).NewBlobClient(blobName)
		_, err := blobClient.GetProperties(ctx, nil)
		if err == nil {
			return true, nil
		}
		if !bloberror.HasCode(err, bloberror.BlobNotFound) {
			return false, mapAzureError("exists", path, err)
		}
	}
	return a.IsDirectory(ctx, path)
}

// IsDirectory reports whether path is an inferred directory: the container
// root, or a prefix with at least one blob under it.
func (a *Adapter) IsDirectory(ctx context.Context, path string) (bool, error) {
	containerName, blobName, err := requireContainer("isdir", path)
	if err != nil {
		return false, err
	}

	if blobName == "" {
		if _, err := a.containerClient(containerName).GetProperties(ctx, nil); err != nil {
			if bloberror.HasCode(err, bloberror.ContainerNotFound) {
				return false, nil
			}
			return false, mapAzureError("isdir", path, err)
		}
		return true, nil
	}

	pager := a.client.NewListBlobsFlatPager(containerName, &azblob.ListBlobsFlatOptions{
		Prefix:     to.Ptr(repofs.AppendSlash(blobName)),
		MaxResults: to.Ptr(int32(1)),
	})
	if !pager.More() {
		return false, nil
	}
	page, err := pager.NextPage(ctx)
	if err != nil {
		return false, mapAzureError("isdir", path, err)
	}
	return len(page.Segment.BlobItems) > 0, nil
}

// FileModificationTime returns the blob's last-modified time in
// nanoseconds since the epoch. Inferred directories report 0.
func (a *Adapter) FileModificationTime(ctx context.Context, path string) (int64, error) {
	containerName, blobName, err := requireContainer("mtime", path)
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
	props, err := a.containerClient(containerName).NewBlobClient(blobName).GetProperties(ctx, nil)
	if err != nil {
		return 0, mapAzureError("mtime", path, err)
	}
	if props.LastModified == nil {
		return 0, nil
	}
	return props.LastModified.UnixNano(), nil
}

// GetDirectoryContents lists the immediate child names under path. Each
// name appears once; a self-marker blob for the prefix itself is skipped.
func (a *Adapter) GetDirectoryContents(ctx context.Context, path string) ([]string, error) {
	containerName, blobName, err := requireContainer("list", path)
	if err != nil {
		return nil, err
	}
	prefix := repofs.AppendSlash(blobName)

	seen := make(map[string]struct{})
	pager := a.client.NewListBlobsFlatPager(containerName, &azblob.ListBlobsFlatOptions{
		Prefix: to.Ptr(prefix),
	})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, mapAzureError("list", path, err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			if name, ok := childName(*item.Name, prefix); ok {
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

// GetDirectoryFiles returns the immediate children of path that are blobs.
func (a *Adapter) GetDirectoryFiles(ctx context.Context, path string) ([]string, error) {
	return filterChildren(ctx, a, path, false)
}

// NewReader opens the blob at path for streaming reads.
func (a *Adapter) NewReader(ctx context.Context, path string) (io.ReadCloser, error) {
	containerName, blobName, err := requireContainer("open", path)
	if err != nil {
		return nil, err
	}
	resp, err := a.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		return nil, mapAzureError("open", path, err)
	}
	return resp.Body, nil
}

// ReadTextFile returns the entire content of the blob at path.
func (a *Adapter) ReadTextFile(ctx context.Context, path string) (string, error) {
	r, err := a.NewReader(ctx, path)
	if err != nil {
		return "", err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return "", mapAzureError("read", path, err)
	}
	return string(data), nil
}

// WriteTextFile uploads contents as a block blob, replacing any existing
// blob at path.
func (a *Adapter) WriteTextFile(ctx context.Context, path, contents string) error {
	containerName, blobName, err := requireContainer("write", path)
	if err != nil {
		return err
	}
	if blobName == "" {
		return repofs.NewPathError("write", path, fmt.Errorf("%w: no blob name", repofs.ErrInvalidArgument))
	}
	if _, err := a.client.UploadBuffer(ctx, containerName, blobName, []byte(contents), nil); err != nil {
		return mapAzureError("write", path, err)
	}
	return nil
}

// WriteBinaryFile is not supported on Azure Blob Storage.
func (a *Adapter) WriteBinaryFile(ctx context.Context, path string, contents []byte) error {
	return repofs.NewPathError("write", path, repofs.ErrNotSupported)
}

// MakeDirectory is not supported on Azure Blob Storage; directories are
// inferred from blob names.
func (a *Adapter) MakeDirectory(ctx context.Context, dir string, recursive bool) error {
	return repofs.NewPathError("mkdir", dir, repofs.ErrNotSupported)
}

// MakeTemporaryDirectory is not supported on Azure Blob Storage.
func (a *Adapter) MakeTemporaryDirectory(ctx context.Context) (string, error) {
	return "", repofs.NewPathError("mkdtemp", "", repofs.ErrNotSupported)
}

// DeleteDirectory is not supported on Azure Blob Storage.
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

func mapAzureError(op, path string, err error) error {
	if bloberror.HasCode(err, bloberror.BlobNotFound) || bloberror.HasCode(err, bloberror.ContainerNotFound) {
		return repofs.NewPathError(op, path, repofs.ErrNotExist)
	}
	return repofs.NewPathError(op, path, err)
}
