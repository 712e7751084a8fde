// Package repofs provides a location-transparent filesystem abstraction for
// loading directory-shaped artifacts (model repositories, config trees) from
// local disk or cloud object storage, addressed by URI.
//
// Callers hand repofs a path; the scheme prefix selects the backend
// ("gs://" Google Cloud Storage, "s3://" Amazon S3, "as://" Azure Blob
// Storage, anything else local disk), credentials are resolved from an
// optional JSON credential file with longest-prefix matching, and the
// resulting backend satisfies one common [FileSystem] interface.
//
// # Backends
//
// Backends live in driver subpackages and register themselves with the
// resolver when imported:
//
//   - Local filesystem (github.com/gobeaver/repofs/driver/local)
//   - Amazon S3 (github.com/gobeaver/repofs/driver/s3)
//   - Google Cloud Storage (github.com/gobeaver/repofs/driver/gcs)
//   - Azure Blob Storage (github.com/gobeaver/repofs/driver/azure)
//
// github.com/gobeaver/repofs/driver/memory implements the same interface
// over an in-memory object store for tests; it has no URI scheme and is
// used directly rather than resolved.
//
// Import the drivers you need for their side effects:
//
//	import (
//	    "github.com/gobeaver/repofs"
//
//	    _ "github.com/gobeaver/repofs/driver/local"
//	    _ "github.com/gobeaver/repofs/driver/s3"
//	)
//
// Resolving a path whose driver is not linked in fails with
// [ErrNotSupported] naming the package to import.
//
// # Basic Usage
//
//	ctx := context.Background()
//
//	// One-shot operations resolve a backend per call.
//	exists, err := repofs.FileExists(ctx, "s3://bucket/models/resnet")
//	text, err := repofs.ReadTextFile(ctx, "gs://bucket/models/resnet/config")
//
//	// Snapshot a remote directory tree onto local disk.
//	dir, err := repofs.LocalizeDirectory(ctx, "s3://bucket/models/resnet")
//	if err != nil {
//	    return err
//	}
//	defer dir.Release()
//	loadModel(dir.Path()) // ordinary local files
//
// For a local source LocalizeDirectory uses the directory in place and
// Release is a no-op; for a remote source the tree is mirrored into a
// private temporary directory that Release deletes.
//
// # Credentials
//
// The environment variable REPOFS_CLOUD_CREDENTIAL_PATH names a JSON file
// mapping path prefixes to per-backend secret bundles:
//
//	{
//	    "gs": {"": "/secrets/gcp-default.json",
//	           "bucket-a": "/secrets/gcp-bucket-a.json"},
//	    "s3": {"": {"secret_key": "...", "key_id": "...", "region": "...",
//	                "session_token": ""}},
//	    "as": {"": {"account_str": "...", "account_key": "..."}}
//	}
//
// The entry with the longest name that prefixes the scheme-stripped path
// wins. The parsed file is cached process-wide; a failed lookup or client
// validation against a cached table triggers exactly one reload before the
// failure is surfaced. Without a credential file each provider's standard
// environment variables are used instead.
package repofs
