package repofs

import "strings"

// Kind identifies which storage backend serves a path.
type Kind int

const (
	// KindLocal is the local disk filesystem.
	KindLocal Kind = iota
	// KindGCS is Google Cloud Storage ("gs://" paths).
	KindGCS
	// KindS3 is Amazon S3 or an S3-compatible store ("s3://" paths).
	KindS3
	// KindAzure is Azure Blob Storage ("as://" paths).
	KindAzure
)

// String returns the backend name used in logs and error messages.
func (k Kind) String() string {
	switch k {
	case KindLocal:
		return "local"
	case KindGCS:
		return "gcs"
	case KindS3:
		return "s3"
	case KindAzure:
		return "azure"
	default:
		return "unknown"
	}
}

// scheme returns the URI prefix for the kind, empty for local.
func (k Kind) scheme() string {
	switch k {
	case KindGCS:
		return "gs://"
	case KindS3:
		return "s3://"
	case KindAzure:
		return "as://"
	default:
		return ""
	}
}

// Classify maps a path to its backend kind by scheme prefix. It checks
// "gs://", "s3://" and "as://" in that order; anything else, including the
// empty string, is a local path. Classify never fails; [Resolve] is the
// place that rejects empty paths.
func Classify(path string) Kind {
	switch {
	case strings.HasPrefix(path, "gs://"):
		return KindGCS
	case strings.HasPrefix(path, "s3://"):
		return KindS3
	case strings.HasPrefix(path, "as://"):
		return KindAzure
	default:
		return KindLocal
	}
}

// stripScheme removes the scheme prefix from a cloud path. All supported
// schemes are five bytes long.
func stripScheme(path string) string {
	if Classify(path) == KindLocal {
		return path
	}
	return path[len("gs://"):]
}
