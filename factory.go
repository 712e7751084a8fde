package repofs

import (
	"context"
	"fmt"
	"sync"
)

// DriverFactory constructs a backend for a path. cred is nil when the
// backend should fall back to its provider's standard environment
// credentials (the legacy path used when no credential file is configured).
type DriverFactory func(ctx context.Context, path string, cred *Credential) (FileSystem, error)

var (
	driversMu sync.RWMutex
	drivers   = make(map[Kind]DriverFactory)
)

// RegisterDriver registers a backend factory for a kind. Driver packages
// call this from init; importing a driver is what makes its kind
// resolvable.
func RegisterDriver(kind Kind, factory DriverFactory) {
	driversMu.Lock()
	defer driversMu.Unlock()
	drivers[kind] = factory
}

func driverFor(kind Kind) (DriverFactory, error) {
	driversMu.RLock()
	factory, ok := drivers[kind]
	driversMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s backend not available, import github.com/gobeaver/repofs/driver/%s",
			ErrNotSupported, kind, kind)
	}
	return factory, nil
}

// Resolve constructs a fresh, validated backend for path. Backends are
// never pooled; every call builds its own instance.
//
// For cloud paths the credential file is consulted with longest-prefix
// matching. A lookup or client-validation failure against an already-cached
// credential table flushes the cache and retries the resolution exactly
// once; a failure against a freshly loaded table is surfaced immediately.
func Resolve(ctx context.Context, path string) (FileSystem, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidArgument)
	}

	for attempt := 0; ; attempt++ {
		fs, stale, err := resolveOnce(ctx, path)
		if err == nil {
			return fs, nil
		}
		if !stale || attempt > 0 {
			return nil, err
		}
		if _, lerr := credentials.load(true); lerr != nil {
			return nil, lerr
		}
	}
}

// resolveOnce performs a single resolution attempt. The second return
// value reports whether the failure happened against a cached (possibly
// stale) credential table and is therefore worth one reload.
func resolveOnce(ctx context.Context, path string) (FileSystem, bool, error) {
	kind := Classify(path)

	factory, err := driverFor(kind)
	if err != nil {
		return nil, false, err
	}

	// Local paths never involve credentials.
	if kind == KindLocal {
		fs, err := factory(ctx, path, nil)
		return fs, false, err
	}

	res, err := credentials.load(false)
	if err != nil {
		return nil, false, err
	}

	if res == credentialNotConfigured {
		fs, err := factory(ctx, path, nil)
		if err != nil {
			return nil, false, err
		}
		if err := checkClient(ctx, fs, path); err != nil {
			return nil, false, err
		}
		return fs, false, nil
	}

	stale := res == credentialCached

	cred, err := credentials.match(kind, stripScheme(path))
	if err != nil {
		return nil, stale, err
	}
	fs, err := factory(ctx, path, &cred)
	if err != nil {
		return nil, stale, err
	}
	if err := checkClient(ctx, fs, path); err != nil {
		return nil, stale, err
	}
	return fs, false, nil
}

func checkClient(ctx context.Context, fs FileSystem, path string) error {
	if checker, ok := fs.(ClientChecker); ok {
		return checker.CheckClient(ctx, path)
	}
	return nil
}

// ResolveKind constructs a backend by kind rather than by full path. With a
// credential file this selects the default credential (the entry whose name
// prefixes the empty path). With environment credentials only Local and GCS
// are unambiguous; S3 and Azure need a full path to pick endpoint and
// account, so resolution by kind is refused for them.
func ResolveKind(ctx context.Context, kind Kind) (FileSystem, error) {
	switch kind {
	case KindLocal, KindGCS, KindS3, KindAzure:
	default:
		return nil, fmt.Errorf("%w: unknown backend kind %d", ErrNotSupported, int(kind))
	}

	res, err := credentials.load(false)
	if err != nil {
		return nil, err
	}

	if res == credentialNotConfigured {
		switch kind {
		case KindS3, KindAzure:
			return nil, fmt.Errorf("%w: %s backend cannot be resolved by kind with environment variable credentials",
				ErrNotSupported, kind)
		}
	}

	if kind == KindLocal {
		factory, err := driverFor(KindLocal)
		if err != nil {
			return nil, err
		}
		return factory(ctx, "", nil)
	}
	return Resolve(ctx, kind.scheme())
}
