package repofs_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gobeaver/repofs"
	"github.com/gobeaver/repofs/driver/memory"

	_ "github.com/gobeaver/repofs/driver/local"
)

func seedModelTree(store *memory.Adapter) {
	store.Put("mem://bucket/model/a", []byte("alpha"))
	store.Put("mem://bucket/model/b", []byte("beta"))
	store.Put("mem://bucket/model/c/d", []byte("delta"))
}

func TestLocalizeRemoteTree(t *testing.T) {
	store := memory.New()
	seedModelTree(store)
	ctx := context.Background()

	dir, err := store.LocalizeDirectory(ctx, "mem://bucket/model")
	if err != nil {
		t.Fatal(err)
	}
	if dir.Path() == dir.Source() {
		t.Fatal("remote localization should produce a local mirror")
	}

	for rel, want := range map[string]string{
		"a":   "alpha",
		"b":   "beta",
		"c/d": "delta",
	} {
		data, err := os.ReadFile(filepath.Join(dir.Path(), rel))
		if err != nil {
			t.Fatalf("reading %s: %v", rel, err)
		}
		if string(data) != want {
			t.Errorf("%s = %q, want %q", rel, data, want)
		}
	}

	info, err := os.Stat(filepath.Join(dir.Path(), "c"))
	if err != nil || !info.IsDir() {
		t.Errorf("c should be a directory: %v", err)
	}

	root := dir.Path()
	dir.Release()
	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Errorf("mirror should be gone after release, stat err = %v", err)
	}

	// Release is idempotent.
	dir.Release()
}

func TestLocalizeLocalInPlace(t *testing.T) {
	src := t.TempDir()
	file := filepath.Join(src, "config")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	dir, err := repofs.LocalizeDirectory(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	if dir.Path() != src {
		t.Fatalf("Path() = %q, want the source %q", dir.Path(), src)
	}

	dir.Release()
	if _, err := os.Stat(file); err != nil {
		t.Errorf("release must not touch an in-place source: %v", err)
	}
}

func TestLocalizeMissingDirectory(t *testing.T) {
	store := memory.New()
	store.Put("mem://bucket/file", []byte("x"))
	ctx := context.Background()

	t.Run("absent path", func(t *testing.T) {
		if _, err := store.LocalizeDirectory(ctx, "mem://bucket/nothing"); err == nil {
			t.Fatal("expected an error for a missing directory")
		}
	})

	t.Run("plain object", func(t *testing.T) {
		if _, err := store.LocalizeDirectory(ctx, "mem://bucket/file"); err == nil {
			t.Fatal("expected an error for a non-directory source")
		}
	})
}

func TestLocalizeConcurrent(t *testing.T) {
	store := memory.New()
	seedModelTree(store)
	ctx := context.Background()

	const n = 4
	dirs := make([]*repofs.LocalizedDirectory, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			dirs[i], errs[i] = store.LocalizeDirectory(ctx, "mem://bucket/model")
		}(i)
	}
	wg.Wait()

	paths := make(map[string]bool)
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("localize %d: %v", i, errs[i])
		}
		if paths[dirs[i].Path()] {
			t.Fatalf("localizations share temp path %q", dirs[i].Path())
		}
		paths[dirs[i].Path()] = true
		defer dirs[i].Release()
	}
}

func TestLocalizeEmptyDirectoryMarker(t *testing.T) {
	store := memory.New()
	store.Put("mem://bucket/empty/", nil)
	ctx := context.Background()

	isDir, err := store.IsDirectory(ctx, "mem://bucket/empty")
	if err != nil || !isDir {
		t.Fatalf("marker prefix should be a directory: %v", err)
	}

	names, err := store.GetDirectoryContents(ctx, "mem://bucket/empty")
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 0 {
		t.Fatalf("self-marker must not list as a child, got %v", names)
	}

	dir, err := store.LocalizeDirectory(ctx, "mem://bucket/empty")
	if err != nil {
		t.Fatal(err)
	}
	defer dir.Release()

	entries, err := os.ReadDir(dir.Path())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("mirror of an empty directory should be empty, got %d entries", len(entries))
	}
}
