package local

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/gobeaver/repofs"
)

func TestFileOperations(t *testing.T) {
	a := New()
	ctx := context.Background()
	dir := t.TempDir()
	file := filepath.Join(dir, "data.txt")

	t.Run("write and read text", func(t *testing.T) {
		if err := a.WriteTextFile(ctx, file, "content"); err != nil {
			t.Fatal(err)
		}
		got, err := a.ReadTextFile(ctx, file)
		if err != nil || got != "content" {
			t.Fatalf("ReadTextFile = %q, %v", got, err)
		}
	})

	t.Run("write binary", func(t *testing.T) {
		bin := filepath.Join(dir, "data.bin")
		if err := a.WriteBinaryFile(ctx, bin, []byte{0x00, 0xff}); err != nil {
			t.Fatal(err)
		}
		got, err := a.ReadTextFile(ctx, bin)
		if err != nil || got != "\x00\xff" {
			t.Fatalf("ReadTextFile = %q, %v", got, err)
		}
	})

	t.Run("streaming reader", func(t *testing.T) {
		r, err := a.NewReader(ctx, file)
		if err != nil {
			t.Fatal(err)
		}
		defer r.Close()
		data, err := io.ReadAll(r)
		if err != nil || string(data) != "content" {
			t.Fatalf("ReadAll = %q, %v", data, err)
		}
	})

	t.Run("exists", func(t *testing.T) {
		exists, err := a.FileExists(ctx, file)
		if err != nil || !exists {
			t.Fatalf("FileExists = %v, %v", exists, err)
		}
		exists, err = a.FileExists(ctx, filepath.Join(dir, "absent"))
		if err != nil || exists {
			t.Fatalf("FileExists(absent) = %v, %v", exists, err)
		}
	})

	t.Run("read missing file", func(t *testing.T) {
		_, err := a.ReadTextFile(ctx, filepath.Join(dir, "absent"))
		if !repofs.IsNotExist(err) {
			t.Fatalf("err = %v, want ErrNotExist", err)
		}
	})

	t.Run("modification time", func(t *testing.T) {
		mtime, err := a.FileModificationTime(ctx, file)
		if err != nil || mtime == 0 {
			t.Fatalf("file mtime = %d, %v", mtime, err)
		}
		mtime, err = a.FileModificationTime(ctx, dir)
		if err != nil || mtime != 0 {
			t.Fatalf("dir mtime = %d, %v, want 0", mtime, err)
		}
	})
}

func TestDirectoryOperations(t *testing.T) {
	a := New()
	ctx := context.Background()
	dir := t.TempDir()

	for _, name := range []string{"b.txt", "a.txt"} {
		if err := a.WriteTextFile(ctx, filepath.Join(dir, name), "x"); err != nil {
			t.Fatal(err)
		}
	}
	if err := a.MakeDirectory(ctx, filepath.Join(dir, "sub"), false); err != nil {
		t.Fatal(err)
	}

	t.Run("contents", func(t *testing.T) {
		names, err := a.GetDirectoryContents(ctx, dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(names) != 3 {
			t.Fatalf("contents = %v, want 3 entries", names)
		}
	})

	t.Run("files", func(t *testing.T) {
		files, err := a.GetDirectoryFiles(ctx, dir)
		if err != nil {
			t.Fatal(err)
		}
		if want := []string{"a.txt", "b.txt"}; !reflect.DeepEqual(files, want) {
			t.Errorf("files = %v, want %v", files, want)
		}
	})

	t.Run("subdirs", func(t *testing.T) {
		subdirs, err := a.GetDirectorySubdirs(ctx, dir)
		if err != nil {
			t.Fatal(err)
		}
		if want := []string{"sub"}; !reflect.DeepEqual(subdirs, want) {
			t.Errorf("subdirs = %v, want %v", subdirs, want)
		}
	})

	t.Run("recursive mkdir", func(t *testing.T) {
		nested := filepath.Join(dir, "x", "y", "z")
		if err := a.MakeDirectory(ctx, nested, false); err == nil {
			t.Error("non-recursive mkdir with missing parents should fail")
		}
		if err := a.MakeDirectory(ctx, nested, true); err != nil {
			t.Fatal(err)
		}
		isDir, err := a.IsDirectory(ctx, nested)
		if err != nil || !isDir {
			t.Fatalf("IsDirectory = %v, %v", isDir, err)
		}
	})

	t.Run("delete directory", func(t *testing.T) {
		if err := a.DeleteDirectory(ctx, filepath.Join(dir, "x")); err != nil {
			t.Fatal(err)
		}
		exists, err := a.FileExists(ctx, filepath.Join(dir, "x"))
		if err != nil || exists {
			t.Fatalf("FileExists after delete = %v, %v", exists, err)
		}
	})

	t.Run("delete rejects files", func(t *testing.T) {
		err := a.DeleteDirectory(ctx, filepath.Join(dir, "a.txt"))
		if !errors.Is(err, repofs.ErrNotDir) {
			t.Fatalf("err = %v, want ErrNotDir", err)
		}
	})
}

func TestMakeTemporaryDirectory(t *testing.T) {
	a := New()
	ctx := context.Background()

	first, err := a.MakeTemporaryDirectory(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(first)
	second, err := a.MakeTemporaryDirectory(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(second)

	if first == second {
		t.Fatalf("temporary directories collide: %q", first)
	}
}

func TestLocalizeInPlace(t *testing.T) {
	a := New()
	ctx := context.Background()
	dir := t.TempDir()

	localized, err := a.LocalizeDirectory(ctx, dir)
	if err != nil {
		t.Fatal(err)
	}
	if localized.Path() != dir {
		t.Fatalf("Path() = %q, want %q", localized.Path(), dir)
	}
	localized.Release()
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("release must not delete an in-place source: %v", err)
	}
}

func TestLocalizeErrors(t *testing.T) {
	a := New()
	ctx := context.Background()
	dir := t.TempDir()
	file := filepath.Join(dir, "plain")
	if err := a.WriteTextFile(ctx, file, "x"); err != nil {
		t.Fatal(err)
	}

	t.Run("file source", func(t *testing.T) {
		_, err := a.LocalizeDirectory(ctx, file)
		if !repofs.IsNotExist(err) {
			t.Fatalf("err = %v, want ErrNotExist", err)
		}
	})

	t.Run("stat failure surfaces", func(t *testing.T) {
		// An over-long name makes stat fail with something other than
		// not-exist; that error must reach the caller untranslated.
		long := filepath.Join(dir, strings.Repeat("x", 4096))
		_, err := a.LocalizeDirectory(ctx, long)
		if err == nil {
			t.Fatal("expected an error")
		}
		if repofs.IsNotExist(err) {
			t.Fatalf("err = %v, want the underlying stat error, not ErrNotExist", err)
		}
	})
}

func TestContextCancellation(t *testing.T) {
	a := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := a.FileExists(ctx, "/tmp"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
