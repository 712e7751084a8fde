package repofs_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gobeaver/repofs/driver/memory"
)

func ExampleLocalize() {
	ctx := context.Background()

	// Using memory for the example; real paths resolve to cloud backends.
	store := memory.New()
	store.Put("mem://bucket/model/config", []byte("platform: onnx"))
	store.Put("mem://bucket/model/1/weights", []byte("..."))

	dir, err := store.LocalizeDirectory(ctx, "mem://bucket/model")
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	defer dir.Release()

	data, _ := os.ReadFile(filepath.Join(dir.Path(), "config"))
	fmt.Println(string(data))
	// Output:
	// platform: onnx
}

func ExampleFileSystem_GetDirectoryContents() {
	ctx := context.Background()
	store := memory.New()
	store.Put("mem://bucket/models/resnet/config", []byte("..."))
	store.Put("mem://bucket/models/resnet/1/weights", []byte("..."))
	store.Put("mem://bucket/models/bert/config", []byte("..."))

	names, _ := store.GetDirectoryContents(ctx, "mem://bucket/models")
	for _, name := range names {
		fmt.Println(name)
	}
	// Output:
	// bert
	// resnet
}
