package local

import (
	"context"

	"github.com/gobeaver/repofs"
)

func init() {
	repofs.RegisterDriver(repofs.KindLocal, func(ctx context.Context, path string, cred *repofs.Credential) (repofs.FileSystem, error) {
		return New(), nil
	})
}
