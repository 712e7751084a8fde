package gcs

import (
	"context"
	"os"

	"cloud.google.com/go/storage"
	"github.com/gobeaver/repofs"
	"google.golang.org/api/option"
)

func init() {
	repofs.RegisterDriver(repofs.KindGCS, func(ctx context.Context, path string, cred *repofs.Credential) (repofs.FileSystem, error) {
		var opts []option.ClientOption
		switch {
		case cred != nil && cred.KeyFile != "":
			opts = append(opts, option.WithCredentialsFile(cred.KeyFile))
		case os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "":
			// Application Default Credentials, the client's default.
		default:
			// Public buckets remain readable without any credentials.
			opts = append(opts, option.WithoutAuthentication())
		}
		client, err := storage.NewClient(ctx, opts...)
		if err != nil {
			return nil, repofs.NewPathError("new-client", path, err)
		}
		return New(client), nil
	})
}
