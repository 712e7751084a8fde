package s3

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gobeaver/repofs"
)

func init() {
	repofs.RegisterDriver(repofs.KindS3, func(ctx context.Context, path string, cred *repofs.Credential) (repofs.FileSystem, error) {
		_, endpoint := cleanPath(path)

		var loadOpts []func(*awsconfig.LoadOptions) error
		if cred != nil {
			if cred.Region != "" {
				loadOpts = append(loadOpts, awsconfig.WithRegion(cred.Region))
			}
			if cred.KeyID != "" || cred.SecretKey != "" {
				loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
					credentials.NewStaticCredentialsProvider(cred.KeyID, cred.SecretKey, cred.SessionToken)))
			}
		}
		cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, repofs.NewPathError("new-client", path, err)
		}

		client := s3.NewFromConfig(cfg, func(o *s3.Options) {
			if endpoint != "" {
				// S3-compatible stores rarely speak virtual-hosted
				// addressing.
				o.BaseEndpoint = aws.String(endpoint)
				o.UsePathStyle = true
			}
		})
		return New(client), nil
	})
}
