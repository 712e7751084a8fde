package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/gobeaver/beaver-kit/config"
	"github.com/gobeaver/repofs"
)

// envCredential is the legacy credential source used when no credential
// file is configured.
type envCredential struct {
	Account string `env:"AZURE_STORAGE_ACCOUNT"`
	Key     string `env:"AZURE_STORAGE_KEY"`
}

func init() {
	repofs.RegisterDriver(repofs.KindAzure, func(ctx context.Context, path string, cred *repofs.Credential) (repofs.FileSystem, error) {
		account, accountKey := "", ""
		if cred != nil {
			account, accountKey = cred.AccountName, cred.AccountKey
		} else {
			env := &envCredential{}
			if err := config.Load(env); err != nil {
				return nil, repofs.NewPathError("new-client", path, err)
			}
			account, accountKey = env.Account, env.Key
		}
		if account == "" {
			// The URI host names the account when credentials do not.
			parsed, _, _, err := parsePath(path)
			if err != nil {
				return nil, err
			}
			account = parsed
		}
		if account == "" {
			return nil, repofs.NewPathError("new-client", path,
				fmt.Errorf("%w: no storage account name", repofs.ErrInvalidArgument))
		}

		serviceURL := fmt.Sprintf("https://%s%s/", account, blobHostSuffix)

		var client *azblob.Client
		var err error
		if accountKey != "" {
			var sharedKey *azblob.SharedKeyCredential
			sharedKey, err = azblob.NewSharedKeyCredential(account, accountKey)
			if err != nil {
				return nil, repofs.NewPathError("new-client", path, err)
			}
			client, err = azblob.NewClientWithSharedKeyCredential(serviceURL, sharedKey, nil)
		} else {
			// Anonymous access for public containers.
			client, err = azblob.NewClientWithNoCredential(serviceURL, nil)
		}
		if err != nil {
			return nil, repofs.NewPathError("new-client", path, err)
		}
		return New(client, account), nil
	})
}
