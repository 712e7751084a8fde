package repofs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeCredentialFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

const testCredentialJSON = `{
	"gs": {
		"": "/secrets/default.json",
		"bucket-a": "/secrets/bucket-a.json",
		"bucket-a/models": "/secrets/models.json"
	},
	"s3": {
		"my-bucket": {
			"secret_key": "sk", "key_id": "ak",
			"region": "us-west-2", "session_token": "st"
		}
	},
	"as": {
		"": {"account_str": "acct", "account_key": "key"}
	}
}`

func TestCredentialLoad(t *testing.T) {
	path := writeCredentialFile(t, testCredentialJSON)
	t.Setenv("REPOFS_CLOUD_CREDENTIAL_PATH", path)

	store := &credentialStore{}

	t.Run("first load parses", func(t *testing.T) {
		res, err := store.load(false)
		if err != nil {
			t.Fatal(err)
		}
		if res != credentialLoaded {
			t.Fatalf("load(false) = %v, want credentialLoaded", res)
		}
	})

	t.Run("second load reports cached", func(t *testing.T) {
		res, err := store.load(false)
		if err != nil {
			t.Fatal(err)
		}
		if res != credentialCached {
			t.Fatalf("load(false) = %v, want credentialCached", res)
		}
	})

	t.Run("flush reparses", func(t *testing.T) {
		if err := os.WriteFile(path, []byte(`{"gs": {"fresh": "/secrets/fresh.json"}}`), 0o600); err != nil {
			t.Fatal(err)
		}
		res, err := store.load(true)
		if err != nil {
			t.Fatal(err)
		}
		if res != credentialLoaded {
			t.Fatalf("load(true) = %v, want credentialLoaded", res)
		}
		cred, err := store.match(KindGCS, "fresh/obj")
		if err != nil {
			t.Fatal(err)
		}
		if cred.KeyFile != "/secrets/fresh.json" {
			t.Errorf("KeyFile = %q", cred.KeyFile)
		}
	})
}

func TestCredentialLoadNotConfigured(t *testing.T) {
	t.Setenv("REPOFS_CLOUD_CREDENTIAL_PATH", "")

	store := &credentialStore{}
	res, err := store.load(false)
	if err != nil {
		t.Fatal(err)
	}
	if res != credentialNotConfigured {
		t.Fatalf("load(false) = %v, want credentialNotConfigured", res)
	}
}

func TestCredentialLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		t.Setenv("REPOFS_CLOUD_CREDENTIAL_PATH", filepath.Join(t.TempDir(), "absent.json"))
		store := &credentialStore{}
		if _, err := store.load(false); err == nil {
			t.Fatal("expected error for missing file")
		}
	})
	t.Run("malformed json", func(t *testing.T) {
		t.Setenv("REPOFS_CLOUD_CREDENTIAL_PATH", writeCredentialFile(t, "{not json"))
		store := &credentialStore{}
		if _, err := store.load(false); err == nil {
			t.Fatal("expected error for malformed file")
		}
	})
}

func TestCredentialMatch(t *testing.T) {
	path := writeCredentialFile(t, testCredentialJSON)
	t.Setenv("REPOFS_CLOUD_CREDENTIAL_PATH", path)

	store := &credentialStore{}
	if _, err := store.load(false); err != nil {
		t.Fatal(err)
	}

	t.Run("longest prefix wins", func(t *testing.T) {
		cred, err := store.match(KindGCS, "bucket-a/models/resnet/1")
		if err != nil {
			t.Fatal(err)
		}
		if cred.KeyFile != "/secrets/models.json" {
			t.Errorf("KeyFile = %q, want the longest-prefix entry", cred.KeyFile)
		}
	})

	t.Run("shorter prefix when longest misses", func(t *testing.T) {
		cred, err := store.match(KindGCS, "bucket-a/configs")
		if err != nil {
			t.Fatal(err)
		}
		if cred.KeyFile != "/secrets/bucket-a.json" {
			t.Errorf("KeyFile = %q", cred.KeyFile)
		}
	})

	t.Run("empty name matches everything", func(t *testing.T) {
		cred, err := store.match(KindGCS, "unrelated-bucket/obj")
		if err != nil {
			t.Fatal(err)
		}
		if cred.KeyFile != "/secrets/default.json" {
			t.Errorf("KeyFile = %q", cred.KeyFile)
		}
	})

	t.Run("no match without default entry", func(t *testing.T) {
		_, err := store.match(KindS3, "other-bucket/obj")
		if !errors.Is(err, ErrCredentialNotFound) {
			t.Fatalf("err = %v, want ErrCredentialNotFound", err)
		}
	})

	t.Run("s3 fields populated", func(t *testing.T) {
		cred, err := store.match(KindS3, "my-bucket/obj")
		if err != nil {
			t.Fatal(err)
		}
		if cred.KeyID != "ak" || cred.SecretKey != "sk" || cred.Region != "us-west-2" || cred.SessionToken != "st" {
			t.Errorf("unexpected credential %+v", cred)
		}
	})

	t.Run("azure fields populated", func(t *testing.T) {
		cred, err := store.match(KindAzure, "acct/container/blob")
		if err != nil {
			t.Fatal(err)
		}
		if cred.AccountName != "acct" || cred.AccountKey != "key" {
			t.Errorf("unexpected credential %+v", cred)
		}
	})
}

func TestSortEntries(t *testing.T) {
	entries := []credentialEntry{
		{name: "a"},
		{name: "aaa"},
		{name: ""},
		{name: "aa"},
	}
	sortEntries(entries)
	want := []string{"aaa", "aa", "a", ""}
	for i, w := range want {
		if entries[i].name != w {
			t.Fatalf("entries[%d] = %q, want %q", i, entries[i].name, w)
		}
	}
}
