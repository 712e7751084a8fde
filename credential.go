package repofs

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Credential is one secret bundle from the credential file, matched to a
// path by prefix. Which fields are populated depends on the backend kind
// the bundle was filed under.
type Credential struct {
	// GCS: path to a service-account key file.
	KeyFile string

	// S3
	KeyID        string
	SecretKey    string
	Region       string
	SessionToken string

	// Azure
	AccountName string
	AccountKey  string
}

// loadResult distinguishes the three outcomes of a credential-file load.
// credentialCached and credentialNotConfigured drive the resolver's
// retry-once branch and never escape it.
type loadResult int

const (
	credentialLoaded loadResult = iota
	credentialCached
	credentialNotConfigured
)

type credentialEntry struct {
	name string
	cred Credential
}

// credentialStore caches the parsed credential file, one table per backend
// kind. One mutex serializes loads and matches across all kinds; refreshes
// are rare and the whole cache is replaced atomically under the lock.
type credentialStore struct {
	mu     sync.Mutex
	cached bool
	tables map[Kind][]credentialEntry
}

// credentials is the process-wide store consulted by the resolver.
var credentials = &credentialStore{}

// Credential file schema. GCS values are bare key-file path strings; S3 and
// Azure values are objects.
type s3CredentialJSON struct {
	SecretKey    string `json:"secret_key"`
	KeyID        string `json:"key_id"`
	Region       string `json:"region"`
	SessionToken string `json:"session_token"`
}

type asCredentialJSON struct {
	AccountStr string `json:"account_str"`
	AccountKey string `json:"account_key"`
}

type credentialFileJSON struct {
	GS map[string]string           `json:"gs"`
	S3 map[string]s3CredentialJSON `json:"s3"`
	AS map[string]asCredentialJSON `json:"as"`
}

// load populates the store from the file named by
// REPOFS_CLOUD_CREDENTIAL_PATH. With flush set the file is re-read even if
// a parse is already cached.
func (s *credentialStore) load(flush bool) (loadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached && !flush {
		return credentialCached, nil
	}

	cfg, err := GetConfig()
	if err != nil {
		return 0, fmt.Errorf("loading credential configuration: %w", err)
	}
	if cfg.CloudCredentialPath == "" {
		log().Debug("REPOFS_CLOUD_CREDENTIAL_PATH is not set, using provider environment credentials")
		return credentialNotConfigured, nil
	}

	log().Debug("reading cloud credential file", zap.String("path", cfg.CloudCredentialPath))

	raw, err := os.ReadFile(cfg.CloudCredentialPath)
	if err != nil {
		return 0, NewPathError("load-credential", cfg.CloudCredentialPath, err)
	}
	var doc credentialFileJSON
	if err := json.Unmarshal(raw, &doc); err != nil {
		return 0, NewPathError("load-credential", cfg.CloudCredentialPath, err)
	}

	tables := make(map[Kind][]credentialEntry)
	for name, keyFile := range doc.GS {
		tables[KindGCS] = append(tables[KindGCS], credentialEntry{
			name: name,
			cred: Credential{KeyFile: keyFile},
		})
	}
	for name, c := range doc.S3 {
		tables[KindS3] = append(tables[KindS3], credentialEntry{
			name: name,
			cred: Credential{
				KeyID:        c.KeyID,
				SecretKey:    c.SecretKey,
				Region:       c.Region,
				SessionToken: c.SessionToken,
			},
		})
	}
	for name, c := range doc.AS {
		tables[KindAzure] = append(tables[KindAzure], credentialEntry{
			name: name,
			cred: Credential{AccountName: c.AccountStr, AccountKey: c.AccountKey},
		})
	}
	for kind := range tables {
		sortEntries(tables[kind])
	}

	s.tables = tables
	s.cached = true
	return credentialLoaded, nil
}

// sortEntries orders a table by descending name length so the first prefix
// match found during a scan is the longest.
func sortEntries(entries []credentialEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return len(entries[i].name) > len(entries[j].name)
	})
}

// match returns the credential whose name is the longest prefix of the
// scheme-stripped path, or ErrCredentialNotFound.
func (s *credentialStore) match(kind Kind, strippedPath string) (Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.tables[kind] {
		if strings.HasPrefix(strippedPath, e.name) {
			log().Debug("matched credential",
				zap.String("credential", e.name),
				zap.String("path", kind.scheme()+strippedPath))
			return e.cred, nil
		}
	}
	return Credential{}, fmt.Errorf("%w: %s%s", ErrCredentialNotFound, kind.scheme(), strippedPath)
}

// reset clears the store. Test hook.
func (s *credentialStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = false
	s.tables = nil
}
