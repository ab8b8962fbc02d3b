package store

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/nagelea/keysentry/pkg/catalog"
)

type (

	// Status is a credential's verification state
	Status string

	// CredentialRecord is the public, non-secret half of a stored credential
	CredentialRecord struct {
		ID           string
		KeyType      catalog.KeyType
		MaskedValue  string
		ContentHash  string
		Confidence   catalog.Confidence
		Severity     catalog.Severity
		Status       Status
		RepoName     string
		FilePath     string
		Language     string
		SourceType   string
		FirstSeen    time.Time
		LastVerified *time.Time
	}

	// SensitivePayload is the secret half, 1:1 with a CredentialRecord
	SensitivePayload struct {
		CredentialID string
		SecretValue  string
		RawContext   string
		SourceURL    string
	}

	// StoredCredential joins both halves for the verifier and reclassifier
	StoredCredential struct {
		Record  *CredentialRecord
		Payload *SensitivePayload
	}

	// Filter narrows reads over stored credentials
	Filter struct {
		KeyType catalog.KeyType
		Status  Status
		Limit   int
	}
)

const (
	StatusUnknown Status = "unknown"
	StatusValid   Status = "valid"
	StatusInvalid Status = "invalid"
	StatusRevoked Status = "revoked"
)

func Statuses() []Status {
	return []Status{StatusUnknown, StatusValid, StatusInvalid, StatusRevoked}
}

func ValidStatus(val string) bool {
	for _, s := range Statuses() {
		if string(s) == strings.ToLower(val) {
			return true
		}
	}
	return false
}

// HashValue is the dedup key: a deterministic one-way digest of the exact
// secret literal.
func HashValue(secretValue string) string {
	sum := sha256.Sum256([]byte(secretValue))
	return fmt.Sprintf("%x", sum)
}

// MaskedPreviewKeep is how many leading/trailing characters survive masking
const MaskedPreviewKeep = 6
