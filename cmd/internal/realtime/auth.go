package realtime

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// Feed tokens are HMAC-SHA256 tags over the account id, issued by the
// account-facing edge that already authenticated the user. Verifying the
// tag here only scopes a connection to its account; it is not a user
// authentication mechanism.

var (
	// ErrTokenKeyMissing is returned when no feed key is configured and the
	// dev-insecure escape hatch is off.
	ErrTokenKeyMissing = errors.New("realtime: feed token key not configured")

	// ErrTokenInvalid is returned when a presented token does not match.
	ErrTokenInvalid = errors.New("realtime: invalid feed token")
)

// FeedAuthenticator verifies account-scoped feed tokens.
type FeedAuthenticator struct {
	key         []byte
	devInsecure bool
}

// NewFeedAuthenticator builds an authenticator from a shared key.
// devInsecure skips verification entirely and must stay a dev-only knob.
func NewFeedAuthenticator(key string, devInsecure bool) *FeedAuthenticator {
	return &FeedAuthenticator{key: []byte(key), devInsecure: devInsecure}
}

// FeedToken computes the hex token for accountID. Exposed for tooling and tests.
func (a *FeedAuthenticator) FeedToken(accountID string) string {
	mac := hmac.New(sha256.New, a.key)
	mac.Write([]byte(accountID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks token against accountID.
func (a *FeedAuthenticator) Verify(accountID, token string) error {
	if a.devInsecure {
		return nil
	}
	if len(a.key) == 0 {
		return ErrTokenKeyMissing
	}

	accountID = strings.TrimSpace(accountID)
	token = strings.TrimSpace(token)
	if accountID == "" || token == "" {
		return ErrTokenInvalid
	}

	want := a.FeedToken(accountID)
	if !hmac.Equal([]byte(want), []byte(strings.ToLower(token))) {
		return ErrTokenInvalid
	}
	return nil
}
