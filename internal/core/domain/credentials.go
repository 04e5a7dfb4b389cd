package domain

import (
	"encoding/json"
	"fmt"
)

// Persisted storage keys. Clearing all three is what "signed out" means.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
)

// StorageKeys lists every key a credential store owns.
var StorageKeys = []string{KeyAccessToken, KeyRefreshToken, KeyUser}

// CredentialPair is the opaque bearer token pair issued at login.
type CredentialPair struct {
	AccessToken  string
	RefreshToken string
}

// Valid reports whether both halves are present.
func (p CredentialPair) Valid() bool {
	return p.AccessToken != "" && p.RefreshToken != ""
}

// StoredSession is what a credential store hands back on load.
type StoredSession struct {
	Credentials CredentialPair
	Identity    Identity
}

// EncodeStoredSession flattens a session into the three storage keys.
func EncodeStoredSession(pair CredentialPair, id Identity) (map[string]string, error) {
	if !pair.Valid() {
		return nil, fmt.Errorf("%w: both tokens are required", ErrInvalidIdentity)
	}
	blob, err := json.Marshal(id)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		KeyAccessToken:  pair.AccessToken,
		KeyRefreshToken: pair.RefreshToken,
		KeyUser:         string(blob),
	}, nil
}

// DecodeStoredSession rebuilds a session from the three storage keys.
// Missing tokens or an unparseable user blob yield ok == false; callers treat
// that exactly like an empty store.
func DecodeStoredSession(values map[string]string) (StoredSession, bool) {
	pair := CredentialPair{
		AccessToken:  values[KeyAccessToken],
		RefreshToken: values[KeyRefreshToken],
	}
	if !pair.Valid() {
		return StoredSession{}, false
	}
	blob := values[KeyUser]
	if blob == "" {
		return StoredSession{}, false
	}
	var id Identity
	if err := json.Unmarshal([]byte(blob), &id); err != nil {
		return StoredSession{}, false
	}
	return StoredSession{Credentials: pair, Identity: id}, true
}
