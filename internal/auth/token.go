// Package auth stores and validates Proxmox VE API tokens.
//
// A token has the form user@realm!tokenid=secret where secret is the UUID
// printed by the server when the token was created. pve-cli never sees a
// password: `pve-cli login` only validates a token and keeps it in the data
// directory for later sessions.
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/quocvuong92/pve-cli/internal/constants"
)

// Errors
var (
	ErrInvalidToken = errors.New("invalid API token, expected user@realm!tokenid=secret")
	ErrNotLoggedIn  = errors.New("no API token stored, run 'pve-cli login' or set PVE_API_TOKEN")
)

// APIToken is a parsed Proxmox VE API token
type APIToken struct {
	User    string // root
	Realm   string // pam
	TokenID string // cli
	Secret  uuid.UUID
}

// ParseToken parses user@realm!tokenid=secret
func ParseToken(s string) (*APIToken, error) {
	s = strings.TrimSpace(s)

	id, secret, ok := strings.Cut(s, "=")
	if !ok {
		return nil, fmt.Errorf("%w: missing '=secret'", ErrInvalidToken)
	}
	userRealm, tokenID, ok := strings.Cut(id, "!")
	if !ok || tokenID == "" {
		return nil, fmt.Errorf("%w: missing '!tokenid'", ErrInvalidToken)
	}
	user, realm, ok := strings.Cut(userRealm, "@")
	if !ok || user == "" || realm == "" {
		return nil, fmt.Errorf("%w: missing 'user@realm'", ErrInvalidToken)
	}

	sec, err := uuid.Parse(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: secret is not a UUID", ErrInvalidToken)
	}

	return &APIToken{User: user, Realm: realm, TokenID: tokenID, Secret: sec}, nil
}

// ID returns user@realm!tokenid
func (t *APIToken) ID() string {
	return t.User + "@" + t.Realm + "!" + t.TokenID
}

// String returns the token in the form accepted by ParseToken
func (t *APIToken) String() string {
	return t.ID() + "=" + t.Secret.String()
}

// Header returns the Authorization header value
func (t *APIToken) Header() string {
	return "PVEAPIToken=" + t.String()
}

// TokenPath returns where the token is stored inside dataDir
func TokenPath(dataDir string) string {
	return filepath.Join(dataDir, constants.TokenFileName)
}

// SaveToken writes the token to the data directory with owner-only permissions
func SaveToken(dataDir string, token *APIToken) error {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(TokenPath(dataDir), []byte(token.String()+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}

	return nil
}

// LoadToken reads and parses the stored token
func LoadToken(dataDir string) (*APIToken, error) {
	data, err := os.ReadFile(TokenPath(dataDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotLoggedIn
		}
		return nil, fmt.Errorf("failed to read token: %w", err)
	}

	if strings.TrimSpace(string(data)) == "" {
		return nil, ErrNotLoggedIn
	}

	return ParseToken(string(data))
}

// DeleteToken removes the stored token
func DeleteToken(dataDir string) error {
	if err := os.Remove(TokenPath(dataDir)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// IsLoggedIn checks if a valid token is stored
func IsLoggedIn(dataDir string) bool {
	_, err := LoadToken(dataDir)
	return err == nil
}

// Resolve returns the token from configuration when set, otherwise the stored one
func Resolve(configured, dataDir string) (*APIToken, error) {
	if configured != "" {
		return ParseToken(configured)
	}
	return LoadToken(dataDir)
}
