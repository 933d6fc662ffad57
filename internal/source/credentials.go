package source

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	credentialService = "rnstd"
	githubTokenKey    = "github_pat"
)

// ErrNoToken is returned when no token is stored.
var ErrNoToken = errors.New("no GitHub token stored - run `rnstd auth set`")

// TokenProvider supplies the personal access token used when public access is refused.
type TokenProvider interface {
	HasToken() bool
	Token() (string, error)
}

// CredentialManager stores a GitHub personal access token in the OS credential store.
type CredentialManager struct {
	service string
}

func NewCredentialManager() *CredentialManager {
	return &CredentialManager{service: credentialService}
}

// NewCredentialManagerForService uses a custom keyring service name, so tests never touch
// the real rnstd entry.
func NewCredentialManagerForService(service string) *CredentialManager {
	return &CredentialManager{service: service}
}

// StoreToken validates and stores token, replacing any previous one.
func (cm *CredentialManager) StoreToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}
	if err := ValidateTokenFormat(token); err != nil {
		return fmt.Errorf("invalid token format: %w", err)
	}
	if err := keyring.Set(cm.service, githubTokenKey, token); err != nil {
		return fmt.Errorf("failed to store token in credential store: %w", err)
	}
	return nil
}

// Token returns the stored token.
func (cm *CredentialManager) Token() (string, error) {
	token, err := keyring.Get(cm.service, githubTokenKey)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("failed to retrieve token from credential store: %w", err)
	}
	if strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("stored token is empty - run `rnstd auth set` again")
	}
	return token, nil
}

// DeleteToken removes the stored token. Deleting a missing token is not an error.
func (cm *CredentialManager) DeleteToken() error {
	err := keyring.Delete(cm.service, githubTokenKey)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete token from credential store: %w", err)
	}
	return nil
}

func (cm *CredentialManager) HasToken() bool {
	_, err := keyring.Get(cm.service, githubTokenKey)
	return err == nil
}

// ValidateTokenFormat checks that token looks like a GitHub token:
//   - Classic PATs: ghp_*
//   - Fine-grained PATs: github_pat_*
//   - OAuth and app tokens: gho_*, ghu_*, ghs_*
func ValidateTokenFormat(token string) error {
	token = strings.TrimSpace(token)
	if len(token) < 20 {
		return fmt.Errorf("token too short (minimum 20 characters)")
	}

	for _, prefix := range []string{"ghp_", "github_pat_", "gho_", "ghu_", "ghs_"} {
		if strings.HasPrefix(token, prefix) {
			return nil
		}
	}
	return fmt.Errorf("token does not match expected GitHub PAT format (should start with ghp_ or github_pat_)")
}

// MaskToken keeps the token prefix and last four characters for display.
func MaskToken(token string) string {
	token = strings.TrimSpace(token)
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	prefix := token[:4]
	if strings.HasPrefix(token, "github_pat_") {
		prefix = "github_pat_"
	}
	if len(prefix)+4 >= len(token) {
		return prefix + strings.Repeat("*", len(token)-len(prefix))
	}
	return prefix + strings.Repeat("*", len(token)-len(prefix)-4) + token[len(token)-4:]
}
