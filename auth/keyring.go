// Package auth stores YouTube Data API keys in the system keyring.
package auth

import (
	"errors"

	"github.com/vidlink-cli/vidlink/constant"
	"github.com/zalando/go-keyring"
)

// Account names under which keys are stored.
const (
	Primary  = "youtube-api-key"
	Fallback = "youtube-api-key-fallback"
)

// ErrNotFound is returned when no key is stored for an account.
var ErrNotFound = keyring.ErrNotFound

// Accounts lists the valid account names.
func Accounts() []string {
	return []string{Primary, Fallback}
}

// SetKey persists a key for account.
func SetKey(account, value string) error {
	if value == "" {
		return errors.New("empty key")
	}
	return keyring.Set(constant.App, account, value)
}

// GetKey retrieves the key stored for account.
func GetKey(account string) (string, error) {
	return keyring.Get(constant.App, account)
}

// DeleteKey removes the key stored for account.
func DeleteKey(account string) error {
	return keyring.Delete(constant.App, account)
}

// Lookup returns the configured value when set, otherwise the keyring entry for account.
// A missing keyring entry yields an empty string and no error.
func Lookup(configured, account string) (string, error) {
	if configured != "" {
		return configured, nil
	}

	value, err := GetKey(account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return value, err
}
