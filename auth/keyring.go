// Package auth persists the media server access token in the system keyring.
package auth

import (
	"errors"

	"github.com/marquee-cli/marquee/constant"
	"github.com/zalando/go-keyring"
)

const user = "server-token"

// ErrNoToken is returned when no token has been stored yet.
var ErrNoToken = errors.New("no server token stored, run `marquee login`")

// SetToken persists the server access token.
func SetToken(token string) error {
	return keyring.Set(constant.Marquee, user, token)
}

// GetToken retrieves the server access token.
func GetToken() (string, error) {
	token, err := keyring.Get(constant.Marquee, user)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNoToken
	}
	return token, err
}

// DeleteToken removes the stored token. Deleting a missing token is not an error.
func DeleteToken() error {
	err := keyring.Delete(constant.Marquee, user)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
