package cliclient

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "orca-cli"
	// currentServerKey remembers which server the last login went to.
	currentServerKey = "current-server"
)

// ErrNotLoggedIn means no token is stored for the server.
var ErrNotLoggedIn = errors.New("not logged in, run `orca login`")

// Credentials keeps CLI tokens in the OS keychain, one per server URL.
type Credentials struct {
	service string
}

func NewCredentials() *Credentials {
	return &Credentials{service: keyringService}
}

func serverKey(server string) string {
	return "token:" + strings.TrimRight(strings.TrimSpace(server), "/")
}

// Save stores token for server and makes server the current one.
func (c *Credentials) Save(server, token string) error {
	if err := keyring.Set(c.service, serverKey(server), token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	if err := keyring.Set(c.service, currentServerKey, strings.TrimRight(server, "/")); err != nil {
		return fmt.Errorf("failed to store current server: %w", err)
	}
	return nil
}

// Load returns the token stored for server.
func (c *Credentials) Load(server string) (string, error) {
	token, err := keyring.Get(c.service, serverKey(server))
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotLoggedIn
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return token, nil
}

// Delete forgets the token for server. Missing entries are not an error.
func (c *Credentials) Delete(server string) error {
	err := keyring.Delete(c.service, serverKey(server))
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	current, err := keyring.Get(c.service, currentServerKey)
	if err == nil && current == strings.TrimRight(server, "/") {
		_ = keyring.Delete(c.service, currentServerKey)
	}
	return nil
}

// CurrentServer returns the server of the last login, or "" when none.
func (c *Credentials) CurrentServer() string {
	server, err := keyring.Get(c.service, currentServerKey)
	if err != nil {
		return ""
	}
	return server
}
