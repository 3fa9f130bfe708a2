// Package admin checks the configured admin credentials and yields the
// boolean the session manager consumes. It is a convenience gate, not a
// security boundary: no rate limiting, no tokens.
package admin

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/stampcard/internal/cryptox"
)

const (
	DefaultUsername = "admin"
	DefaultPassword = "admin123"
)

type Authenticator struct {
	username string
	salt     []byte
	verifier []byte
}

// NewAuthenticator keeps only an argon2 verifier of password.
func NewAuthenticator(username, password string) (*Authenticator, error) {
	if strings.TrimSpace(username) == "" {
		return nil, fmt.Errorf("admin username must not be empty")
	}

	salt, err := cryptox.NewSalt()
	if err != nil {
		return nil, fmt.Errorf("admin salt: %w", err)
	}

	return &Authenticator{
		username: strings.ToLower(strings.TrimSpace(username)),
		salt:     salt,
		verifier: cryptox.MakeVerifier(cryptox.DeriveKey([]byte(password), salt)),
	}, nil
}

// Username is the identity stored in an admin session.
func (a *Authenticator) Username() string {
	return a.username
}

// Check compares the username case-insensitively and the password in
// constant time.
func (a *Authenticator) Check(username, password string) bool {
	nameOK := strings.ToLower(strings.TrimSpace(username)) == a.username
	passOK := cryptox.Matches([]byte(password), a.salt, a.verifier)
	return nameOK && passOK
}
