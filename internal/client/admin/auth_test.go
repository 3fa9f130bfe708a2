package admin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticator_Check(t *testing.T) {
	a, err := NewAuthenticator(DefaultUsername, DefaultPassword)
	require.NoError(t, err)

	assert.True(t, a.Check("admin", "admin123"))
	assert.True(t, a.Check("ADMIN", "admin123"), "username is case-insensitive")
	assert.False(t, a.Check("admin", "ADMIN123"), "password is case-sensitive")
	assert.False(t, a.Check("root", "admin123"))
	assert.False(t, a.Check("admin", ""))
	assert.Equal(t, "admin", a.Username())
}

func TestNewAuthenticator_EmptyUsername(t *testing.T) {
	_, err := NewAuthenticator("  ", "x")
	require.Error(t, err)
}

func TestNewAuthenticator_KeepsNoPlaintext(t *testing.T) {
	a, err := NewAuthenticator("Boss", "s3cret")
	require.NoError(t, err)
	assert.NotContains(t, string(a.verifier), "s3cret")
	assert.Len(t, a.verifier, 32)
	assert.Equal(t, "boss", a.Username())
}
