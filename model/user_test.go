package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserDefaultsRole(t *testing.T) {
	user := NewUser("John Doe", "john@example.com", "")
	assert.Equal(t, RoleUser, user.Role)
	assert.False(t, user.CreatedAt.IsZero())

	publisher := NewUser("Jane Doe", "jane@example.com", RolePublisher)
	assert.Equal(t, RolePublisher, publisher.Role)
}

func TestSetPasswordRejectsShort(t *testing.T) {
	user := NewUser("John Doe", "john@example.com", "")
	err := user.SetPassword("12345")
	assert.Error(t, err)
	assert.Empty(t, user.PasswordHash)
}

func TestSetPasswordStoresHashOnly(t *testing.T) {
	user := NewUser("John Doe", "john@example.com", "")
	require.NoError(t, user.SetPassword("123456"))

	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "123456", user.PasswordHash)
}

func TestMatchPassword(t *testing.T) {
	user := NewUser("John Doe", "john@example.com", "")
	require.NoError(t, user.SetPassword("123456"))

	assert.True(t, user.MatchPassword("123456"))
	assert.False(t, user.MatchPassword("654321"))
	assert.False(t, user.MatchPassword(""))
}

func TestMatchPasswordWithoutHash(t *testing.T) {
	user := NewUser("John Doe", "john@example.com", "")
	assert.False(t, user.MatchPassword("anything"))
}

func TestNewResetTokenStoresHashAndExpiry(t *testing.T) {
	user := NewUser("John Doe", "john@example.com", "")

	token, err := user.NewResetToken()
	require.NoError(t, err)

	// 20 random bytes, hex encoded
	assert.Len(t, token, 40)

	// Only the hash is stored
	assert.NotEqual(t, token, user.ResetPasswordToken)
	assert.Equal(t, HashResetToken(token), user.ResetPasswordToken)

	require.NotNil(t, user.ResetPasswordExpire)
	remaining := time.Until(*user.ResetPasswordExpire)
	assert.Greater(t, remaining, 9*time.Minute)
	assert.LessOrEqual(t, remaining, 10*time.Minute)
}

func TestNewResetTokenExpiryIsWholeSeconds(t *testing.T) {
	user := NewUser("John Doe", "john@example.com", "")

	_, err := user.NewResetToken()
	require.NoError(t, err)
	require.NotNil(t, user.ResetPasswordExpire)

	// The expiry is compared as an RFC3339 string in the store; fractional
	// seconds would make that comparison inexact around the deadline.
	assert.Zero(t, user.ResetPasswordExpire.Nanosecond())
	assert.Equal(t, time.UTC, user.ResetPasswordExpire.Location())

	raw, err := json.Marshal(user.ResetPasswordExpire)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), ".")
}

func TestNewResetTokenIsUnique(t *testing.T) {
	user := NewUser("John Doe", "john@example.com", "")

	first, err := user.NewResetToken()
	require.NoError(t, err)
	second, err := user.NewResetToken()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestClearResetToken(t *testing.T) {
	user := NewUser("John Doe", "john@example.com", "")
	_, err := user.NewResetToken()
	require.NoError(t, err)

	user.ClearResetToken()
	assert.Empty(t, user.ResetPasswordToken)
	assert.Nil(t, user.ResetPasswordExpire)
}

func TestSanitizedStripsCredentials(t *testing.T) {
	user := NewUser("John Doe", "john@example.com", "")
	require.NoError(t, user.SetPassword("123456"))
	_, err := user.NewResetToken()
	require.NoError(t, err)

	out := user.Sanitized()
	assert.Empty(t, out.PasswordHash)
	assert.Empty(t, out.ResetPasswordToken)
	assert.Nil(t, out.ResetPasswordExpire)

	// Original untouched
	assert.NotEmpty(t, user.PasswordHash)
	assert.Equal(t, "John Doe", out.Name)
}

func TestIsAdmin(t *testing.T) {
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RolePublisher}).IsAdmin())
	assert.False(t, (&User{Role: RoleUser}).IsAdmin())
}
