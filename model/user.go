package model

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User roles
const (
	RoleUser      = "user"
	RolePublisher = "publisher"
	RoleAdmin     = "admin"
)

// How long a password reset token stays redeemable
const resetTokenTTL = 10 * time.Minute

// User represents an account in the system. The password is stored only as a
// bcrypt hash and the reset token only as a sha256 hash.
type User struct {
	Key                 string     `json:"_key,omitempty"`
	Name                string     `json:"name" validate:"required,max=50"`
	Email               string     `json:"email" validate:"required,email"`
	PasswordHash        string     `json:"password_hash,omitempty"`
	Role                string     `json:"role" validate:"required,oneof=user publisher admin"`
	ResetPasswordToken  string     `json:"reset_password_token,omitempty"`
	ResetPasswordExpire *time.Time `json:"reset_password_expire,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// NewUser creates a new user with default values
func NewUser(name, email, role string) *User {
	if role == "" {
		role = RoleUser
	}
	now := time.Now()
	return &User{
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetPassword hashes the plaintext password with bcrypt and stores the hash.
// Called only when the password is set or explicitly changed, never on
// unrelated updates.
func (u *User) SetPassword(password string) error {
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters long")
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(bytes)
	return nil
}

// MatchPassword compares a candidate plaintext against the stored hash.
// Returns false on any failure, never an error.
func (u *User) MatchPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// NewResetToken generates a random reset token, stores its sha256 hash plus a
// 10 minute expiry on the user, and returns the plaintext value for
// out-of-band delivery. The plaintext is never persisted.
func (u *User) NewResetToken() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	token := hex.EncodeToString(buf)
	// UTC, whole seconds: the expiry is compared as an RFC3339 string inside
	// AQL, and fractional digits would make that comparison inexact
	expire := time.Now().UTC().Truncate(time.Second).Add(resetTokenTTL)

	u.ResetPasswordToken = HashResetToken(token)
	u.ResetPasswordExpire = &expire

	return token, nil
}

// ClearResetToken removes the stored reset token hash and expiry, making any
// outstanding token unredeemable.
func (u *User) ClearResetToken() {
	u.ResetPasswordToken = ""
	u.ResetPasswordExpire = nil
}

// HashResetToken hashes a plaintext reset token the way it is stored, so a
// presented value can be matched against the persisted hash.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// IsAdmin returns true if user is admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Sanitized returns a copy safe to serialize in API responses, with the
// credential and reset fields stripped.
func (u *User) Sanitized() User {
	out := *u
	out.PasswordHash = ""
	out.ResetPasswordToken = ""
	out.ResetPasswordExpire = nil
	return out
}
