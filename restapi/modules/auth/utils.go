// Package auth provides authentication and authorization for the REST API:
// session token issuance and verification, the request guards, and the
// password reset flow.
package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/traincamp/traincamp-backend/database"
)

var jwtSecret = []byte(database.GetEnvDefault("JWT_SECRET", "change-this-secret-in-production"))

// Claims represents JWT claims. Subject carries the user key.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// SetJWTSecret overrides the signing secret (call on startup with env var)
func SetJWTSecret(secret string) {
	if secret == "" {
		panic("JWT secret cannot be empty")
	}
	jwtSecret = []byte(secret)
}

// LoadJWTSecret picks up JWT_SECRET from the environment. Must run after the
// configuration file is loaded; the package-level default exists only so tests
// and tooling work without any environment. An unset or empty variable keeps
// the current secret.
func LoadJWTSecret() {
	if secret := database.GetEnvDefault("JWT_SECRET", ""); secret != "" {
		jwtSecret = []byte(secret)
	}
}

// JWTExpiration returns the configured session token lifetime
func JWTExpiration() time.Duration {
	if d, err := time.ParseDuration(database.GetEnvDefault("JWT_EXPIRE", "720h")); err == nil && d > 0 {
		return d
	}
	return 720 * time.Hour
}

// CookieExpireDays returns the session cookie lifetime in days
func CookieExpireDays() int {
	if n, err := strconv.Atoi(database.GetEnvDefault("JWT_COOKIE_EXPIRE", "30")); err == nil && n > 0 {
		return n
	}
	return 30
}

// GenerateJWT produces a signed, time-limited token asserting a user id.
// There is no server-side revocation list; a token stays valid until its
// natural expiry.
func GenerateJWT(userKey, role string) (string, error) {
	now := time.Now()

	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(JWTExpiration())),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "traincamp-backend",
			Subject:   userKey,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ValidateJWT validates a JWT token and returns the claims
func ValidateJWT(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
