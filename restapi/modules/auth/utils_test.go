package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	token, err := GenerateJWT("12345", "publisher")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "12345", claims.Subject)
	assert.Equal(t, "publisher", claims.Role)
	assert.Equal(t, "traincamp-backend", claims.Issuer)
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	_, err := ValidateJWT("not-a-token")
	assert.Error(t, err)
}

func TestValidateJWTRejectsTampering(t *testing.T) {
	token, err := GenerateJWT("12345", "user")
	require.NoError(t, err)

	_, err = ValidateJWT(token + "x")
	assert.Error(t, err)
}

func TestValidateJWTRejectsExpired(t *testing.T) {
	claims := &Claims{
		Role: "user",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			Subject:   "12345",
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
	require.NoError(t, err)

	_, err = ValidateJWT(expired)
	assert.Error(t, err)
}

func TestValidateJWTRejectsWrongSecret(t *testing.T) {
	claims := &Claims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Subject:   "12345",
		},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	_, err = ValidateJWT(forged)
	assert.Error(t, err)
}

func TestValidateJWTRejectsUnsignedAlg(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "12345"},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ValidateJWT(unsigned)
	assert.Error(t, err)
}

func TestJWTExpirationDefault(t *testing.T) {
	assert.Equal(t, 720*time.Hour, JWTExpiration())
}

func TestJWTExpirationFromEnv(t *testing.T) {
	t.Setenv("JWT_EXPIRE", "2h")
	assert.Equal(t, 2*time.Hour, JWTExpiration())
}

func TestJWTExpirationIgnoresBadValue(t *testing.T) {
	t.Setenv("JWT_EXPIRE", "-5h")
	assert.Equal(t, 720*time.Hour, JWTExpiration())
}

func TestCookieExpireDays(t *testing.T) {
	assert.Equal(t, 30, CookieExpireDays())

	t.Setenv("JWT_COOKIE_EXPIRE", "7")
	assert.Equal(t, 7, CookieExpireDays())
}

func TestSetJWTSecretPanicsOnEmpty(t *testing.T) {
	assert.Panics(t, func() { SetJWTSecret("") })
}

func TestLoadJWTSecretHonorsEnvironment(t *testing.T) {
	defaultSecret := jwtSecret
	t.Cleanup(func() { jwtSecret = defaultSecret })

	t.Setenv("JWT_SECRET", "configured-secret")
	LoadJWTSecret()

	token, err := GenerateJWT("12345", "user")
	require.NoError(t, err)

	// Tokens issued after startup must not verify under the built-in default
	_, err = jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return defaultSecret, nil
	})
	assert.Error(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "12345", claims.Subject)
}

func TestLoadJWTSecretFallsBackToDefault(t *testing.T) {
	defaultSecret := jwtSecret
	t.Cleanup(func() { jwtSecret = defaultSecret })

	t.Setenv("JWT_SECRET", "")
	LoadJWTSecret()

	assert.Equal(t, defaultSecret, jwtSecret)
}
