package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/traincamp/traincamp-backend/database"
	"github.com/traincamp/traincamp-backend/model"
	"github.com/traincamp/traincamp-backend/restapi/apperr"
)

const userLocalsKey = "user"

// TokenCookie is the cookie name carrying the session token
const TokenCookie = "token"

// BearerToken extracts the credential from an Authorization header value,
// falling back to the supplied cookie value. Empty result means no usable
// credential was presented.
func BearerToken(header, cookie string) string {
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return cookie
}

// RequireAuth validates the bearer credential, resolves the acting user and
// attaches it to the request. Absent, malformed or expired credentials and
// unresolvable user ids all terminate the request with 401.
func RequireAuth(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := BearerToken(c.Get(fiber.HeaderAuthorization), c.Cookies(TokenCookie))
		if token == "" {
			return apperr.Unauthorized("Not authorized to access this route")
		}

		claims, err := ValidateJWT(token)
		if err != nil {
			return apperr.Unauthorized("Not authorized to access this route")
		}

		user, err := GetUserByKey(c.Context(), db, claims.Subject)
		if err != nil {
			return apperr.Unauthorized("Not authorized to access this route")
		}

		c.Locals(userLocalsKey, user)
		return c.Next()
	}
}

// RequireRole checks the already-authenticated user against the allowed
// roles; anyone outside the set gets 403.
func RequireRole(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return apperr.Unauthorized("Not authorized to access this route")
		}

		for _, role := range allowedRoles {
			if user.Role == role {
				return c.Next()
			}
		}

		return apperr.Forbidden("User role %s is not authorized to access this route", user.Role)
	}
}

// CurrentUser returns the authenticated user attached by RequireAuth
func CurrentUser(c *fiber.Ctx) *model.User {
	user, _ := c.Locals(userLocalsKey).(*model.User)
	return user
}
