package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/traincamp/traincamp-backend/database"
	"github.com/traincamp/traincamp-backend/model"
	"github.com/traincamp/traincamp-backend/restapi/apperr"
)

// Register handles POST /auth/register
func Register(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req RegisterRequest
		if err := c.BodyParser(&req); err != nil {
			return apperr.BadRequest("Invalid request body")
		}

		// Self-registration never grants admin
		if req.Role == model.RoleAdmin {
			return apperr.BadRequest("Cannot register with role admin")
		}

		user := model.NewUser(req.Name, req.Email, req.Role)
		if err := user.SetPassword(req.Password); err != nil {
			return apperr.BadRequest("%s", err.Error())
		}

		if err := model.Validate(user); err != nil {
			return apperr.BadRequest("%s", err.Error())
		}

		// Duplicate emails surface here as a unique-constraint violation
		if err := CreateUser(c.Context(), db, user); err != nil {
			return err
		}

		return sendTokenResponse(c, user, fiber.StatusOK)
	}
}

// Login handles POST /auth/login. Unknown email and wrong password are
// indistinguishable to the caller.
func Login(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return apperr.BadRequest("Invalid request body")
		}

		if req.Email == "" || req.Password == "" {
			return apperr.BadRequest("Please provide an email and password")
		}

		user, err := GetUserByEmail(c.Context(), db, req.Email)
		if err != nil {
			return apperr.Unauthorized("Invalid credentials")
		}

		if !user.MatchPassword(req.Password) {
			return apperr.Unauthorized("Invalid credentials")
		}

		return sendTokenResponse(c, user, fiber.StatusOK)
	}
}

// Logout handles GET /auth/logout. It only clears the cookie; already-issued
// tokens stay valid until their natural expiry.
func Logout() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Cookie(&fiber.Cookie{
			Name:     TokenCookie,
			Value:    "none",
			Expires:  time.Now().Add(10 * time.Second),
			HTTPOnly: true,
			SameSite: "Lax",
			Path:     "/",
		})
		return c.JSON(fiber.Map{"success": true, "data": fiber.Map{}})
	}
}

// Me handles GET /auth/me
func Me() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		return c.JSON(fiber.Map{"success": true, "data": user.Sanitized()})
	}
}

// UpdateDetails handles PUT /auth/updatedetails. Only name and email change
// here; the password hash is untouched.
func UpdateDetails(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		}
		if err := c.BodyParser(&req); err != nil {
			return apperr.BadRequest("Invalid request body")
		}

		user := CurrentUser(c)
		if req.Name != "" {
			user.Name = req.Name
		}
		if req.Email != "" {
			user.Email = req.Email
		}
		user.UpdatedAt = time.Now()

		if err := model.Validate(user); err != nil {
			return apperr.BadRequest("%s", err.Error())
		}

		if err := SaveUser(c.Context(), db, user); err != nil {
			return err
		}

		return c.JSON(fiber.Map{"success": true, "data": user.Sanitized()})
	}
}

// UpdatePassword handles PUT /auth/updatepassword
func UpdatePassword(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			CurrentPassword string `json:"current_password"`
			NewPassword     string `json:"new_password"`
		}
		if err := c.BodyParser(&req); err != nil {
			return apperr.BadRequest("Invalid request body")
		}

		user := CurrentUser(c)
		if !user.MatchPassword(req.CurrentPassword) {
			return apperr.Unauthorized("Password is incorrect")
		}

		if err := user.SetPassword(req.NewPassword); err != nil {
			return apperr.BadRequest("%s", err.Error())
		}
		user.UpdatedAt = time.Now()

		if err := SaveUser(c.Context(), db, user); err != nil {
			return err
		}

		return sendTokenResponse(c, user, fiber.StatusOK)
	}
}

// ForgotPassword handles POST /auth/forgotpassword. A mail transport failure
// rolls back the stored token fields before surfacing the error.
func ForgotPassword(db database.DBConnection, emailConfig *EmailConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req ForgotPasswordRequest
		if err := c.BodyParser(&req); err != nil {
			return apperr.BadRequest("Invalid request body")
		}

		ctx := c.Context()
		user, err := GetUserByEmail(ctx, db, req.Email)
		if err != nil {
			return apperr.NotFound("There is no user with that email")
		}

		token, err := user.NewResetToken()
		if err != nil {
			return apperr.Internal("Failed to generate reset token")
		}

		if err := SaveUser(ctx, db, user); err != nil {
			return err
		}

		if err := SendPasswordResetEmail(emailConfig, user.Name, user.Email, token); err != nil {
			user.ClearResetToken()
			if saveErr := SaveUser(ctx, db, user); saveErr != nil {
				return saveErr
			}
			return apperr.Internal("Email could not be sent")
		}

		return c.JSON(fiber.Map{"success": true, "data": "Email sent"})
	}
}

// ResetPassword handles PUT /auth/resetpassword/:resettoken. The stored hash
// is cleared on success, so a token redeems exactly once.
func ResetPassword(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Password string `json:"password"`
		}
		if err := c.BodyParser(&req); err != nil {
			return apperr.BadRequest("Invalid request body")
		}

		ctx := c.Context()
		tokenHash := model.HashResetToken(c.Params("resettoken"))

		user, err := FindUserByResetToken(ctx, db, tokenHash)
		if err != nil {
			return apperr.BadRequest("Invalid token")
		}

		if err := user.SetPassword(req.Password); err != nil {
			return apperr.BadRequest("%s", err.Error())
		}
		user.ClearResetToken()
		user.UpdatedAt = time.Now()

		if err := SaveUser(ctx, db, user); err != nil {
			return err
		}

		return sendTokenResponse(c, user, fiber.StatusOK)
	}
}

// sendTokenResponse issues a session token, sets it as an HTTP-only cookie
// and returns it in the body.
func sendTokenResponse(c *fiber.Ctx, user *model.User, status int) error {
	token, err := GenerateJWT(user.Key, user.Role)
	if err != nil {
		return apperr.Internal("Failed to generate token")
	}

	c.Cookie(&fiber.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Expires:  time.Now().Add(time.Duration(CookieExpireDays()) * 24 * time.Hour),
		HTTPOnly: true,
		Secure:   database.GetEnvDefault("APP_ENV", "development") == "production",
		SameSite: "Lax",
		Path:     "/",
	})

	return c.Status(status).JSON(fiber.Map{"success": true, "token": token})
}
