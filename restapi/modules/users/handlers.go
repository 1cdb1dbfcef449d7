// Package users implements the admin-only user management endpoints.
package users

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/traincamp/traincamp-backend/database"
	"github.com/traincamp/traincamp-backend/model"
	"github.com/traincamp/traincamp-backend/restapi/apperr"
	"github.com/traincamp/traincamp-backend/restapi/listquery"
	"github.com/traincamp/traincamp-backend/restapi/modules/auth"
)

// ListOptions strips the credential fields from list responses
var ListOptions = listquery.Options{
	Omit: []string{"password_hash", "reset_password_token", "reset_password_expire"},
}

// ListUsers handles GET /users
func ListUsers() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(listquery.FromContext(c))
	}
}

// GetUser handles GET /users/:id
func GetUser(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.GetUserByKey(c.Context(), db, c.Params("id"))
		if err != nil {
			return apperr.NotFound("User not found with id of %s", c.Params("id"))
		}
		return c.JSON(fiber.Map{"success": true, "data": user.Sanitized()})
	}
}

// CreateUser handles POST /users. Unlike public registration an admin may
// create users of any role.
func CreateUser(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Password string `json:"password"`
			Role     string `json:"role"`
		}
		if err := c.BodyParser(&req); err != nil {
			return apperr.BadRequest("Invalid request body")
		}

		user := model.NewUser(req.Name, req.Email, req.Role)
		if err := user.SetPassword(req.Password); err != nil {
			return apperr.BadRequest("%s", err.Error())
		}

		if err := model.Validate(user); err != nil {
			return apperr.BadRequest("%s", err.Error())
		}

		if err := auth.CreateUser(c.Context(), db, user); err != nil {
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": user.Sanitized()})
	}
}

// UpdateUser handles PUT /users/:id
func UpdateUser(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Role     string `json:"role"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&req); err != nil {
			return apperr.BadRequest("Invalid request body")
		}

		ctx := c.Context()
		user, err := auth.GetUserByKey(ctx, db, c.Params("id"))
		if err != nil {
			return apperr.NotFound("User not found with id of %s", c.Params("id"))
		}

		if req.Name != "" {
			user.Name = req.Name
		}
		if req.Email != "" {
			user.Email = req.Email
		}
		if req.Role != "" {
			user.Role = req.Role
		}
		// Hash only when the password is actually being changed
		if req.Password != "" {
			if err := user.SetPassword(req.Password); err != nil {
				return apperr.BadRequest("%s", err.Error())
			}
		}
		user.UpdatedAt = time.Now()

		if err := model.Validate(user); err != nil {
			return apperr.BadRequest("%s", err.Error())
		}

		if err := auth.SaveUser(ctx, db, user); err != nil {
			return err
		}

		return c.JSON(fiber.Map{"success": true, "data": user.Sanitized()})
	}
}

// DeleteUser handles DELETE /users/:id
func DeleteUser(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()
		if _, err := auth.GetUserByKey(ctx, db, c.Params("id")); err != nil {
			return apperr.NotFound("User not found with id of %s", c.Params("id"))
		}

		if err := auth.DeleteUser(ctx, db, c.Params("id")); err != nil {
			return err
		}

		return c.JSON(fiber.Map{"success": true, "data": fiber.Map{}})
	}
}
