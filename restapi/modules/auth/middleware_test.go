package auth

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traincamp/traincamp-backend/database"
	"github.com/traincamp/traincamp-backend/model"
	"github.com/traincamp/traincamp-backend/restapi/apperr"
)

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc", ""))
	assert.Equal(t, "abc", BearerToken("Bearer  abc", ""))
	assert.Equal(t, "cookie-value", BearerToken("", "cookie-value"))
	assert.Equal(t, "cookie-value", BearerToken("Basic abc", "cookie-value"))
	// Header wins over cookie
	assert.Equal(t, "abc", BearerToken("Bearer abc", "cookie-value"))
	assert.Equal(t, "", BearerToken("", ""))
}

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: apperr.Handler})
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	app := newTestApp()
	app.Get("/private", RequireAuth(database.DBConnection{}), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/private", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Not authorized to access this route", body["error"])
}

func TestRequireAuthRejectsInvalidToken(t *testing.T) {
	app := newTestApp()
	app.Get("/private", RequireAuth(database.DBConnection{}), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer garbage")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// withUser fakes an authenticated request for guard tests
func withUser(user *model.User) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(userLocalsKey, user)
		return c.Next()
	}
}

func TestRequireRoleAllowsListedRole(t *testing.T) {
	app := newTestApp()
	app.Get("/publish",
		withUser(&model.User{Key: "u1", Role: model.RolePublisher}),
		RequireRole(model.RolePublisher, model.RoleAdmin),
		func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"success": true}) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/publish", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireRoleForbidsOtherRole(t *testing.T) {
	app := newTestApp()
	app.Get("/publish",
		withUser(&model.User{Key: "u1", Role: model.RoleUser}),
		RequireRole(model.RolePublisher, model.RoleAdmin),
		func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"success": true}) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/publish", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "User role user is not authorized to access this route", body["error"])
}

func TestRequireRoleWithoutUserIsUnauthorized(t *testing.T) {
	app := newTestApp()
	app.Get("/publish",
		RequireRole(model.RoleAdmin),
		func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"success": true}) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/publish", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCurrentUser(t *testing.T) {
	app := newTestApp()
	want := &model.User{Key: "u1", Role: model.RoleAdmin}

	app.Get("/me", withUser(want), func(c *fiber.Ctx) error {
		got := CurrentUser(c)
		require.NotNil(t, got)
		assert.Equal(t, want.Key, got.Key)
		return c.SendStatus(http.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
