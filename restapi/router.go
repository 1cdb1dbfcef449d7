// Package restapi provides the main router and initialization for REST API endpoints.
package restapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/traincamp/traincamp-backend/database"
	"github.com/traincamp/traincamp-backend/model"
	"github.com/traincamp/traincamp-backend/restapi/listquery"
	"github.com/traincamp/traincamp-backend/restapi/modules/auth"
	"github.com/traincamp/traincamp-backend/restapi/modules/offerings"
	"github.com/traincamp/traincamp-backend/restapi/modules/organizations"
	"github.com/traincamp/traincamp-backend/restapi/modules/reviews"
	"github.com/traincamp/traincamp-backend/restapi/modules/users"
)

// SetupRoutes configures all REST API routes under /api/v1
func SetupRoutes(app *fiber.App, db database.DBConnection) {
	emailConfig := auth.LoadEmailConfig()

	api := app.Group("/api/v1")

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/register", auth.Register(db))
	authGroup.Post("/login", auth.Login(db))
	authGroup.Get("/logout", auth.Logout())
	authGroup.Get("/me", auth.RequireAuth(db), auth.Me())
	authGroup.Put("/updatedetails", auth.RequireAuth(db), auth.UpdateDetails(db))
	authGroup.Put("/updatepassword", auth.RequireAuth(db), auth.UpdatePassword(db))
	authGroup.Post("/forgotpassword", auth.ForgotPassword(db, emailConfig))
	authGroup.Put("/resetpassword/:resettoken", auth.ResetPassword(db))

	requireAuth := auth.RequireAuth(db)
	requirePublisher := auth.RequireRole(model.RolePublisher, model.RoleAdmin)
	requireReviewer := auth.RequireRole(model.RoleUser, model.RoleAdmin)

	// Organization routes, with nested offering and review routes
	orgGroup := api.Group("/organizations")
	orgGroup.Get("/", listquery.New(db, database.ColOrganizations, organizations.ListOptions), organizations.GetOrganizations())
	orgGroup.Get("/radius/:zipcode/:distance", organizations.GetOrganizationsInRadius(db))
	orgGroup.Get("/:id", organizations.GetOrganizationByID(db))
	orgGroup.Post("/", requireAuth, requirePublisher, organizations.CreateOrganization(db))
	orgGroup.Put("/:id", requireAuth, requirePublisher, organizations.UpdateOrganization(db))
	orgGroup.Delete("/:id", requireAuth, requirePublisher, organizations.DeleteOrganizationByID(db))
	orgGroup.Put("/:id/photo", requireAuth, requirePublisher, organizations.UploadPhoto(db))

	orgGroup.Get("/:orgId/offerings", offerings.GetOfferingsForOrganization(db))
	orgGroup.Post("/:orgId/offerings", requireAuth, requirePublisher, offerings.AddOffering(db))

	orgGroup.Get("/:orgId/reviews", reviews.GetReviewsForOrganization(db))
	orgGroup.Post("/:orgId/reviews", requireAuth, requireReviewer, reviews.AddReview(db))

	// Offering routes
	offeringGroup := api.Group("/offerings")
	offeringGroup.Get("/", listquery.New(db, database.ColOfferings, offerings.ListOptions), offerings.GetOfferings())
	offeringGroup.Get("/:id", offerings.GetOfferingByID(db))
	offeringGroup.Put("/:id", requireAuth, requirePublisher, offerings.UpdateOffering(db))
	offeringGroup.Delete("/:id", requireAuth, requirePublisher, offerings.DeleteOfferingByID(db))

	// Review routes
	reviewGroup := api.Group("/reviews")
	reviewGroup.Get("/", listquery.New(db, database.ColReviews, reviews.ListOptions), reviews.GetReviews())
	reviewGroup.Get("/:id", reviews.GetReviewByID(db))
	reviewGroup.Put("/:id", requireAuth, reviews.UpdateReview(db))
	reviewGroup.Delete("/:id", requireAuth, reviews.DeleteReviewByID(db))

	// User management (admin only)
	userGroup := api.Group("/users", requireAuth, auth.RequireRole(model.RoleAdmin))
	userGroup.Get("/", listquery.New(db, database.ColUsers, users.ListOptions), users.ListUsers())
	userGroup.Post("/", users.CreateUser(db))
	userGroup.Get("/:id", users.GetUser(db))
	userGroup.Put("/:id", users.UpdateUser(db))
	userGroup.Delete("/:id", users.DeleteUser(db))
}
