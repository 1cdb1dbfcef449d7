package reviews

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/traincamp/traincamp-backend/database"
	"github.com/traincamp/traincamp-backend/model"
	"github.com/traincamp/traincamp-backend/restapi/apperr"
	"github.com/traincamp/traincamp-backend/restapi/listquery"
	"github.com/traincamp/traincamp-backend/restapi/modules/auth"
	"github.com/traincamp/traincamp-backend/restapi/modules/organizations"
)

// ListOptions inlines a name/description projection of the reviewed
// organization into the list results
var ListOptions = listquery.Options{
	Expand: &listquery.Expand{
		Collection: database.ColOrganizations,
		As:         "organization",
		LocalRef:   "organization",
		Project:    []string{"name", "description"},
	},
}

// GetReviews handles GET /reviews
func GetReviews() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(listquery.FromContext(c))
	}
}

// GetReviewsForOrganization handles GET /organizations/:orgId/reviews
func GetReviewsForOrganization(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reviews, err := ListByOrganization(c.Context(), db, c.Params("orgId"))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "count": len(reviews), "data": reviews})
	}
}

// GetReviewByID handles GET /reviews/:id
func GetReviewByID(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := GetReviewExpanded(c.Context(), db, c.Params("id"))
		if err != nil {
			return apperr.NotFound("No review found with the id of %s", c.Params("id"))
		}
		return c.JSON(fiber.Map{"success": true, "data": doc})
	}
}

// AddReview handles POST /organizations/:orgId/reviews. One review per user
// per organization; the unique index enforces it.
func AddReview(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var review model.Review
		if err := c.BodyParser(&review); err != nil {
			return apperr.BadRequest("Invalid request body")
		}

		ctx := c.Context()
		if _, err := organizations.GetOrganization(ctx, db, c.Params("orgId")); err != nil {
			return apperr.NotFound("No organization with the id of %s", c.Params("orgId"))
		}

		user := auth.CurrentUser(c)
		review.Key = ""
		review.Organization = c.Params("orgId")
		review.Owner = user.Key
		review.CreatedAt = time.Now()

		if err := model.Validate(&review); err != nil {
			return apperr.BadRequest("%s", err.Error())
		}

		if err := InsertReview(ctx, db, &review); err != nil {
			return err
		}

		if err := RecomputeAverageRating(ctx, db, review.Organization); err != nil {
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": review})
	}
}

// UpdateReview handles PUT /reviews/:id
func UpdateReview(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		review, err := GetReview(ctx, db, c.Params("id"))
		if err != nil {
			return apperr.NotFound("No review found with the id of %s", c.Params("id"))
		}

		user := auth.CurrentUser(c)
		if review.Owner != user.Key && !user.IsAdmin() {
			return apperr.Forbidden("Not authorized to update review %s", review.Key)
		}

		preserved := *review
		if err := c.BodyParser(review); err != nil {
			return apperr.BadRequest("Invalid request body")
		}
		review.Key = preserved.Key
		review.Organization = preserved.Organization
		review.Owner = preserved.Owner
		review.CreatedAt = preserved.CreatedAt

		if err := model.Validate(review); err != nil {
			return apperr.BadRequest("%s", err.Error())
		}

		if err := ReplaceReview(ctx, db, review); err != nil {
			return err
		}

		if err := RecomputeAverageRating(ctx, db, review.Organization); err != nil {
			return err
		}

		return c.JSON(fiber.Map{"success": true, "data": review})
	}
}

// DeleteReviewByID handles DELETE /reviews/:id
func DeleteReviewByID(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		review, err := GetReview(ctx, db, c.Params("id"))
		if err != nil {
			return apperr.NotFound("No review found with the id of %s", c.Params("id"))
		}

		user := auth.CurrentUser(c)
		if review.Owner != user.Key && !user.IsAdmin() {
			return apperr.Forbidden("Not authorized to delete review %s", review.Key)
		}

		if err := DeleteReview(ctx, db, review.Key); err != nil {
			return err
		}

		if err := RecomputeAverageRating(ctx, db, review.Organization); err != nil {
			return err
		}

		return c.JSON(fiber.Map{"success": true, "data": fiber.Map{}})
	}
}
