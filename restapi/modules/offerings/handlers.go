package offerings

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

// ListOptions inlines a name/description projection of the owning
// organization into the list results
var ListOptions = listquery.Options{
	Expand: &listquery.Expand{
		Collection: database.ColOrganizations,
		As:         "organization",
		LocalRef:   "organization",
		Project:    []string{"name", "description"},
	},
}

// GetOfferings handles GET /offerings
func GetOfferings() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(listquery.FromContext(c))
	}
}

// GetOfferingsForOrganization handles GET /organizations/:orgId/offerings
func GetOfferingsForOrganization(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offerings, err := ListByOrganization(c.Context(), db, c.Params("orgId"))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "count": len(offerings), "data": offerings})
	}
}

// GetOfferingByID handles GET /offerings/:id
func GetOfferingByID(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := GetOfferingExpanded(c.Context(), db, c.Params("id"))
		if err != nil {
			return apperr.NotFound("No offering found with the id of %s", c.Params("id"))
		}
		return c.JSON(fiber.Map{"success": true, "data": doc})
	}
}

// AddOffering handles POST /organizations/:orgId/offerings. Only the
// organization owner or an admin may add offerings to it.
func AddOffering(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var offering model.Offering
		if err := c.BodyParser(&offering); err != nil {
			return apperr.BadRequest("Invalid request body")
		}

		ctx := c.Context()
		org, err := organizations.GetOrganization(ctx, db, c.Params("orgId"))
		if err != nil {
			return apperr.NotFound("Organization not found with id of %s", c.Params("orgId"))
		}

		user := auth.CurrentUser(c)
		if org.Owner != user.Key && !user.IsAdmin() {
			return apperr.Forbidden("User %s is not authorized to add an offering to organization %s", user.Key, org.Key)
		}

		offering.Key = ""
		offering.Organization = org.Key
		offering.Owner = user.Key
		offering.CreatedAt = time.Now()

		if err := model.Validate(&offering); err != nil {
			return apperr.BadRequest("%s", err.Error())
		}

		if err := InsertOffering(ctx, db, &offering); err != nil {
			return err
		}

		if err := RecomputeAverageCost(ctx, db, org.Key); err != nil {
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": offering})
	}
}

// UpdateOffering handles PUT /offerings/:id
func UpdateOffering(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		offering, err := GetOffering(ctx, db, c.Params("id"))
		if err != nil {
			return apperr.NotFound("No offering found with the id of %s", c.Params("id"))
		}

		user := auth.CurrentUser(c)
		if offering.Owner != user.Key && !user.IsAdmin() {
			return apperr.Forbidden("User %s is not authorized to update offering %s", user.Key, offering.Key)
		}

		preserved := *offering
		if err := c.BodyParser(offering); err != nil {
			return apperr.BadRequest("Invalid request body")
		}
		offering.Key = preserved.Key
		offering.Organization = preserved.Organization
		offering.Owner = preserved.Owner
		offering.CreatedAt = preserved.CreatedAt

		if err := model.Validate(offering); err != nil {
			return apperr.BadRequest("%s", err.Error())
		}

		if err := ReplaceOffering(ctx, db, offering); err != nil {
			return err
		}

		// Cost may have changed
		if err := RecomputeAverageCost(ctx, db, offering.Organization); err != nil {
			return err
		}

		return c.JSON(fiber.Map{"success": true, "data": offering})
	}
}

// DeleteOfferingByID handles DELETE /offerings/:id
func DeleteOfferingByID(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		offering, err := GetOffering(ctx, db, c.Params("id"))
		if err != nil {
			return apperr.NotFound("No offering found with the id of %s", c.Params("id"))
		}

		user := auth.CurrentUser(c)
		if offering.Owner != user.Key && !user.IsAdmin() {
			return apperr.Forbidden("User %s is not authorized to delete offering %s", user.Key, offering.Key)
		}

		if err := DeleteOffering(ctx, db, offering.Key); err != nil {
			return err
		}

		if err := RecomputeAverageCost(ctx, db, offering.Organization); err != nil {
			return err
		}

		return c.JSON(fiber.Map{"success": true, "data": fiber.Map{}})
	}
}
