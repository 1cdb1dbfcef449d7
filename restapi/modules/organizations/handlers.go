package organizations

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/traincamp/traincamp-backend/database"
	"github.com/traincamp/traincamp-backend/model"
	"github.com/traincamp/traincamp-backend/restapi/apperr"
	"github.com/traincamp/traincamp-backend/restapi/listquery"
	"github.com/traincamp/traincamp-backend/restapi/modules/auth"
	"github.com/traincamp/traincamp-backend/util"
)

var logger = database.InitLogger()

// ListOptions inlines each organization's offerings into the list results
var ListOptions = listquery.Options{
	Expand: &listquery.Expand{
		Collection: database.ColOfferings,
		As:         "offerings",
		ForeignRef: "organization",
	},
}

// GetOrganizations handles GET /organizations
func GetOrganizations() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(listquery.FromContext(c))
	}
}

// GetOrganizationByID handles GET /organizations/:id
func GetOrganizationByID(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := GetOrganizationExpanded(c.Context(), db, c.Params("id"))
		if err != nil {
			return apperr.NotFound("Organization not found with id of %s", c.Params("id"))
		}
		return c.JSON(fiber.Map{"success": true, "data": doc})
	}
}

// CreateOrganization handles POST /organizations. A non-admin may publish a
// single organization; the limit is enforced by an atomic conditional insert
// rather than a separate pre-check.
func CreateOrganization(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var org model.Organization
		if err := c.BodyParser(&org); err != nil {
			return apperr.BadRequest("Invalid request body")
		}

		user := auth.CurrentUser(c)
		now := time.Now()

		org.Key = ""
		org.Owner = user.Key
		org.Slug = util.Slugify(org.Name)
		org.Photo = ""
		org.AverageCost = nil
		org.AverageRating = nil
		org.CreatedAt = now
		org.UpdatedAt = now

		if err := model.Validate(&org); err != nil {
			return apperr.BadRequest("%s", err.Error())
		}

		ctx := c.Context()
		geocodeLocation(c, &org)

		if user.IsAdmin() {
			if err := InsertOrganization(ctx, db, &org); err != nil {
				return err
			}
		} else {
			created, err := InsertOrganizationOnce(ctx, db, &org)
			if err != nil {
				return err
			}
			if !created {
				return apperr.BadRequest("The user with id %s has already published an organization", user.Key)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": org})
	}
}

// UpdateOrganization handles PUT /organizations/:id
func UpdateOrganization(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		org, err := GetOrganization(ctx, db, c.Params("id"))
		if err != nil {
			return apperr.NotFound("Organization not found with id of %s", c.Params("id"))
		}

		user := auth.CurrentUser(c)
		if org.Owner != user.Key && !user.IsAdmin() {
			return apperr.Forbidden("User %s is not authorized to update this organization", user.Key)
		}

		// Partial update: unmarshal the body over the loaded document, then
		// restore the fields a client must never write.
		preserved := *org
		if err := c.BodyParser(org); err != nil {
			return apperr.BadRequest("Invalid request body")
		}
		org.Key = preserved.Key
		org.Owner = preserved.Owner
		org.Photo = preserved.Photo
		org.AverageCost = preserved.AverageCost
		org.AverageRating = preserved.AverageRating
		org.CreatedAt = preserved.CreatedAt
		org.Slug = util.Slugify(org.Name)
		org.UpdatedAt = time.Now()

		if err := model.Validate(org); err != nil {
			return apperr.BadRequest("%s", err.Error())
		}

		if org.Address != preserved.Address {
			geocodeLocation(c, org)
		}

		if err := ReplaceOrganization(ctx, db, org); err != nil {
			return err
		}

		return c.JSON(fiber.Map{"success": true, "data": org})
	}
}

// DeleteOrganizationByID handles DELETE /organizations/:id
func DeleteOrganizationByID(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		org, err := GetOrganization(ctx, db, c.Params("id"))
		if err != nil {
			return apperr.NotFound("Organization not found with id of %s", c.Params("id"))
		}

		user := auth.CurrentUser(c)
		if org.Owner != user.Key && !user.IsAdmin() {
			return apperr.Forbidden("User %s is not authorized to delete this organization", user.Key)
		}

		if err := DeleteOrganization(ctx, db, org.Key); err != nil {
			return err
		}

		return c.JSON(fiber.Map{"success": true, "data": fiber.Map{}})
	}
}

// GetOrganizationsInRadius handles GET /organizations/radius/:zipcode/:distance
// where distance is in miles
func GetOrganizationsInRadius(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		zipcode := c.Params("zipcode")

		distance, err := strconv.ParseFloat(c.Params("distance"), 64)
		if err != nil || distance <= 0 {
			return apperr.BadRequest("Distance must be a positive number of miles")
		}

		ctx := c.Context()
		point, err := util.GeocodeZip(ctx, zipcode)
		if err != nil {
			return apperr.BadRequest("Unable to geocode zipcode %s", zipcode)
		}

		orgs, err := FindInRadius(ctx, db, point.Lat, point.Lng, distance*util.MetersPerMile)
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{"success": true, "count": len(orgs), "data": orgs})
	}
}

// UploadPhoto handles PUT /organizations/:id/photo. Accepts a single image
// under the MAX_FILE_UPLOAD ceiling and names it deterministically from the
// organization key.
func UploadPhoto(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		org, err := GetOrganization(ctx, db, c.Params("id"))
		if err != nil {
			return apperr.NotFound("Organization not found with id of %s", c.Params("id"))
		}

		user := auth.CurrentUser(c)
		if org.Owner != user.Key && !user.IsAdmin() {
			return apperr.Forbidden("User %s is not authorized to upload a photo for this organization", user.Key)
		}

		file, err := c.FormFile("file")
		if err != nil {
			return apperr.BadRequest("Please upload a file")
		}

		if !strings.HasPrefix(file.Header.Get(fiber.HeaderContentType), "image") {
			return apperr.BadRequest("Please upload an image file")
		}

		maxSize, _ := strconv.ParseInt(database.GetEnvDefault("MAX_FILE_UPLOAD", "1000000"), 10, 64)
		if file.Size > maxSize {
			return apperr.BadRequest("Please upload a file smaller than %d bytes", maxSize)
		}

		filename := "photo_" + org.Key + filepath.Ext(file.Filename)
		uploadPath := database.GetEnvDefault("FILE_UPLOAD_PATH", "./public/uploads")

		if err := c.SaveFile(file, filepath.Join(uploadPath, filename)); err != nil {
			logger.Sugar().Errorf("Failed to store photo for organization %s: %v", org.Key, err)
			return apperr.Internal("Problem with file upload")
		}

		if err := SetPhoto(ctx, db, org.Key, filename); err != nil {
			return err
		}

		return c.JSON(fiber.Map{"success": true, "data": filename})
	}
}

// geocodeLocation fills in the GeoJSON location from the address. Geocoding
// is best effort: a failure leaves the location unset and the organization
// still saves.
func geocodeLocation(c *fiber.Ctx, org *model.Organization) {
	point, err := util.GeocodeAddress(c.Context(), org.Address)
	if err != nil {
		logger.Sugar().Warnf("Geocoding failed for %q: %v", org.Address, err)
		org.Location = nil
		return
	}

	org.Location = &model.Location{
		Type:             "Point",
		Coordinates:      []float64{point.Lng, point.Lat},
		FormattedAddress: org.Address,
	}
}
