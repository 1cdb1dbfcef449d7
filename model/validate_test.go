package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOrganization() Organization {
	return Organization{
		Name:        "Devworks Academy",
		Description: "Full stack training",
		Address:     "233 Bay State Rd Boston MA 02215",
		Careers:     []string{"Web Development", "UI/UX"},
	}
}

func validOffering() Offering {
	return Offering{
		Title:        "Front End Web Development",
		Description:  "Twelve weeks of HTML, CSS and JavaScript",
		Weeks:        "12",
		Cost:         8000,
		MinimumSkill: SkillBeginner,
	}
}

func validReview() Review {
	return Review{
		Title:  "Learned a ton",
		Text:   "Would absolutely recommend",
		Rating: 9,
	}
}

func TestValidateAcceptsCompleteDocuments(t *testing.T) {
	org := validOrganization()
	assert.NoError(t, Validate(&org))

	offering := validOffering()
	assert.NoError(t, Validate(&offering))

	review := validReview()
	assert.NoError(t, Validate(&review))
}

func TestValidateOrganizationRequiredFields(t *testing.T) {
	org := validOrganization()
	org.Name = ""
	org.Address = ""

	err := Validate(&org)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "please add a name")
	assert.Contains(t, err.Error(), "please add a address")
}

func TestValidateOrganizationCareerList(t *testing.T) {
	org := validOrganization()
	org.Careers = []string{"Web Development", "Basket Weaving"}

	err := Validate(&org)
	require.Error(t, err)
	assert.Contains(t, strings.ToLower(err.Error()), "must be one of")
}

func TestValidateOrganizationWebsiteURL(t *testing.T) {
	org := validOrganization()
	org.Website = "not a url"
	assert.Error(t, Validate(&org))

	org.Website = "https://devworks.example.com"
	assert.NoError(t, Validate(&org))
}

func TestValidateOrganizationEmail(t *testing.T) {
	org := validOrganization()
	org.Email = "nope"

	err := Validate(&org)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "please add a valid email")
}

func TestValidateOrganizationNameLength(t *testing.T) {
	org := validOrganization()
	org.Name = strings.Repeat("x", 51)
	assert.Error(t, Validate(&org))
}

func TestValidateOfferingCostPositive(t *testing.T) {
	offering := validOffering()
	offering.Cost = 0
	assert.Error(t, Validate(&offering))

	offering.Cost = -100
	assert.Error(t, Validate(&offering))
}

func TestValidateOfferingSkill(t *testing.T) {
	offering := validOffering()
	offering.MinimumSkill = "wizard"

	err := Validate(&offering)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be one of")
}

func TestValidateReviewRatingBounds(t *testing.T) {
	review := validReview()

	review.Rating = 0
	assert.Error(t, Validate(&review))

	review.Rating = 11
	assert.Error(t, Validate(&review))

	review.Rating = 1
	assert.NoError(t, Validate(&review))

	review.Rating = 10
	assert.NoError(t, Validate(&review))
}

func TestValidateUser(t *testing.T) {
	user := NewUser("John Doe", "john@example.com", RoleUser)
	assert.NoError(t, Validate(user))

	user.Email = "not-an-email"
	assert.Error(t, Validate(user))

	user.Email = "john@example.com"
	user.Role = "superuser"
	assert.Error(t, Validate(user))
}
