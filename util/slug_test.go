package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Devworks Academy":        "devworks-academy",
		"ModernTech  Bootcamp":    "moderntech-bootcamp",
		"Codemasters!":            "codemasters",
		"  UI/UX Design School  ": "ui-ux-design-school",
		"C# & .NET Training":      "c-net-training",
		"already-a-slug":          "already-a-slug",
		"":                        "",
	}

	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "input %q", in)
	}
}

func TestMilesToMeters(t *testing.T) {
	assert.InDelta(t, 16093.4, 10*MetersPerMile, 0.01)
}
