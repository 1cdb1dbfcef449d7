package model

import "time"

// Location is a GeoJSON point with the formatted parts the geocoder returned
type Location struct {
	Type             string    `json:"type,omitempty"`
	Coordinates      []float64 `json:"coordinates,omitempty"` // [lng, lat]
	FormattedAddress string    `json:"formatted_address,omitempty"`
	City             string    `json:"city,omitempty"`
	State            string    `json:"state,omitempty"`
	Zipcode          string    `json:"zipcode,omitempty"`
}

// Organization represents a training provider. Each organization has exactly
// one owning user; AverageCost and AverageRating are derived from its
// offerings and reviews and never written by clients directly.
type Organization struct {
	Key           string    `json:"_key,omitempty"`
	Name          string    `json:"name" validate:"required,max=50"`
	Slug          string    `json:"slug,omitempty"`
	Description   string    `json:"description" validate:"required,max=500"`
	Website       string    `json:"website,omitempty" validate:"omitempty,url"`
	Phone         string    `json:"phone,omitempty" validate:"omitempty,max=20"`
	Email         string    `json:"email,omitempty" validate:"omitempty,email"`
	Address       string    `json:"address" validate:"required"`
	Location      *Location `json:"location,omitempty"`
	Careers       []string  `json:"careers" validate:"required,min=1,dive,oneof='Web Development' 'Mobile Development' 'UI/UX' 'Data Science' 'Business' 'Other'"`
	Housing       bool      `json:"housing"`
	JobAssistance bool      `json:"job_assistance"`
	JobGuarantee  bool      `json:"job_guarantee"`
	Photo         string    `json:"photo,omitempty"`
	AverageCost   *float64  `json:"average_cost,omitempty"`
	AverageRating *float64  `json:"average_rating,omitempty"`
	Owner         string    `json:"owner"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
