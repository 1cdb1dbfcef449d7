package model

import "time"

// Offering skill levels
const (
	SkillBeginner     = "beginner"
	SkillIntermediate = "intermediate"
	SkillAdvanced     = "advanced"
)

// Offering represents a purchasable course-like item belonging to exactly one
// organization.
type Offering struct {
	Key                  string    `json:"_key,omitempty"`
	Title                string    `json:"title" validate:"required,max=100"`
	Description          string    `json:"description" validate:"required"`
	Weeks                string    `json:"weeks" validate:"required"`
	Cost                 float64   `json:"cost" validate:"required,gt=0"`
	MinimumSkill         string    `json:"minimum_skill" validate:"required,oneof=beginner intermediate advanced"`
	ScholarshipAvailable bool      `json:"scholarship_available"`
	Organization         string    `json:"organization"`
	Owner                string    `json:"owner"`
	CreatedAt            time.Time `json:"created_at"`
}
