package model

import "time"

// Review represents a user-submitted rating and comment attached to an
// organization. The store enforces one review per user per organization.
type Review struct {
	Key          string    `json:"_key,omitempty"`
	Title        string    `json:"title" validate:"required,max=100"`
	Text         string    `json:"text" validate:"required"`
	Rating       int       `json:"rating" validate:"required,min=1,max=10"`
	Organization string    `json:"organization"`
	Owner        string    `json:"owner"`
	CreatedAt    time.Time `json:"created_at"`
}
