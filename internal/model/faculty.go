package model

import "time"

// Faculty represents a faculty of the university. It owns many groups.
type Faculty struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FacultyRequest is the payload for creating or updating a faculty.
type FacultyRequest struct {
	Name Param `json:"name" form:"name"`
}
