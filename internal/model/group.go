package model

import "time"

// Group represents a study group belonging to one faculty.
type Group struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	FacultyID int       `json:"faculty_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GroupDetail is a group with its owning faculty attached.
// Faculty is nil when the referenced faculty no longer exists.
type GroupDetail struct {
	Group
	Faculty *Faculty `json:"faculty"`
}

// GroupRequest is the payload for creating or updating a group.
type GroupRequest struct {
	Name      Param `json:"name" form:"name"`
	FacultyID Param `json:"faculty_id" form:"faculty_id"`
}
