package model

import "time"

// Student represents a student enrolled in a faculty and a group.
type Student struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	FacultyID int       `json:"faculty_id"`
	GroupID   int       `json:"group_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StudentDetail is a student with its faculty and group attached.
// Either relation is nil when the referenced row no longer exists.
type StudentDetail struct {
	Student
	Faculty *Faculty `json:"faculty"`
	Group   *Group   `json:"group"`
}

// StudentRequest is the payload for creating or updating a student.
type StudentRequest struct {
	Name      Param `json:"name" form:"name"`
	LastName  Param `json:"last_name" form:"last_name"`
	Email     Param `json:"email" form:"email"`
	Phone     Param `json:"phone" form:"phone"`
	FacultyID Param `json:"faculty_id" form:"faculty_id"`
	GroupID   Param `json:"group_id" form:"group_id"`
}
