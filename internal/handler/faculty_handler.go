package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/university-api/internal/model"
	"github.com/stemsi/university-api/internal/response"
	"github.com/stemsi/university-api/internal/service"
	"github.com/stemsi/university-api/internal/validator"
)

// FacultyHandler handles faculty CRUD and the faculty → groups listing.
type FacultyHandler struct {
	facultyService *service.FacultyService
	log            zerolog.Logger
}

// NewFacultyHandler creates a new FacultyHandler.
func NewFacultyHandler(facultyService *service.FacultyService, log zerolog.Logger) *FacultyHandler {
	return &FacultyHandler{
		facultyService: facultyService,
		log:            log.With().Str("component", "faculty_handler").Logger(),
	}
}

// ListFaculties godoc
// GET /api/faculties
func (h *FacultyHandler) ListFaculties(c *gin.Context) {
	faculties, err := h.facultyService.List(c.Request.Context())
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"faculties": faculties})
}

// CreateFaculty godoc
// POST /api/faculties
func (h *FacultyHandler) CreateFaculty(c *gin.Context) {
	var req model.FacultyRequest
	if !bind(c, &req) {
		return
	}
	name, err := facultyInput(req)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	faculty, err := h.facultyService.Create(c.Request.Context(), name)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"message": "faculty created successfully",
		"faculty": faculty,
	})
}

// GetFaculty godoc
// GET /api/faculties/:id
func (h *FacultyHandler) GetFaculty(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	faculty, err := h.facultyService.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"faculty": faculty})
}

// UpdateFaculty godoc
// PUT /api/faculties/:id
func (h *FacultyHandler) UpdateFaculty(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req model.FacultyRequest
	if !bind(c, &req) {
		return
	}
	name, err := facultyInput(req)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	faculty, err := h.facultyService.Update(c.Request.Context(), id, name)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"message": "faculty updated successfully",
		"faculty": faculty,
	})
}

// DeleteFaculty godoc
// DELETE /api/faculties/:id
// Deletes the faculty and every group that belongs to it.
func (h *FacultyHandler) DeleteFaculty(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.facultyService.Delete(c.Request.Context(), id); err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "faculty deleted successfully"})
}

// ListFacultyGroups godoc
// GET /api/faculties/:id/groups
func (h *FacultyHandler) ListFacultyGroups(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	groups, err := h.facultyService.ListGroups(c.Request.Context(), id)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"groups": groups})
}

func facultyInput(req model.FacultyRequest) (string, error) {
	errs := validator.Errors{}
	name := req.Name.String()
	errs.Check("name", name, validator.Required(), validator.Max(maxNameLength))
	return name, errs.Err()
}
