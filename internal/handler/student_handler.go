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

// maxPhoneLength bounds the phone column.
const maxPhoneLength = 11

// maxNameLength bounds every VARCHAR(255) text column.
const maxNameLength = 255

// StudentHandler handles student CRUD. Every student in a response carries
// its faculty and group.
type StudentHandler struct {
	studentService *service.StudentService
	log            zerolog.Logger
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(studentService *service.StudentService, log zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		studentService: studentService,
		log:            log.With().Str("component", "student_handler").Logger(),
	}
}

// ListStudents godoc
// GET /api/students
func (h *StudentHandler) ListStudents(c *gin.Context) {
	students, err := h.studentService.List(c.Request.Context())
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"students": students})
}

// CreateStudent godoc
// POST /api/students
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	var req model.StudentRequest
	if !bind(c, &req) {
		return
	}
	student, err := studentInput(req)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	detail, err := h.studentService.Create(c.Request.Context(), student)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"message": "student created successfully",
		"student": detail,
	})
}

// GetStudent godoc
// GET /api/students/:id
func (h *StudentHandler) GetStudent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	student, err := h.studentService.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"student": student})
}

// UpdateStudent godoc
// PUT /api/students/:id
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req model.StudentRequest
	if !bind(c, &req) {
		return
	}
	student, err := studentInput(req)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	student.ID = id

	detail, err := h.studentService.Update(c.Request.Context(), student)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"message": "student updated successfully",
		"student": detail,
	})
}

// DeleteStudent godoc
// DELETE /api/students/:id
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.studentService.Delete(c.Request.Context(), id); err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "student deleted successfully"})
}

// studentInput checks every field and collects all failures before returning.
func studentInput(req model.StudentRequest) (*model.Student, error) {
	errs := validator.Errors{}
	st := &model.Student{
		Name:     req.Name.String(),
		LastName: req.LastName.String(),
		Email:    req.Email.String(),
		Phone:    req.Phone.String(),
	}
	errs.Check("name", st.Name, validator.Required(), validator.Alpha(), validator.Max(maxNameLength))
	errs.Check("last_name", st.LastName, validator.Required(), validator.Alpha(), validator.Max(maxNameLength))
	errs.Check("email", st.Email, validator.Required(), validator.Email(), validator.Max(maxNameLength))
	errs.Check("phone", st.Phone, validator.Required(), validator.Max(maxPhoneLength))
	st.FacultyID = refID(errs, "faculty_id", req.FacultyID.String())
	st.GroupID = refID(errs, "group_id", req.GroupID.String())
	return st, errs.Err()
}
