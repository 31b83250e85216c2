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

// GroupHandler handles group CRUD. Every group in a response carries its faculty.
type GroupHandler struct {
	groupService *service.GroupService
	log          zerolog.Logger
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(groupService *service.GroupService, log zerolog.Logger) *GroupHandler {
	return &GroupHandler{
		groupService: groupService,
		log:          log.With().Str("component", "group_handler").Logger(),
	}
}

// ListGroups godoc
// GET /api/groups
func (h *GroupHandler) ListGroups(c *gin.Context) {
	groups, err := h.groupService.List(c.Request.Context())
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"groups": groups})
}

// CreateGroup godoc
// POST /api/groups
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req model.GroupRequest
	if !bind(c, &req) {
		return
	}
	group, err := groupInput(req)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	detail, err := h.groupService.Create(c.Request.Context(), group)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"message": "group created successfully",
		"group":   detail,
	})
}

// GetGroup godoc
// GET /api/groups/:id
func (h *GroupHandler) GetGroup(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	group, err := h.groupService.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"group": group})
}

// UpdateGroup godoc
// PUT /api/groups/:id
func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req model.GroupRequest
	if !bind(c, &req) {
		return
	}
	group, err := groupInput(req)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	group.ID = id

	detail, err := h.groupService.Update(c.Request.Context(), group)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"message": "group updated successfully",
		"group":   detail,
	})
}

// DeleteGroup godoc
// DELETE /api/groups/:id
// Students of the group are kept.
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.groupService.Delete(c.Request.Context(), id); err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "group deleted successfully"})
}

func groupInput(req model.GroupRequest) (*model.Group, error) {
	errs := validator.Errors{}
	g := &model.Group{Name: req.Name.String()}
	errs.Check("name", g.Name, validator.Required(), validator.Max(maxNameLength))
	g.FacultyID = refID(errs, "faculty_id", req.FacultyID.String())
	return g, errs.Err()
}
