package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/stemsi/university-api/internal/cache"
	"github.com/stemsi/university-api/internal/model"
	"github.com/stemsi/university-api/internal/repository"
	"github.com/stemsi/university-api/internal/validator"
)

// GroupService handles group business logic. Every read attaches the owning faculty.
type GroupService struct {
	store repository.Store
	rel   *relations
	log   zerolog.Logger
}

// NewGroupService creates a new GroupService.
func NewGroupService(store repository.Store, c cache.Cache, log zerolog.Logger) *GroupService {
	log = log.With().Str("component", "group_service").Logger()
	return &GroupService{
		store: store,
		rel:   &relations{store: store, cache: c, log: log},
		log:   log,
	}
}

// List retrieves all groups with their faculties.
func (s *GroupService) List(ctx context.Context) ([]model.GroupDetail, error) {
	groups, err := s.store.Groups().List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list groups")
		return nil, err
	}

	facultyIDs := make([]int, 0, len(groups))
	for _, g := range groups {
		facultyIDs = append(facultyIDs, g.FacultyID)
	}
	faculties, err := s.rel.facultiesByID(ctx, facultyIDs)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load faculties of groups")
		return nil, err
	}

	details := make([]model.GroupDetail, 0, len(groups))
	for _, g := range groups {
		details = append(details, model.GroupDetail{Group: g, Faculty: faculties[g.FacultyID]})
	}
	return details, nil
}

// GetByID retrieves a group with its faculty. Returns repository.ErrNotFound when absent.
func (s *GroupService) GetByID(ctx context.Context, id int) (*model.GroupDetail, error) {
	g, err := s.store.Groups().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.attach(ctx, g)
}

// Create inserts a new group after checking that its faculty exists.
func (s *GroupService) Create(ctx context.Context, g *model.Group) (*model.GroupDetail, error) {
	if err := s.checkReferences(ctx, g); err != nil {
		return nil, err
	}
	if err := s.store.Groups().Create(ctx, g); err != nil {
		s.log.Error().Err(err).Int("faculty_id", g.FacultyID).Msg("failed to create group")
		return nil, err
	}
	s.log.Info().Int("group_id", g.ID).Int("faculty_id", g.FacultyID).Msg("group created")
	return s.attach(ctx, g)
}

// Update modifies an existing group after checking that its faculty exists.
func (s *GroupService) Update(ctx context.Context, g *model.Group) (*model.GroupDetail, error) {
	if err := s.checkReferences(ctx, g); err != nil {
		return nil, err
	}
	if err := s.store.Groups().Update(ctx, g); err != nil {
		return nil, err
	}
	s.rel.evictGroups(ctx, g.ID)
	s.log.Info().Int("group_id", g.ID).Msg("group updated")
	return s.attach(ctx, g)
}

// Delete removes a group. Students referencing it keep their group_id.
func (s *GroupService) Delete(ctx context.Context, id int) error {
	if err := s.store.Groups().Delete(ctx, id); err != nil {
		return err
	}
	s.rel.evictGroups(ctx, id)
	s.log.Info().Int("group_id", id).Msg("group deleted")
	return nil
}

func (s *GroupService) checkReferences(ctx context.Context, g *model.Group) error {
	errs := validator.Errors{}
	if err := s.rel.checkFaculty(ctx, errs, "faculty_id", g.FacultyID); err != nil {
		return err
	}
	return errs.Err()
}

func (s *GroupService) attach(ctx context.Context, g *model.Group) (*model.GroupDetail, error) {
	f, err := optional(s.rel.faculty(ctx, g.FacultyID))
	if err != nil {
		return nil, err
	}
	return &model.GroupDetail{Group: *g, Faculty: f}, nil
}
