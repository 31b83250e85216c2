package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/stemsi/university-api/internal/cache"
	"github.com/stemsi/university-api/internal/model"
	"github.com/stemsi/university-api/internal/repository"
)

// FacultyService handles faculty business logic.
type FacultyService struct {
	store repository.Store
	rel   *relations
	log   zerolog.Logger
}

// NewFacultyService creates a new FacultyService.
func NewFacultyService(store repository.Store, c cache.Cache, log zerolog.Logger) *FacultyService {
	log = log.With().Str("component", "faculty_service").Logger()
	return &FacultyService{
		store: store,
		rel:   &relations{store: store, cache: c, log: log},
		log:   log,
	}
}

// List retrieves all faculties.
func (s *FacultyService) List(ctx context.Context) ([]model.Faculty, error) {
	faculties, err := s.store.Faculties().List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list faculties")
		return nil, err
	}
	return faculties, nil
}

// GetByID retrieves a faculty. Returns repository.ErrNotFound when absent.
func (s *FacultyService) GetByID(ctx context.Context, id int) (*model.Faculty, error) {
	return s.rel.faculty(ctx, id)
}

// Create inserts a new faculty.
func (s *FacultyService) Create(ctx context.Context, name string) (*model.Faculty, error) {
	f := &model.Faculty{Name: name}
	if err := s.store.Faculties().Create(ctx, f); err != nil {
		s.log.Error().Err(err).Msg("failed to create faculty")
		return nil, err
	}
	s.log.Info().Int("faculty_id", f.ID).Msg("faculty created")
	return f, nil
}

// Update renames an existing faculty.
func (s *FacultyService) Update(ctx context.Context, id int, name string) (*model.Faculty, error) {
	f := &model.Faculty{ID: id, Name: name}
	if err := s.store.Faculties().Update(ctx, f); err != nil {
		return nil, err
	}
	s.rel.evictFaculties(ctx, id)
	s.log.Info().Int("faculty_id", id).Msg("faculty updated")
	return f, nil
}

// Delete removes a faculty together with every group that references it.
// Both deletes run in one transaction; students are left untouched.
func (s *FacultyService) Delete(ctx context.Context, id int) error {
	var groupIDs []int
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := tx.Faculties().Delete(ctx, id); err != nil {
			return err
		}
		ids, err := tx.Groups().DeleteByFaculty(ctx, id)
		if err != nil {
			return err
		}
		groupIDs = ids
		return nil
	})
	if err != nil {
		return err
	}

	s.rel.evictFaculties(ctx, id)
	s.rel.evictGroups(ctx, groupIDs...)
	s.log.Info().
		Int("faculty_id", id).
		Ints("group_ids", groupIDs).
		Msg("faculty deleted with its groups")
	return nil
}

// ListGroups retrieves the groups of a faculty. The faculty itself need not exist.
func (s *FacultyService) ListGroups(ctx context.Context, id int) ([]model.Group, error) {
	groups, err := s.store.Groups().ListByFaculty(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Int("faculty_id", id).Msg("failed to list groups of faculty")
		return nil, err
	}
	return groups, nil
}
