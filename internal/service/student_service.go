package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/stemsi/university-api/internal/cache"
	"github.com/stemsi/university-api/internal/model"
	"github.com/stemsi/university-api/internal/repository"
	"github.com/stemsi/university-api/internal/validator"
)

// StudentService handles student business logic. Every read attaches the
// student's faculty and group.
type StudentService struct {
	store repository.Store
	rel   *relations
	log   zerolog.Logger
}

// NewStudentService creates a new StudentService.
func NewStudentService(store repository.Store, c cache.Cache, log zerolog.Logger) *StudentService {
	log = log.With().Str("component", "student_service").Logger()
	return &StudentService{
		store: store,
		rel:   &relations{store: store, cache: c, log: log},
		log:   log,
	}
}

// List retrieves all students with their faculties and groups.
func (s *StudentService) List(ctx context.Context) ([]model.StudentDetail, error) {
	students, err := s.store.Students().List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list students")
		return nil, err
	}

	facultyIDs := make([]int, 0, len(students))
	groupIDs := make([]int, 0, len(students))
	for _, st := range students {
		facultyIDs = append(facultyIDs, st.FacultyID)
		groupIDs = append(groupIDs, st.GroupID)
	}
	faculties, err := s.rel.facultiesByID(ctx, facultyIDs)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load faculties of students")
		return nil, err
	}
	groups, err := s.rel.groupsByID(ctx, groupIDs)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load groups of students")
		return nil, err
	}

	details := make([]model.StudentDetail, 0, len(students))
	for _, st := range students {
		details = append(details, model.StudentDetail{
			Student: st,
			Faculty: faculties[st.FacultyID],
			Group:   groups[st.GroupID],
		})
	}
	return details, nil
}

// GetByID retrieves a student with relations. Returns repository.ErrNotFound when absent.
func (s *StudentService) GetByID(ctx context.Context, id int) (*model.StudentDetail, error) {
	st, err := s.store.Students().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.attach(ctx, st)
}

// Create inserts a new student after checking its faculty and group exist.
func (s *StudentService) Create(ctx context.Context, st *model.Student) (*model.StudentDetail, error) {
	if err := s.checkReferences(ctx, st); err != nil {
		return nil, err
	}
	if err := s.store.Students().Create(ctx, st); err != nil {
		s.log.Error().Err(err).Msg("failed to create student")
		return nil, err
	}
	s.log.Info().Int("student_id", st.ID).Msg("student created")
	return s.attach(ctx, st)
}

// Update modifies an existing student after checking its faculty and group exist.
func (s *StudentService) Update(ctx context.Context, st *model.Student) (*model.StudentDetail, error) {
	if err := s.checkReferences(ctx, st); err != nil {
		return nil, err
	}
	if err := s.store.Students().Update(ctx, st); err != nil {
		return nil, err
	}
	s.log.Info().Int("student_id", st.ID).Msg("student updated")
	return s.attach(ctx, st)
}

// Delete removes a student.
func (s *StudentService) Delete(ctx context.Context, id int) error {
	if err := s.store.Students().Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Int("student_id", id).Msg("student deleted")
	return nil
}

func (s *StudentService) checkReferences(ctx context.Context, st *model.Student) error {
	errs := validator.Errors{}
	if err := s.rel.checkFaculty(ctx, errs, "faculty_id", st.FacultyID); err != nil {
		return err
	}
	if err := s.rel.checkGroup(ctx, errs, "group_id", st.GroupID); err != nil {
		return err
	}
	return errs.Err()
}

func (s *StudentService) attach(ctx context.Context, st *model.Student) (*model.StudentDetail, error) {
	f, err := optional(s.rel.faculty(ctx, st.FacultyID))
	if err != nil {
		return nil, err
	}
	g, err := optional(s.rel.group(ctx, st.GroupID))
	if err != nil {
		return nil, err
	}
	return &model.StudentDetail{Student: *st, Faculty: f, Group: g}, nil
}
