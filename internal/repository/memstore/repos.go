package memstore

import (
	"context"

	"github.com/stemsi/university-api/internal/model"
	"github.com/stemsi/university-api/internal/repository"
)

type facultyRepo struct{ s *Store }

func (r facultyRepo) List(ctx context.Context) ([]model.Faculty, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Faculty{}
	for _, id := range sortedKeys(r.s.data.faculties) {
		out = append(out, r.s.data.faculties[id])
	}
	return out, nil
}

func (r facultyRepo) ListByIDs(ctx context.Context, ids []int) ([]model.Faculty, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := []model.Faculty{}
	for _, id := range sortedKeys(r.s.data.faculties) {
		if want[id] {
			out = append(out, r.s.data.faculties[id])
		}
	}
	return out, nil
}

func (r facultyRepo) GetByID(ctx context.Context, id int) (*model.Faculty, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.data.faculties[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &f, nil
}

func (r facultyRepo) Create(ctx context.Context, f *model.Faculty) error {
	if err := r.s.fail("faculty.create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f.ID = r.s.id("faculties")
	f.CreatedAt = r.s.now()
	f.UpdatedAt = f.CreatedAt
	r.s.data.faculties[f.ID] = *f
	return nil
}

func (r facultyRepo) Update(ctx context.Context, f *model.Faculty) error {
	if err := r.s.fail("faculty.update"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.data.faculties[f.ID]
	if !ok {
		return repository.ErrNotFound
	}
	f.CreatedAt = cur.CreatedAt
	f.UpdatedAt = r.s.now()
	r.s.data.faculties[f.ID] = *f
	return nil
}

func (r facultyRepo) Delete(ctx context.Context, id int) error {
	if err := r.s.fail("faculty.delete"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.faculties[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.data.faculties, id)
	return nil
}

type groupRepo struct{ s *Store }

func (r groupRepo) filter(keep func(model.Group) bool) []model.Group {
	out := []model.Group{}
	for _, id := range sortedKeys(r.s.data.groups) {
		if g := r.s.data.groups[id]; keep(g) {
			out = append(out, g)
		}
	}
	return out
}

func (r groupRepo) List(ctx context.Context) ([]model.Group, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(model.Group) bool { return true }), nil
}

func (r groupRepo) ListByFaculty(ctx context.Context, facultyID int) ([]model.Group, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(g model.Group) bool { return g.FacultyID == facultyID }), nil
}

func (r groupRepo) ListByIDs(ctx context.Context, ids []int) ([]model.Group, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return r.filter(func(g model.Group) bool { return want[g.ID] }), nil
}

func (r groupRepo) GetByID(ctx context.Context, id int) (*model.Group, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.data.groups[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &g, nil
}

func (r groupRepo) Create(ctx context.Context, g *model.Group) error {
	if err := r.s.fail("group.create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g.ID = r.s.id("groups")
	g.CreatedAt = r.s.now()
	g.UpdatedAt = g.CreatedAt
	r.s.data.groups[g.ID] = *g
	return nil
}

func (r groupRepo) Update(ctx context.Context, g *model.Group) error {
	if err := r.s.fail("group.update"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.data.groups[g.ID]
	if !ok {
		return repository.ErrNotFound
	}
	g.CreatedAt = cur.CreatedAt
	g.UpdatedAt = r.s.now()
	r.s.data.groups[g.ID] = *g
	return nil
}

func (r groupRepo) Delete(ctx context.Context, id int) error {
	if err := r.s.fail("group.delete"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.groups[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.data.groups, id)
	return nil
}

func (r groupRepo) DeleteByFaculty(ctx context.Context, facultyID int) ([]int, error) {
	if err := r.s.fail("group.delete_by_faculty"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := []int{}
	for _, id := range sortedKeys(r.s.data.groups) {
		if r.s.data.groups[id].FacultyID == facultyID {
			ids = append(ids, id)
			delete(r.s.data.groups, id)
		}
	}
	return ids, nil
}

type studentRepo struct{ s *Store }

func (r studentRepo) List(ctx context.Context) ([]model.Student, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Student{}
	for _, id := range sortedKeys(r.s.data.students) {
		out = append(out, r.s.data.students[id])
	}
	return out, nil
}

func (r studentRepo) GetByID(ctx context.Context, id int) (*model.Student, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.data.students[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &st, nil
}

func (r studentRepo) Create(ctx context.Context, st *model.Student) error {
	if err := r.s.fail("student.create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st.ID = r.s.id("students")
	st.CreatedAt = r.s.now()
	st.UpdatedAt = st.CreatedAt
	r.s.data.students[st.ID] = *st
	return nil
}

func (r studentRepo) Update(ctx context.Context, st *model.Student) error {
	if err := r.s.fail("student.update"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.data.students[st.ID]
	if !ok {
		return repository.ErrNotFound
	}
	st.CreatedAt = cur.CreatedAt
	st.UpdatedAt = r.s.now()
	r.s.data.students[st.ID] = *st
	return nil
}

func (r studentRepo) Delete(ctx context.Context, id int) error {
	if err := r.s.fail("student.delete"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.students[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.data.students, id)
	return nil
}
