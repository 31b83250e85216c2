package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stemsi/university-api/internal/cache"
	"github.com/stemsi/university-api/internal/config"
	"github.com/stemsi/university-api/internal/model"
	"github.com/stemsi/university-api/internal/repository"
	"github.com/stemsi/university-api/internal/repository/memstore"
	"github.com/stemsi/university-api/internal/validator"
)

type fixture struct {
	store   *memstore.Store
	cache   *cache.Memory
	faculty *FacultyService
	group   *GroupService
	student *StudentService
}

func newFixture() *fixture {
	store := memstore.New()
	c := cache.NewMemory()
	log := zerolog.Nop()
	return &fixture{
		store:   store,
		cache:   c,
		faculty: NewFacultyService(store, c, log),
		group:   NewGroupService(store, c, log),
		student: NewStudentService(store, c, log),
	}
}

func (fx *fixture) seed(t *testing.T) (*model.Faculty, *model.GroupDetail, *model.StudentDetail) {
	t.Helper()
	ctx := context.Background()
	f, err := fx.faculty.Create(ctx, "Science")
	if err != nil {
		t.Fatalf("create faculty: %v", err)
	}
	g, err := fx.group.Create(ctx, &model.Group{Name: "S1", FacultyID: f.ID})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	st, err := fx.student.Create(ctx, &model.Student{
		Name: "John", LastName: "Doe", Email: "a@b.com", Phone: "123",
		FacultyID: f.ID, GroupID: g.ID,
	})
	if err != nil {
		t.Fatalf("create student: %v", err)
	}
	return f, g, st
}

func fieldErrors(t *testing.T, err error) validator.Errors {
	t.Helper()
	var errs validator.Errors
	if !errors.As(err, &errs) {
		t.Fatalf("expected validator.Errors, got %v", err)
	}
	return errs
}

func TestFacultyCreateListGet(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()

	f, err := fx.faculty.Create(ctx, "Science")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	list, err := fx.faculty.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	count := 0
	for _, row := range list {
		if row.ID == f.ID {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected new faculty exactly once, got %d", count)
	}

	first, err := fx.faculty.GetByID(ctx, f.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	second, err := fx.faculty.GetByID(ctx, f.ID)
	if err != nil {
		t.Fatalf("get again: %v", err)
	}
	if first.Name != "Science" || !first.UpdatedAt.Equal(second.UpdatedAt) || first.Name != second.Name {
		t.Fatalf("expected identical reads, got %+v and %+v", first, second)
	}
	if !fx.cache.Has(config.CacheKey.FacultyKey(f.ID)) {
		t.Fatalf("expected faculty cached after read")
	}
}

func TestFacultyMissingIDs(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()

	if _, err := fx.faculty.GetByID(ctx, 42); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("get: expected ErrNotFound, got %v", err)
	}
	if _, err := fx.faculty.Update(ctx, 42, "X"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("update: expected ErrNotFound, got %v", err)
	}
	if err := fx.faculty.Delete(ctx, 42); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("delete: expected ErrNotFound, got %v", err)
	}
}

func TestFacultyUpdateEvictsCache(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	f, _ := fx.faculty.Create(ctx, "Science")
	_, _ = fx.faculty.GetByID(ctx, f.ID)

	if _, err := fx.faculty.Update(ctx, f.ID, "Physics"); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := fx.faculty.GetByID(ctx, f.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Physics" {
		t.Fatalf("expected fresh name after update, got %s", got.Name)
	}
}

func TestFacultyDeleteCascadesToGroupsOnly(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	f, g, st := fx.seed(t)

	other, _ := fx.faculty.Create(ctx, "Arts")
	kept, _ := fx.group.Create(ctx, &model.Group{Name: "A1", FacultyID: other.ID})
	_, _ = fx.group.Create(ctx, &model.Group{Name: "S2", FacultyID: f.ID})

	if err := fx.faculty.Delete(ctx, f.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := fx.faculty.GetByID(ctx, f.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected faculty gone, got %v", err)
	}
	left, _ := fx.faculty.ListGroups(ctx, f.ID)
	if len(left) != 0 {
		t.Fatalf("expected no groups of deleted faculty, got %+v", left)
	}
	if _, err := fx.group.GetByID(ctx, g.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected group gone, got %v", err)
	}
	if _, err := fx.group.GetByID(ctx, kept.ID); err != nil {
		t.Fatalf("expected unrelated group kept, got %v", err)
	}
	if fx.cache.Has(config.CacheKey.GroupKey(g.ID)) || fx.cache.Has(config.CacheKey.FacultyKey(f.ID)) {
		t.Fatalf("expected cascade to evict cache entries")
	}

	orphan, err := fx.student.GetByID(ctx, st.ID)
	if err != nil {
		t.Fatalf("expected student kept, got %v", err)
	}
	if orphan.Faculty != nil || orphan.Group != nil {
		t.Fatalf("expected orphaned relations to be nil, got %+v", orphan)
	}
}

func TestFacultyDeleteRollsBackWhenGroupDeleteFails(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	f, g, _ := fx.seed(t)

	fx.store.FailOn = func(op string) error {
		if op == "group.delete_by_faculty" {
			return errors.New("connection reset")
		}
		return nil
	}
	if err := fx.faculty.Delete(ctx, f.ID); err == nil {
		t.Fatalf("expected delete to fail")
	}
	fx.store.FailOn = nil

	if _, err := fx.faculty.GetByID(ctx, f.ID); err != nil {
		t.Fatalf("expected faculty restored, got %v", err)
	}
	if _, err := fx.group.GetByID(ctx, g.ID); err != nil {
		t.Fatalf("expected group restored, got %v", err)
	}
}

func TestGroupAttachesFaculty(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	f, g, _ := fx.seed(t)

	got, err := fx.group.GetByID(ctx, g.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Faculty == nil || got.Faculty.ID != f.ID || got.Name != "S1" {
		t.Fatalf("unexpected detail %+v", got)
	}

	list, err := fx.group.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Faculty == nil || list[0].Faculty.Name != "Science" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestGroupRequiresExistingFaculty(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()

	_, err := fx.group.Create(ctx, &model.Group{Name: "S1", FacultyID: 99})
	errs := fieldErrors(t, err)
	if got := errs["faculty_id"]; len(got) != 1 || got[0] != "The selected faculty id is invalid." {
		t.Fatalf("unexpected errors %v", errs)
	}
	list, _ := fx.group.List(ctx)
	if len(list) != 0 {
		t.Fatalf("expected no group written, got %+v", list)
	}
}

func TestReferenceChecksIgnoreStaleCache(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	f, g, _ := fx.seed(t)

	// A cached row whose storage row is gone must not satisfy the check.
	if err := fx.cache.Set(ctx, config.CacheKey.FacultyKey(99), &model.Faculty{ID: 99, Name: "Gone"}); err != nil {
		t.Fatalf("cache set: %v", err)
	}
	if err := fx.cache.Set(ctx, config.CacheKey.GroupKey(98), &model.Group{ID: 98, Name: "Gone", FacultyID: f.ID}); err != nil {
		t.Fatalf("cache set: %v", err)
	}

	_, err := fx.group.Create(ctx, &model.Group{Name: "S2", FacultyID: 99})
	if got := fieldErrors(t, err)["faculty_id"]; len(got) != 1 {
		t.Fatalf("expected faculty_id error, got %v", got)
	}

	_, err = fx.student.Create(ctx, &model.Student{
		Name: "Jane", LastName: "Doe", Email: "jane@example.com", Phone: "123",
		FacultyID: f.ID, GroupID: 98,
	})
	if got := fieldErrors(t, err)["group_id"]; len(got) != 1 {
		t.Fatalf("expected group_id error, got %v", got)
	}

	groups, _ := fx.group.List(ctx)
	if len(groups) != 1 || groups[0].ID != g.ID {
		t.Fatalf("expected only the seeded group, got %+v", groups)
	}
}

func TestGroupUpdate(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	_, g, _ := fx.seed(t)
	other, _ := fx.faculty.Create(ctx, "Arts")
	_, _ = fx.group.GetByID(ctx, g.ID)

	got, err := fx.group.Update(ctx, &model.Group{ID: g.ID, Name: "A9", FacultyID: other.ID})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Faculty == nil || got.Faculty.Name != "Arts" || got.Name != "A9" {
		t.Fatalf("unexpected detail %+v", got)
	}
	if _, err := fx.group.Update(ctx, &model.Group{ID: 77, Name: "X", FacultyID: other.ID}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGroupDeleteKeepsStudents(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	f, g, st := fx.seed(t)

	if err := fx.group.Delete(ctx, g.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := fx.student.GetByID(ctx, st.ID)
	if err != nil {
		t.Fatalf("expected student to persist, got %v", err)
	}
	if got.GroupID != g.ID || got.Group != nil {
		t.Fatalf("expected dangling group_id with nil group, got %+v", got)
	}
	if got.Faculty == nil || got.Faculty.ID != f.ID {
		t.Fatalf("expected faculty still attached, got %+v", got.Faculty)
	}
	if err := fx.group.Delete(ctx, g.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestStudentRoundTrip(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	f, g, created := fx.seed(t)

	got, err := fx.student.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "John" || got.LastName != "Doe" || got.Email != "a@b.com" || got.Phone != "123" ||
		got.FacultyID != f.ID || got.GroupID != g.ID {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Faculty == nil || got.Group == nil {
		t.Fatalf("expected relations attached, got %+v", got)
	}

	list, err := fx.student.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Group == nil || list[0].Group.Name != "S1" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestStudentReferenceChecksAggregate(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()

	_, err := fx.student.Create(ctx, &model.Student{
		Name: "John", LastName: "Doe", Email: "a@b.com", Phone: "1",
		FacultyID: 5, GroupID: 6,
	})
	errs := fieldErrors(t, err)
	if len(errs["faculty_id"]) != 1 || len(errs["group_id"]) != 1 {
		t.Fatalf("expected both references reported, got %v", errs)
	}
	list, _ := fx.student.List(ctx)
	if len(list) != 0 {
		t.Fatalf("expected nothing written, got %+v", list)
	}
}

func TestStudentUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	f, g, st := fx.seed(t)

	updated, err := fx.student.Update(ctx, &model.Student{
		ID: st.ID, Name: "Jane", LastName: "Roe", Email: "j@r.org", Phone: "12345678901",
		FacultyID: f.ID, GroupID: g.ID,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Jane" || updated.Phone != "12345678901" {
		t.Fatalf("unexpected update result %+v", updated)
	}

	if err := fx.student.Delete(ctx, st.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := fx.student.GetByID(ctx, st.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := fx.student.Delete(ctx, st.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
