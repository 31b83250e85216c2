// Package memstore is an in-memory repository.Store. It backs the
// STORAGE_DRIVER=memory mode and the service and handler tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stemsi/university-api/internal/model"
	"github.com/stemsi/university-api/internal/repository"
)

type tables struct {
	faculties map[int]model.Faculty
	groups    map[int]model.Group
	students  map[int]model.Student
	nextID    map[string]int
}

func (t *tables) clone() *tables {
	c := &tables{
		faculties: make(map[int]model.Faculty, len(t.faculties)),
		groups:    make(map[int]model.Group, len(t.groups)),
		students:  make(map[int]model.Student, len(t.students)),
		nextID:    make(map[string]int, len(t.nextID)),
	}
	for k, v := range t.faculties {
		c.faculties[k] = v
	}
	for k, v := range t.groups {
		c.groups[k] = v
	}
	for k, v := range t.students {
		c.students[k] = v
	}
	for k, v := range t.nextID {
		c.nextID[k] = v
	}
	return c
}

// Store keeps all rows in maps guarded by a mutex.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	data *tables
	now  func() time.Time

	// FailOn, when set, is consulted before every write. A non-nil return
	// aborts the write with that error. Tests use it to inject failures.
	FailOn func(op string) error
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		data: &tables{
			faculties: map[int]model.Faculty{},
			groups:    map[int]model.Group{},
			students:  map[int]model.Student{},
			nextID:    map[string]int{},
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

var _ repository.Store = (*Store)(nil)

func (s *Store) Faculties() repository.FacultyRepository { return facultyRepo{s} }
func (s *Store) Groups() repository.GroupRepository     { return groupRepo{s} }
func (s *Store) Students() repository.StudentRepository { return studentRepo{s} }

// WithTx serializes transactions and restores the previous state when fn
// fails. Writes made outside a transaction while one is running are lost
// on rollback.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(ctx, s); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) fail(op string) error {
	if s.FailOn == nil {
		return nil
	}
	return s.FailOn(op)
}

func (s *Store) id(table string) int {
	s.data.nextID[table]++
	return s.data.nextID[table]
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
