package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stemsi/university-api/internal/model"
)

// ErrNotFound is returned when the addressed row does not exist.
var ErrNotFound = errors.New("record not found")

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type FacultyRepository interface {
	List(ctx context.Context) ([]model.Faculty, error)
	ListByIDs(ctx context.Context, ids []int) ([]model.Faculty, error)
	GetByID(ctx context.Context, id int) (*model.Faculty, error)
	Create(ctx context.Context, f *model.Faculty) error
	Update(ctx context.Context, f *model.Faculty) error
	Delete(ctx context.Context, id int) error
}

type GroupRepository interface {
	List(ctx context.Context) ([]model.Group, error)
	ListByFaculty(ctx context.Context, facultyID int) ([]model.Group, error)
	ListByIDs(ctx context.Context, ids []int) ([]model.Group, error)
	GetByID(ctx context.Context, id int) (*model.Group, error)
	Create(ctx context.Context, g *model.Group) error
	Update(ctx context.Context, g *model.Group) error
	Delete(ctx context.Context, id int) error
	// DeleteByFaculty removes every group of the faculty and returns their ids.
	DeleteByFaculty(ctx context.Context, facultyID int) ([]int, error)
}

type StudentRepository interface {
	List(ctx context.Context) ([]model.Student, error)
	GetByID(ctx context.Context, id int) (*model.Student, error)
	Create(ctx context.Context, s *model.Student) error
	Update(ctx context.Context, s *model.Student) error
	Delete(ctx context.Context, id int) error
}

// Store gives access to all repositories over one connection scope.
type Store interface {
	Faculties() FacultyRepository
	Groups() GroupRepository
	Students() StudentRepository
	// WithTx runs fn with a Store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
	Ping(ctx context.Context) error
}

// notFound maps pgx.ErrNoRows to ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
