package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/stemsi/university-api/internal/model"
)

type facultyRepository struct {
	db DBTX
}

// NewFacultyRepository creates a FacultyRepository over a pool or transaction.
func NewFacultyRepository(db DBTX) FacultyRepository {
	return &facultyRepository{db: db}
}

var facultyColumns = []string{"id", "name", "created_at", "updated_at"}

func scanFaculties(rows pgx.Rows) ([]model.Faculty, error) {
	defer rows.Close()

	faculties := []model.Faculty{}
	for rows.Next() {
		var f model.Faculty
		if err := rows.Scan(&f.ID, &f.Name, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan faculty: %w", err)
		}
		faculties = append(faculties, f)
	}
	return faculties, rows.Err()
}

func (r *facultyRepository) List(ctx context.Context) ([]model.Faculty, error) {
	rows, err := query(ctx, r.db, selectAll("faculties", facultyColumns))
	if err != nil {
		return nil, fmt.Errorf("query faculties: %w", err)
	}
	return scanFaculties(rows)
}

func (r *facultyRepository) ListByIDs(ctx context.Context, ids []int) ([]model.Faculty, error) {
	if len(ids) == 0 {
		return []model.Faculty{}, nil
	}
	rows, err := query(ctx, r.db, selectAll("faculties", facultyColumns).Where(squirrel.Eq{"id": ids}))
	if err != nil {
		return nil, fmt.Errorf("query faculties by ids: %w", err)
	}
	return scanFaculties(rows)
}

func (r *facultyRepository) GetByID(ctx context.Context, id int) (*model.Faculty, error) {
	f := &model.Faculty{}
	err := queryRow(ctx, r.db,
		psql.Select(facultyColumns...).From("faculties").Where(byID(id)),
		&f.ID, &f.Name, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}

func (r *facultyRepository) Create(ctx context.Context, f *model.Faculty) error {
	err := queryRow(ctx, r.db,
		psql.Insert("faculties").
			Columns("name").
			Values(f.Name).
			Suffix("RETURNING id, created_at, updated_at"),
		&f.ID, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert faculty: %w", err)
	}
	return nil
}

func (r *facultyRepository) Update(ctx context.Context, f *model.Faculty) error {
	err := queryRow(ctx, r.db,
		psql.Update("faculties").
			Set("name", f.Name).
			Set("updated_at", now).
			Where(byID(f.ID)).
			Suffix("RETURNING created_at, updated_at"),
		&f.CreatedAt, &f.UpdatedAt,
	)
	return notFound(err)
}

func (r *facultyRepository) Delete(ctx context.Context, id int) error {
	return exec(ctx, r.db, psql.Delete("faculties").Where(byID(id)))
}
