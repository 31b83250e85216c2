package repository

import (
	"context"
	"fmt"

	"github.com/stemsi/university-api/internal/model"
)

type studentRepository struct {
	db DBTX
}

// NewStudentRepository creates a StudentRepository over a pool or transaction.
func NewStudentRepository(db DBTX) StudentRepository {
	return &studentRepository{db: db}
}

var studentColumns = []string{
	"id", "name", "last_name", "email", "phone", "faculty_id", "group_id", "created_at", "updated_at",
}

func (r *studentRepository) List(ctx context.Context) ([]model.Student, error) {
	rows, err := query(ctx, r.db, selectAll("students", studentColumns))
	if err != nil {
		return nil, fmt.Errorf("query students: %w", err)
	}
	defer rows.Close()

	students := []model.Student{}
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.ID, &s.Name, &s.LastName, &s.Email, &s.Phone, &s.FacultyID, &s.GroupID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

func (r *studentRepository) GetByID(ctx context.Context, id int) (*model.Student, error) {
	s := &model.Student{}
	err := queryRow(ctx, r.db,
		psql.Select(studentColumns...).From("students").Where(byID(id)),
		&s.ID, &s.Name, &s.LastName, &s.Email, &s.Phone, &s.FacultyID, &s.GroupID, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

func (r *studentRepository) Create(ctx context.Context, s *model.Student) error {
	err := queryRow(ctx, r.db,
		psql.Insert("students").
			Columns("name", "last_name", "email", "phone", "faculty_id", "group_id").
			Values(s.Name, s.LastName, s.Email, s.Phone, s.FacultyID, s.GroupID).
			Suffix("RETURNING id, created_at, updated_at"),
		&s.ID, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert student: %w", err)
	}
	return nil
}

func (r *studentRepository) Update(ctx context.Context, s *model.Student) error {
	err := queryRow(ctx, r.db,
		psql.Update("students").
			SetMap(map[string]interface{}{
				"name":       s.Name,
				"last_name":  s.LastName,
				"email":      s.Email,
				"phone":      s.Phone,
				"faculty_id": s.FacultyID,
				"group_id":   s.GroupID,
				"updated_at": now,
			}).
			Where(byID(s.ID)).
			Suffix("RETURNING created_at, updated_at"),
		&s.CreatedAt, &s.UpdatedAt,
	)
	return notFound(err)
}

func (r *studentRepository) Delete(ctx context.Context, id int) error {
	return exec(ctx, r.db, psql.Delete("students").Where(byID(id)))
}
