package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/stemsi/university-api/internal/model"
)

type groupRepository struct {
	db DBTX
}

// NewGroupRepository creates a GroupRepository over a pool or transaction.
func NewGroupRepository(db DBTX) GroupRepository {
	return &groupRepository{db: db}
}

var groupColumns = []string{"id", "name", "faculty_id", "created_at", "updated_at"}

func scanGroups(rows pgx.Rows) ([]model.Group, error) {
	defer rows.Close()

	groups := []model.Group{}
	for rows.Next() {
		var g model.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.FacultyID, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *groupRepository) List(ctx context.Context) ([]model.Group, error) {
	rows, err := query(ctx, r.db, selectAll("groups", groupColumns))
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	return scanGroups(rows)
}

func (r *groupRepository) ListByFaculty(ctx context.Context, facultyID int) ([]model.Group, error) {
	rows, err := query(ctx, r.db, selectAll("groups", groupColumns).Where(squirrel.Eq{"faculty_id": facultyID}))
	if err != nil {
		return nil, fmt.Errorf("query groups of faculty: %w", err)
	}
	return scanGroups(rows)
}

func (r *groupRepository) ListByIDs(ctx context.Context, ids []int) ([]model.Group, error) {
	if len(ids) == 0 {
		return []model.Group{}, nil
	}
	rows, err := query(ctx, r.db, selectAll("groups", groupColumns).Where(squirrel.Eq{"id": ids}))
	if err != nil {
		return nil, fmt.Errorf("query groups by ids: %w", err)
	}
	return scanGroups(rows)
}

func (r *groupRepository) GetByID(ctx context.Context, id int) (*model.Group, error) {
	g := &model.Group{}
	err := queryRow(ctx, r.db,
		psql.Select(groupColumns...).From("groups").Where(byID(id)),
		&g.ID, &g.Name, &g.FacultyID, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return g, nil
}

func (r *groupRepository) Create(ctx context.Context, g *model.Group) error {
	err := queryRow(ctx, r.db,
		psql.Insert("groups").
			Columns("name", "faculty_id").
			Values(g.Name, g.FacultyID).
			Suffix("RETURNING id, created_at, updated_at"),
		&g.ID, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert group: %w", err)
	}
	return nil
}

func (r *groupRepository) Update(ctx context.Context, g *model.Group) error {
	err := queryRow(ctx, r.db,
		psql.Update("groups").
			Set("name", g.Name).
			Set("faculty_id", g.FacultyID).
			Set("updated_at", now).
			Where(byID(g.ID)).
			Suffix("RETURNING created_at, updated_at"),
		&g.CreatedAt, &g.UpdatedAt,
	)
	return notFound(err)
}

func (r *groupRepository) Delete(ctx context.Context, id int) error {
	return exec(ctx, r.db, psql.Delete("groups").Where(byID(id)))
}

func (r *groupRepository) DeleteByFaculty(ctx context.Context, facultyID int) ([]int, error) {
	rows, err := query(ctx, r.db,
		psql.Delete("groups").Where(squirrel.Eq{"faculty_id": facultyID}).Suffix("RETURNING id"))
	if err != nil {
		return nil, fmt.Errorf("delete groups of faculty: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, fmt.Errorf("collect deleted group ids: %w", err)
	}
	return ids, nil
}
