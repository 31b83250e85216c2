package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/university-api/internal/database"
)

type postgresStore struct {
	pool *pgxpool.Pool
	db   DBTX
}

// NewPostgresStore creates a Store backed by a PostgreSQL pool.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &postgresStore{pool: pool, db: pool}
}

func (s *postgresStore) Faculties() FacultyRepository {
	return NewFacultyRepository(s.db)
}

func (s *postgresStore) Groups() GroupRepository {
	return NewGroupRepository(s.db)
}

func (s *postgresStore) Students() StudentRepository {
	return NewStudentRepository(s.db)
}

func (s *postgresStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return database.WithTransaction(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, &postgresStore{pool: s.pool, db: tx})
	})
}

func (s *postgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
