package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

// psql builds statements with PostgreSQL $n placeholders.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// now is the SQL expression stamped into updated_at.
var now = squirrel.Expr("CURRENT_TIMESTAMP")

// selectAll selects cols from table in id order.
func selectAll(table string, cols []string) squirrel.SelectBuilder {
	return psql.Select(cols...).From(table).OrderBy("id")
}

// byID restricts a statement to one row.
func byID(id int) squirrel.Eq {
	return squirrel.Eq{"id": id}
}

func query(ctx context.Context, db DBTX, b squirrel.Sqlizer) (pgx.Rows, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return db.Query(ctx, sql, args...)
}

// queryRow builds b and scans its single row into dest.
func queryRow(ctx context.Context, db DBTX, b squirrel.Sqlizer, dest ...any) error {
	sql, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return db.QueryRow(ctx, sql, args...).Scan(dest...)
}

// exec runs b and reports ErrNotFound when no row was affected.
func exec(ctx context.Context, db DBTX, b squirrel.Sqlizer) error {
	sql, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
