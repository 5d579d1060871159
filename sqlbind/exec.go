package sqlbind

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"

	"tagged-serde/diagnostic"
)

// Execer is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// CreateTable creates table name with the columns of row type T.
func CreateTable[T any](ctx context.Context, db Execer, name string) error {
	s, err := Table[T]()
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, s.CreateTable(name)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", name, err)
	}

	return nil
}

// Insert writes rows into table name with a single statement.
func Insert[T any](ctx context.Context, db Execer, name string, rows ...T) error {
	if len(rows) == 0 {
		return nil
	}

	s, err := Table[T]()
	if err != nil {
		return err
	}

	args := make([]any, 0, len(rows)*len(s.Columns))

	for i := range rows {
		a, err := s.args(reflect.ValueOf(&rows[i]).Elem())
		if err != nil {
			return diagnostic.WithIndex(err, i)
		}

		args = append(args, a...)
	}

	if _, err := db.ExecContext(ctx, s.Insert(name, len(rows)), args...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", name, err)
	}

	return nil
}

// SelectAll reads every row of table name.
func SelectAll[T any](ctx context.Context, db Execer, name string) ([]T, error) {
	s, err := Table[T]()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, s.SelectAll(name))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", name, err)
	}
	defer rows.Close()

	var out []T

	for rows.Next() {
		var v T
		if err := s.scan(rows, reflect.ValueOf(&v).Elem()); err != nil {
			return nil, diagnostic.WithIndex(err, len(out))
		}

		out = append(out, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	return out, nil
}
