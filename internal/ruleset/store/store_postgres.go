package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fraudgate/internal/ruleset"
)

// PostgresStore persists ruleset fields in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed ruleset store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, field ruleset.Field) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM ruleset_fields WHERE field = $1`,
		string(field),
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get ruleset field %s: %w", field, err)
	}
	return value, nil
}

func (s *PostgresStore) GetAll(ctx context.Context) (map[ruleset.Field]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT field, value FROM ruleset_fields`)
	if err != nil {
		return nil, fmt.Errorf("list ruleset fields: %w", err)
	}
	defer rows.Close()

	fields := make(map[ruleset.Field]string)
	for rows.Next() {
		var field, value string
		if err := rows.Scan(&field, &value); err != nil {
			return nil, fmt.Errorf("scan ruleset field: %w", err)
		}
		fields[ruleset.Field(field)] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ruleset fields: %w", err)
	}
	return fields, nil
}

func (s *PostgresStore) Set(ctx context.Context, field ruleset.Field, value string) error {
	query := `
		INSERT INTO ruleset_fields (field, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (field) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, string(field), value, time.Now().UTC()); err != nil {
		return fmt.Errorf("set ruleset field %s: %w", field, err)
	}
	return nil
}
