package audit

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore persists the blocked-customer log in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed blocked log.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	query := `
		INSERT INTO blocked_log (
			id, full_name, billing_phone, ip_address, billing_email,
			billing_address, shipping_address, reason, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.FullName,
		event.BillingPhone,
		event.IPAddress,
		event.BillingEmail,
		event.BillingAddress,
		event.ShippingAddress,
		event.Reason,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append blocked log entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, full_name, billing_phone, ip_address, billing_email,
		       billing_address, shipping_address, reason, created_at
		FROM blocked_log
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list blocked log: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(
			&e.ID, &e.FullName, &e.BillingPhone, &e.IPAddress, &e.BillingEmail,
			&e.BillingAddress, &e.ShippingAddress, &e.Reason, &e.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan blocked log entry: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blocked log: %w", err)
	}
	return events, nil
}
