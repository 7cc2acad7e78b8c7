package orders

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dErrors "fraudgate/pkg/domain-errors"
)

// PostgresStore persists order fraud state in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed order state store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, orderID string) (*Order, error) {
	var o Order
	err := s.db.QueryRowContext(ctx, `
		SELECT order_id, fraud_attempts, skip_blacklist, cancelled, created_at, updated_at
		FROM order_fraud_state
		WHERE order_id = $1
	`, orderID).Scan(&o.ID, &o.FraudAttempts, &o.SkipBlacklist, &o.Cancelled, &o.CreatedAt, &o.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, dErrors.New(dErrors.CodeNotFound, "order state not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get order state: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT note, created_at
		FROM order_notes
		WHERE order_id = $1
		ORDER BY created_at, id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order notes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.Text, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order note: %w", err)
		}
		o.Notes = append(o.Notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order notes: %w", err)
	}
	return &o, nil
}

// IncrementFraudAttempts relies on the RETURNING clause so the pre-increment
// value comes back atomically with the write.
func (s *PostgresStore) IncrementFraudAttempts(ctx context.Context, orderID string) (int, error) {
	var post int
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO order_fraud_state (order_id, fraud_attempts, created_at, updated_at)
		VALUES ($1, 1, $2, $2)
		ON CONFLICT (order_id) DO UPDATE SET
			fraud_attempts = order_fraud_state.fraud_attempts + 1,
			updated_at = EXCLUDED.updated_at
		RETURNING fraud_attempts
	`, orderID, time.Now().UTC()).Scan(&post)
	if err != nil {
		return 0, fmt.Errorf("increment fraud attempts: %w", err)
	}
	return post - 1, nil
}

func (s *PostgresStore) SetSkipBlacklist(ctx context.Context, orderID string, skip bool) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO order_fraud_state (order_id, skip_blacklist, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (order_id) DO UPDATE SET
			skip_blacklist = EXCLUDED.skip_blacklist,
			updated_at = EXCLUDED.updated_at
	`, orderID, skip, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set skip blacklist: %w", err)
	}
	return nil
}

func (s *PostgresStore) MarkCancelled(ctx context.Context, orderID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO order_fraud_state (order_id, cancelled, created_at, updated_at)
		VALUES ($1, TRUE, $2, $2)
		ON CONFLICT (order_id) DO UPDATE SET
			cancelled = TRUE,
			updated_at = EXCLUDED.updated_at
	`, orderID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark order cancelled: %w", err)
	}
	return nil
}

func (s *PostgresStore) AddNote(ctx context.Context, orderID string, text string) error {
	now := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO order_fraud_state (order_id, created_at, updated_at)
		VALUES ($1, $2, $2)
		ON CONFLICT (order_id) DO UPDATE SET updated_at = EXCLUDED.updated_at
	`, orderID, now); err != nil {
		return fmt.Errorf("ensure order state: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO order_notes (order_id, note, created_at)
		VALUES ($1, $2, $3)
	`, orderID, text, now); err != nil {
		return fmt.Errorf("add order note: %w", err)
	}
	return nil
}
