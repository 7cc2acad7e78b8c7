package attempts

import (
	"context"
	"database/sql"
	"fmt"

	dErrors "fraudgate/pkg/domain-errors"
)

// PostgresStore persists fraud attempt records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed attempt store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, record *FraudAttemptRecord) error {
	if record == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "fraud attempt record is required")
	}
	query := `
		INSERT INTO fraud_attempts (
			id, order_id, full_name, ip_address, billing_email, billing_phone,
			billing_address, shipping_address, payment_method, user_agent, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.OrderID,
		record.FullName,
		record.IPAddress,
		record.BillingEmail,
		record.BillingPhone,
		record.BillingAddress,
		record.ShippingAddress,
		record.PaymentMethod,
		record.UserAgent,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append fraud attempt: %w", err)
	}
	return nil
}

// CountMatching builds the OR conditions from the participating signals only,
// so an empty email or phone cannot match other records' empty columns.
func (s *PostgresStore) CountMatching(ctx context.Context, query MatchQuery) (int, error) {
	if query.Empty() {
		return 0, nil
	}

	conditions := ""
	args := make([]any, 0, 3)
	add := func(column, value string) {
		if value == "" {
			return
		}
		if conditions != "" {
			conditions += " OR "
		}
		args = append(args, value)
		conditions += fmt.Sprintf("%s = $%d", column, len(args))
	}
	add("ip_address", query.IPAddress)
	add("billing_email", query.BillingEmail)
	add("billing_phone", query.BillingPhone)

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM fraud_attempts WHERE "+conditions, args...,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count fraud attempts: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*FraudAttemptRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, order_id, full_name, ip_address, billing_email, billing_phone,
		       billing_address, shipping_address, payment_method, user_agent, created_at
		FROM fraud_attempts
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list fraud attempts: %w", err)
	}
	defer rows.Close()

	var records []*FraudAttemptRecord
	for rows.Next() {
		var r FraudAttemptRecord
		if err := rows.Scan(
			&r.ID, &r.OrderID, &r.FullName, &r.IPAddress, &r.BillingEmail, &r.BillingPhone,
			&r.BillingAddress, &r.ShippingAddress, &r.PaymentMethod, &r.UserAgent, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan fraud attempt: %w", err)
		}
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fraud attempts: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM fraud_attempts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete fraud attempt: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete fraud attempt: %w", err)
	}
	if affected == 0 {
		return dErrors.New(dErrors.CodeNotFound, "fraud attempt record not found")
	}
	return nil
}
