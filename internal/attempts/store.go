package attempts

import "context"

// Store persists fraud attempt records.
type Store interface {
	// Append writes one record.
	Append(ctx context.Context, record *FraudAttemptRecord) error

	// CountMatching counts records matching any participating query signal.
	CountMatching(ctx context.Context, query MatchQuery) (int, error)

	// List returns all records, newest first.
	List(ctx context.Context) ([]*FraudAttemptRecord, error)

	// Delete removes one record by ID; not-found is a domain error.
	Delete(ctx context.Context, id string) error
}
