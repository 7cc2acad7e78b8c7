package audit

import "context"

// Store persists blocked-customer log entries.
type Store interface {
	Append(ctx context.Context, event Event) error
	List(ctx context.Context) ([]Event, error)
}
