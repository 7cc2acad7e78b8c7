// Package store persists ruleset fields as raw text keyed by field name.
package store

import (
	"context"

	"fraudgate/internal/ruleset"
)

// Store reads and writes raw ruleset field values. Unset fields read as "".
type Store interface {
	Get(ctx context.Context, field ruleset.Field) (string, error)
	GetAll(ctx context.Context) (map[ruleset.Field]string, error)
	Set(ctx context.Context, field ruleset.Field, value string) error
}
