package repositories

import (
	"context"
)

// TransactionManager runs a unit of work inside a single storage transaction.
//
// WithinTransaction begins a transaction, calls fn with a context bound to it,
// commits when fn returns nil and rolls back when fn returns an error or panics.
// Repository calls made with the bound context take part in the transaction.
// Nested calls reuse the outer transaction.
type TransactionManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
