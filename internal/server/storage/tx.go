package storage

import "context"

// Transactor runs fn inside a single storage transaction.
// Storage calls made with the ctx passed to fn take part in that transaction.
// Nested calls join the outer transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
