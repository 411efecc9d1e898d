package store

import "context"

// Stores bundles the stores that take part in one unit of work.
type Stores struct {
	Vocabulary VocabularyStore
	Learners   LearnerStore
	Mastery    MasteryStore
}

// UnitFn is a function that runs against stores bound to one transaction.
type UnitFn func(ctx context.Context, stores Stores) error

// TxManager runs units of work atomically. Either every write made through
// the stores passed to fn is committed, or none is.
type TxManager interface {
	// Stores returns stores that run outside any transaction.
	Stores() Stores

	// WithinTx runs fn inside a transaction. The transaction commits when fn
	// returns nil and rolls back otherwise, including on panic.
	WithinTx(ctx context.Context, fn UnitFn) error
}
