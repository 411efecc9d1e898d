// Package memstore is an in-memory implementation of the store interfaces.
//
// Transactions take per-entity locks on every *ForUpdate read and hold them
// until commit or rollback, so units of work touching different learners run
// in parallel while writers to the same record or learner are serialized.
// Rollback replays an undo log.
package memstore
