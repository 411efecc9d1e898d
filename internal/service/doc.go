// Package service groups the application use cases. Each subpackage owns one
// area and is consumed by the HTTP handlers and the command line:
//
//   - practice: study lists, response grading, mastery statistics and
//     vocabulary administration, run inside store.TxManager transactions
//   - auth: issuing and validating the bearer tokens learners present
//
// Services depend on domain types and the interfaces in internal/store,
// never on a concrete storage backend.
package service
