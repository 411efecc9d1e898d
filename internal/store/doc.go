// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, allowing the study rules to remain
// independent of specific database technologies or persistence details.
//
// Two implementations exist: internal/platform/postgres for production and
// internal/platform/memstore for tests and local tooling.
package store
