// Package practice exposes the study engine to transports: it loads state
// through the store interfaces, runs the pure rules in domain/study, and
// commits the results atomically.
package practice
