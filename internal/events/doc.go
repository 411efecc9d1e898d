// Package events provides types and interfaces for an event-driven architecture.
//
// The study service emits events after it commits a grade or meets an item
// that cannot be graded. Handlers update metrics, publish to NATS, or enqueue
// background translation work without the service knowing about any of them.
package events
