// Package task manages background job queuing, processing, and lifecycle.
// Tasks are persisted before they are queued so that work interrupted by a
// restart is recovered on the next start. The only task type today is the
// translation back-fill for vocabulary items that cannot be graded yet.
package task
