// Package study implements the scheduling and grading rules for vocabulary
// practice: which items a learner sees next, whether an answer is correct,
// how a mastery record changes after a response and how the learner's
// aggregate counters follow.
//
// The package holds no state and performs no I/O. Callers load the learner
// and candidate pool, call the Engine, and persist what it returns.
package study
