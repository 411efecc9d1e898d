// Package domain contains the core entities of the vocabulary study engine:
// vocabulary items, learner profiles and the per-learner mastery records that
// join them. Types validate themselves and carry no storage or transport
// concerns.
package domain
