// Package translation defines the boundary to external services that can
// propose a reference translation for a vocabulary item.
//
// Lookup is best effort: a translator may legitimately have no answer, in
// which case it returns ErrNoTranslation and the item stays ungradable.
package translation
