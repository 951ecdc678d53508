// Package library persists successfully extracted cards in an embedded
// SQLite database and answers lookups against them.
//
// Names are unique ignoring case; re-extracting a card replaces its
// stats. FindByName loosens progressively from exact match to unique
// prefix to unique substring, refusing to guess when a fuzzy query
// matches more than one card.
package library
