// Package pipeline sequences the reconciliation phases over an export tree.
//
// Phases run strictly one after another, each re-scanning the tree so it
// observes every rename the previous phase committed. The tree is shared
// mutable state, so a per-target file lock keeps concurrent invocations from
// interleaving renames.
package pipeline
