// Package store persists the task collection.
//
// Two backends are available:
//
//   - file: a JSON array on disk, replaced atomically on every save and
//     guarded by an advisory lock on <path>.lock
//   - sqlite: a single tasks table ordered by position
//
// Both backends treat unreadable data as an empty collection and log it
// at warn level. Only failures to create or write data are returned as
// errors.
package store
