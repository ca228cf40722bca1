// Package todo holds the task model and the task service.
//
// The persisted collection is a JSON array of tasks:
//
//	[
//	  {
//	    "id": "LXK3Q9ZB4F2A",
//	    "text": "Buy milk",
//	    "completed": false,
//	    "createdAt": 1717171717171
//	  }
//	]
//
// # Operations
//
// The Service exposes list, create, update, delete, clear-completed and
// toggle-all. Each one loads the whole collection from its Store, applies a
// single mutation, saves the whole collection and returns the affected data.
// Operations are serialized by a per-process mutex; stores implementing
// Locker are additionally locked for the whole cycle.
//
// # Errors
//
// Service errors carry one of two kinds, checked with errors.Is:
//
//   - ErrInvalidInput: missing or blank text, missing completed flag
//   - ErrNotFound: unknown task id
//
// Anything else is a storage failure.
//
// # Validation
//
// ValidateData checks raw persisted bytes against an embedded JSON Schema
// (draft 2020-12). Stores use it to decide whether a file is usable;
// unusable data is treated as an empty collection.
package todo
