package todo

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Task represents a single entry in the task list.
type Task struct {
	ID        string `json:"id" yaml:"id"`
	Text      string `json:"text" yaml:"text"`
	Completed bool   `json:"completed" yaml:"completed"`
	CreatedAt int64  `json:"createdAt" yaml:"createdAt"` // milliseconds since the Unix epoch
}

// Created returns the creation time of the task.
func (t *Task) Created() time.Time {
	return time.UnixMilli(t.CreatedAt)
}

// Patch carries the optional fields of an update. A nil field is left unchanged.
type Patch struct {
	Text      *string
	Completed *bool
}

// ClearResult is returned by ClearCompleted.
type ClearResult struct {
	Cleared int `json:"cleared" yaml:"cleared"`
}

// Filter selects a subset of tasks by completion state.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// ParseFilter parses a filter name. An empty string means FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterActive:
		return FilterActive, nil
	case FilterCompleted:
		return FilterCompleted, nil
	default:
		return "", invalidInput(fmt.Sprintf("invalid filter %q, must be one of: all, active, completed", s))
	}
}

// Match reports whether a task passes the filter.
func (f Filter) Match(t Task) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// Apply returns the tasks matching the filter, preserving order.
func (f Filter) Apply(tasks []Task) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Remaining counts tasks that are not completed.
func Remaining(tasks []Task) int {
	n := 0
	for _, t := range tasks {
		if !t.Completed {
			n++
		}
	}
	return n
}

// TrimText strips surrounding whitespace, counting U+FEFF as whitespace the
// way browsers do. The text is otherwise stored byte for byte.
func TrimText(s string) string {
	return strings.TrimFunc(s, isTrimmable)
}

func isTrimmable(r rune) bool {
	return unicode.IsSpace(r) || r == '\ufeff'
}

// Error kinds. Use errors.Is to test an error returned by the service.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// Error is a domain error with a user-facing message.
type Error struct {
	Kind    error  // ErrInvalidInput or ErrNotFound
	Message string // message returned to clients
	ID      string // task id, set for ErrNotFound
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.Error()
}

// Unwrap returns the error kind.
func (e *Error) Unwrap() error {
	return e.Kind
}

func invalidInput(msg string) *Error {
	return &Error{Kind: ErrInvalidInput, Message: msg}
}

func notFound(id string) *Error {
	return &Error{Kind: ErrNotFound, Message: "Not found", ID: id}
}

// indexOf returns the position of the task with the given id, or -1.
func indexOf(tasks []Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}
