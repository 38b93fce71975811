package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrBlankField is returned when a required text field is empty after trimming.
var ErrBlankField = errors.New("required field is blank")

// Todo is a single entry of the todo widget.
type Todo struct {
	ID          string    `json:"id"`
	Task        string    `json:"task"`
	IsCompleted bool      `json:"is_completed"`
	InsertedAt  time.Time `json:"inserted_at"`
}

// Key returns the server-assigned id.
func (t Todo) Key() string { return t.ID }

// TodoPatch carries the fields of a todo to change. Nil fields are left alone.
type TodoPatch struct {
	Task        *string `json:"task,omitempty"`
	IsCompleted *bool   `json:"is_completed,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p TodoPatch) Empty() bool {
	return p.Task == nil && p.IsCompleted == nil
}

// ApplyTodoPatch returns t with the patch fields copied over.
func ApplyTodoPatch(t Todo, p TodoPatch) Todo {
	if p.Task != nil {
		t.Task = *p.Task
	}
	if p.IsCompleted != nil {
		t.IsCompleted = *p.IsCompleted
	}
	return t
}

// PrepareTodo validates a new todo before it is sent to the store.
// The task text is kept as typed.
func PrepareTodo(t Todo) (Todo, error) {
	if strings.TrimSpace(t.Task) == "" {
		return Todo{}, fmt.Errorf("task: %w", ErrBlankField)
	}
	return Todo{Task: t.Task}, nil
}

// TodoOrder is how the todo list is read: oldest first.
var TodoOrder = Order{Field: FieldInsertedAt}
