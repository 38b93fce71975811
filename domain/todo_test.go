package domain

import (
	"errors"
	"testing"
)

func TestPrepareTodoRejectsBlankTask(t *testing.T) {
	for _, task := range []string{"", "   ", "\n\t"} {
		if _, err := PrepareTodo(Todo{Task: task}); !errors.Is(err, ErrBlankField) {
			t.Fatalf("PrepareTodo(%q): expected ErrBlankField, got %v", task, err)
		}
	}
}

func TestPrepareTodoKeepsTextAsTyped(t *testing.T) {
	got, err := PrepareTodo(Todo{ID: "x", Task: " buy milk ", IsCompleted: true})
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if got.Task != " buy milk " {
		t.Fatalf("unexpected task %q", got.Task)
	}
	if got.ID != "" || got.IsCompleted {
		t.Fatalf("expected only the task to be carried, got %#v", got)
	}
}

func TestApplyTodoPatch(t *testing.T) {
	done := true
	text := "renamed"
	base := Todo{ID: "1", Task: "old"}

	got := ApplyTodoPatch(base, TodoPatch{IsCompleted: &done})
	if !got.IsCompleted || got.Task != "old" {
		t.Fatalf("unexpected toggle result %#v", got)
	}
	got = ApplyTodoPatch(base, TodoPatch{Task: &text})
	if got.Task != "renamed" || got.IsCompleted {
		t.Fatalf("unexpected rename result %#v", got)
	}
	if !(TodoPatch{}).Empty() {
		t.Fatalf("expected zero patch to be empty")
	}
}
