package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"start-page/dashboard"
	"start-page/domain"
	"start-page/list"
)

type todoRequest struct {
	Task        *string `json:"task"`
	IsCompleted *bool   `json:"is_completed"`
}

type todosResponse struct {
	Todos   []domain.Todo `json:"todos"`
	Editing *list.Edit    `json:"editing,omitempty"`
}

type editRequest struct {
	Text string `json:"text"`
}

func listTodos(d *dashboard.Dashboard) echo.HandlerFunc {
	return func(c echo.Context) error {
		resp := todosResponse{Todos: d.Todos.Items()}
		if e, ok := d.Todos.Editing(); ok {
			resp.Editing = &e
		}
		return c.JSON(http.StatusOK, resp)
	}
}

func createTodo(d *dashboard.Dashboard) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req todoRequest
		if err := decodeBody(c, &req); err != nil {
			return fail(c, err)
		}
		todo := domain.Todo{}
		if req.Task != nil {
			todo.Task = *req.Task
		}
		created, err := d.Todos.Create(c.Request().Context(), todo)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusCreated, created)
	}
}

func updateTodo(d *dashboard.Dashboard) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")
		var req todoRequest
		if err := decodeBody(c, &req); err != nil {
			return fail(c, err)
		}
		patch := domain.TodoPatch{Task: req.Task, IsCompleted: req.IsCompleted}
		if patch.Empty() {
			return fail(c, errInvalidBody)
		}
		if patch.Task != nil && strings.TrimSpace(*patch.Task) == "" {
			return fail(c, fmt.Errorf("task: %w", domain.ErrBlankField))
		}
		if _, ok := d.Todos.Get(id); !ok {
			return fail(c, list.ErrNotFound)
		}
		if err := d.Todos.Update(c.Request().Context(), id, patch); err != nil {
			return fail(c, err)
		}
		return respondTodo(c, d, id)
	}
}

func deleteTodo(d *dashboard.Dashboard) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")
		if _, ok := d.Todos.Get(id); !ok {
			return fail(c, list.ErrNotFound)
		}
		if err := d.Todos.Delete(c.Request().Context(), id); err != nil {
			return fail(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func toggleTodo(d *dashboard.Dashboard) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")
		if err := d.Todos.Toggle(c.Request().Context(), id); err != nil {
			return fail(c, err)
		}
		return respondTodo(c, d, id)
	}
}

func beginTodoEdit(d *dashboard.Dashboard) echo.HandlerFunc {
	return func(c echo.Context) error {
		edit, err := d.Todos.BeginEdit(c.Param("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, edit)
	}
}

func commitTodoEdit(d *dashboard.Dashboard) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")
		var req editRequest
		if err := decodeBody(c, &req); err != nil {
			return fail(c, err)
		}
		if _, ok := d.Todos.Get(id); !ok {
			return fail(c, list.ErrNotFound)
		}
		if err := d.Todos.CommitEdit(c.Request().Context(), id, req.Text); err != nil {
			return fail(c, err)
		}
		if _, ok := d.Todos.Get(id); !ok {
			return c.NoContent(http.StatusNoContent)
		}
		return respondTodo(c, d, id)
	}
}

func cancelTodoEdit(d *dashboard.Dashboard) echo.HandlerFunc {
	return func(c echo.Context) error {
		d.Todos.CancelEdit()
		return c.NoContent(http.StatusNoContent)
	}
}

func respondTodo(c echo.Context, d *dashboard.Dashboard, id string) error {
	todo, ok := d.Todos.Get(id)
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, todo)
}
