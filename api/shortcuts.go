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

type shortcutRequest struct {
	Name *string `json:"name"`
	URL  *string `json:"url"`
}

func listShortcuts(d *dashboard.Dashboard) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string][]dashboard.ShortcutView{"shortcuts": d.ShortcutViews()})
	}
}

func createShortcut(d *dashboard.Dashboard) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req shortcutRequest
		if err := decodeBody(c, &req); err != nil {
			return fail(c, err)
		}
		s := domain.Shortcut{}
		if req.Name != nil {
			s.Name = *req.Name
		}
		if req.URL != nil {
			s.URL = *req.URL
		}
		created, err := d.Shortcuts.Create(c.Request().Context(), s)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusCreated, dashboard.ShortcutView{Shortcut: created, Favicon: domain.FaviconURL(created.URL)})
	}
}

func updateShortcut(d *dashboard.Dashboard) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")
		var req shortcutRequest
		if err := decodeBody(c, &req); err != nil {
			return fail(c, err)
		}
		patch := domain.ShortcutPatch{Name: req.Name, URL: req.URL}
		if patch.Empty() {
			return fail(c, errInvalidBody)
		}
		if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
			return fail(c, fmt.Errorf("name: %w", domain.ErrBlankField))
		}
		if patch.URL != nil && strings.TrimSpace(*patch.URL) == "" {
			return fail(c, fmt.Errorf("url: %w", domain.ErrBlankField))
		}
		if _, ok := d.Shortcuts.Get(id); !ok {
			return fail(c, list.ErrNotFound)
		}
		if err := d.Shortcuts.Update(c.Request().Context(), id, patch); err != nil {
			return fail(c, err)
		}
		s, ok := d.Shortcuts.Get(id)
		if !ok {
			return c.NoContent(http.StatusNoContent)
		}
		return c.JSON(http.StatusOK, dashboard.ShortcutView{Shortcut: s, Favicon: domain.FaviconURL(s.URL)})
	}
}

func deleteShortcut(d *dashboard.Dashboard) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")
		if _, ok := d.Shortcuts.Get(id); !ok {
			return fail(c, list.ErrNotFound)
		}
		if err := d.Shortcuts.Delete(c.Request().Context(), id); err != nil {
			return fail(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
