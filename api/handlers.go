// Package api exposes the dashboard over HTTP.
package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"start-page/dashboard"
	"start-page/domain"
	"start-page/list"
	"start-page/storage"
	"start-page/weather"
)

const maxBodySize = 64 << 10

var errInvalidBody = errors.New("invalid body")

// Authenticator resolves the caller of a request.
type Authenticator interface {
	UserIDFromAuthHeader(string) (string, error)
}

// Register wires up all routes on the provided Echo instance. A nil
// Authenticator leaves the API open.
func Register(e *echo.Echo, d *dashboard.Dashboard, auth Authenticator, logger *log.Logger) {
	if logger == nil {
		logger = log.StandardLogger()
	}
	e.GET("/healthz", healthz(d))
	e.GET("/search", search())

	// EventSource cannot set headers, so only the stream takes ?token=.
	e.GET("/api/stream", streamTheme(d), withRequestMetrics(logger), requireAuth(auth, true))

	g := e.Group("/api", withRequestMetrics(logger), requireAuth(auth, false))
	g.GET("/dashboard", getDashboard(d))
	g.GET("/clock", getClock(d))
	g.GET("/theme", getTheme(d))

	g.GET("/todos", listTodos(d))
	g.POST("/todos", createTodo(d))
	g.DELETE("/todos/edit", cancelTodoEdit(d))
	g.PATCH("/todos/:id", updateTodo(d))
	g.DELETE("/todos/:id", deleteTodo(d))
	g.POST("/todos/:id/toggle", toggleTodo(d))
	g.POST("/todos/:id/edit", beginTodoEdit(d))
	g.PUT("/todos/:id/edit", commitTodoEdit(d))

	g.GET("/shortcuts", listShortcuts(d))
	g.POST("/shortcuts", createShortcut(d))
	g.PATCH("/shortcuts/:id", updateShortcut(d))
	g.DELETE("/shortcuts/:id", deleteShortcut(d))

	g.GET("/weather", getWeather(d))
	g.POST("/weather/refresh", refreshWeather(d))
	g.PUT("/weather/condition", overrideCondition(d))
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func requireAuth(auth Authenticator, allowQuery bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if auth == nil {
			return next
		}
		return func(c echo.Context) error {
			userID, err := auth.UserIDFromAuthHeader(authHeader(c, allowQuery))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorResponse{Error: err.Error()})
			}
			c.Set("user", userID)
			return next(c)
		}
	}
}

func healthz(d *dashboard.Dashboard) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]bool{
			"todos_loaded":     d.Todos.Loaded(),
			"shortcuts_loaded": d.Shortcuts.Loaded(),
		})
	}
}

func search() echo.HandlerFunc {
	return func(c echo.Context) error {
		target, ok := domain.SearchURL(c.QueryParam("q"))
		if !ok {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "empty search query"})
		}
		return c.Redirect(http.StatusFound, target)
	}
}

func getDashboard(d *dashboard.Dashboard) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, d.Snapshot())
	}
}

func getClock(d *dashboard.Dashboard) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, d.Clock.Now())
	}
}

func getTheme(d *dashboard.Dashboard) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, d.Theme())
	}
}

// decodeBody reads a JSON request body into v, rejecting unknown fields.
func decodeBody(c echo.Context, v any) error {
	lr := io.LimitReader(c.Request().Body, maxBodySize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errInvalidBody
	}
	return nil
}

// statusFor maps operation errors to HTTP statuses.
func statusFor(err error) int {
	var se *storage.Error
	switch {
	case errors.Is(err, domain.ErrBlankField), errors.Is(err, errInvalidBody):
		return http.StatusBadRequest
	case errors.Is(err, list.ErrNotFound), storage.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, list.ErrInEdit):
		return http.StatusConflict
	case errors.Is(err, list.ErrEditUnsupported):
		return http.StatusMethodNotAllowed
	case errors.Is(err, weather.ErrMissingAPIKey):
		return http.StatusServiceUnavailable
	case errors.As(err, &se):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func fail(c echo.Context, err error) error {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}
	var se *storage.Error
	if errors.As(err, &se) {
		resp.Code = se.Code
	}
	if status >= http.StatusInternalServerError {
		c.Logger().Error(err)
	}
	return c.JSON(status, resp)
}
