package api

import (
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"

	"start-page/dashboard"
	"start-page/domain"
)

const sseDataPrefix = "data: "

// streamTheme sends the current theme, then one event per condition change,
// until the client goes away.
func streamTheme(d *dashboard.Dashboard) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
		c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
		c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
		c.Response().Header().Set("X-Accel-Buffering", "no")
		flusher, ok := c.Response().Writer.(http.Flusher)
		if !ok {
			return c.String(http.StatusInternalServerError, "stream unsupported")
		}
		ctx := c.Request().Context()
		ch, cancel := d.State.Subscribe()
		defer cancel()

		cond := d.State.Condition()
		for {
			if err := writeEvent(c, domain.ThemeFor(cond)); err != nil {
				c.Logger().Error(err)
				return err
			}
			flusher.Flush()
			select {
			case <-ctx.Done():
				return nil
			case cond = <-ch:
			}
		}
	}
}

func writeEvent(c echo.Context, v any) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return err
	}
	buf := make([]byte, 0, len(sseDataPrefix)+len(data)+2)
	buf = append(buf, sseDataPrefix...)
	buf = append(buf, data...)
	buf = append(buf, '\n', '\n')
	_, err = c.Response().Write(buf)
	return err
}
