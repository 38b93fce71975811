package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"start-page/dashboard"
	"start-page/domain"
)

type conditionRequest struct {
	Condition string `json:"condition"`
}

func getWeather(d *dashboard.Dashboard) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, d.Weather.View())
	}
}

func refreshWeather(d *dashboard.Dashboard) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := d.Weather.Refresh(c.Request().Context()); err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, d.Weather.View())
	}
}

func overrideCondition(d *dashboard.Dashboard) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req conditionRequest
		if err := decodeBody(c, &req); err != nil {
			return fail(c, err)
		}
		cond, err := domain.ParseCondition(req.Condition)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		d.Weather.Override(cond)
		return c.JSON(http.StatusOK, d.Theme())
	}
}
