package report

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/platform/web"
)

type Handler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHandler(svc *Service, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/reports/summary", h.Summary)
}

func (h *Handler) Summary(c echo.Context) error {
	month, err := intParam(c, "month")
	if err != nil {
		return web.Error(c, http.StatusBadRequest, "month must be a number")
	}
	year, err := intParam(c, "year")
	if err != nil {
		return web.Error(c, http.StatusBadRequest, "year must be a number")
	}
	limit, err := intParam(c, "limit")
	if err != nil {
		return web.Error(c, http.StatusBadRequest, "limit must be a number")
	}

	w, err := NewWindow(month, year)
	if err != nil {
		return web.Error(c, http.StatusBadRequest, err.Error())
	}

	summary, err := h.svc.Summarize(c.Request().Context(), w, limit)
	if err != nil {
		if errors.Is(err, ErrInvalid) {
			return web.Error(c, http.StatusBadRequest, err.Error())
		}
		h.logger.Error().Err(err).Msg("summary report failed")
		return web.Error(c, http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, summary)
}

func intParam(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
