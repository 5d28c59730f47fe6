package visit

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/platform/web"
	"github.com/clinic/clinic/pkg/pagination"
)

type Handler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHandler(svc *Service, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/visits", h.Record)
	api.GET("/visits", h.ListByPatient)
	api.GET("/visits/:id", h.Get)
	api.DELETE("/visits/:id", h.Delete)
}

func (h *Handler) Record(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return web.Error(c, http.StatusBadRequest, err.Error())
	}
	v, err := h.svc.Record(c.Request().Context(), &req)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return web.Error(c, http.StatusBadRequest, "invalid id")
	}
	v, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.QueryParam("patient_id"))
	if err != nil {
		return web.Error(c, http.StatusBadRequest, "patient_id is required")
	}
	pg := pagination.FromContext(c)
	visits, total, err := h.svc.ListByPatient(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(visits, total, pg.Limit, pg.Offset))
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return web.Error(c, http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return h.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrInvalid):
		return web.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return web.Error(c, http.StatusNotFound, ErrNotFound.Error())
	default:
		h.logger.Error().Err(err).Str("path", c.Path()).Msg("visit operation failed")
		return web.Error(c, http.StatusInternalServerError, "internal server error")
	}
}
