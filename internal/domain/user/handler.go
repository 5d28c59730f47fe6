package user

import (
	"errors"
	"net/http"

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
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
}

func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return web.Error(c, http.StatusBadRequest, err.Error())
	}
	u, err := h.svc.Register(c.Request().Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalid):
			return web.Error(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrDuplicateUsername):
			return web.Error(c, http.StatusBadRequest, ErrDuplicateUsername.Error())
		default:
			h.logger.Error().Err(err).Msg("user registration failed")
			return web.Error(c, http.StatusInternalServerError, "internal server error")
		}
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return web.Error(c, http.StatusBadRequest, err.Error())
	}
	token, u, err := h.svc.Login(c.Request().Context(), &req)
	if err != nil {
		if errors.Is(err, ErrBadCredentials) {
			return web.Error(c, http.StatusUnauthorized, ErrBadCredentials.Error())
		}
		h.logger.Error().Err(err).Msg("login failed")
		return web.Error(c, http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  u,
	})
}
