// Package web holds the JSON error envelope shared by all handlers.
package web

import "github.com/labstack/echo/v4"

// ErrorResponse is the wire shape of every error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Error writes {"error": msg} with the given status.
func Error(c echo.Context, status int, msg string) error {
	return c.JSON(status, ErrorResponse{Error: msg})
}
