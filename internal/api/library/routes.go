package library

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the gateway on the catch-all route. Static
// routes registered elsewhere (like /health) take precedence over the
// wildcard.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.GET("/*", h.Handle)
	e.HEAD("/*", h.Handle)
}
