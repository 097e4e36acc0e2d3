package middleware

import (
	"github.com/labstack/echo/v4"
)

// InstanceIDMiddleware adds the X-Image-Gateway-ID header to all responses
// so deployments behind multiple edges can tell instances apart
func InstanceIDMiddleware(instanceID string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("X-Image-Gateway-ID", instanceID)
			return next(c)
		}
	}
}
