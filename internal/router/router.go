package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/serandib/plaza/internal/handler" // import the handlers that implement business logic
)

// RegisterRoutes registers routes that do not belong to any feature group.
// Currently it exposes only a health check, which load balancers and
// monitoring systems use to verify that the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}
