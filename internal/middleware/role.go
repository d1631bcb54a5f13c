package middleware // middleware provides shared request processing for handlers

import (
    "net/http" // http package defines standard HTTP status codes

    "github.com/labstack/echo/v4" // echo provides middleware chaining and context
)

// RequireRole returns a middleware function that enforces that the
// authenticated principal carries one of the specified numeric role tags
// (0 end user, 1 admin, 2 shop owner).  It assumes JWTAuth has already
// stored the role in the context.  Requests with a missing or disallowed
// role are rejected with 403 Forbidden.
func RequireRole(roles ...int) echo.MiddlewareFunc {
    allowed := make(map[int]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            v := c.Get("role")
            role, ok := v.(int)
            if !ok || !allowed[role] {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            return next(c)
        }
    }
}
