package handler

import (
    "strconv" // string-to-int conversion for path params

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing
)

// pathID parses a numeric path parameter. Zero is rejected along with
// anything non-numeric.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.ErrBadRequest
	}
	return id, nil
}

// currentUserID pulls the principal id the JWT middleware stored on the
// context. The bool is false on routes that skipped the middleware.
func currentUserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get("user_id").(uint64)
	return id, ok
}
