// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as handlers
// to distinguish between failure scenarios without string matching. For
// example, ErrEmailExists maps to HTTP 409 on registration while
// ErrNotFound maps to 404 on lookups.
package repository

import "errors"

// ErrEmailExists is returned when an insert collides with the unique email
// key of the users or shops table.
var ErrEmailExists = errors.New("email already exists")

// ErrNotFound is returned when a lookup matches no row. Handlers should
// translate this into an HTTP 404 response, except on the authentication
// paths where a deliberately generic message is used instead.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an item already exists in a per-user
// collection, such as adding the same product to a cart twice. Handlers
// should translate this into an HTTP 409 response.
var ErrDuplicate = errors.New("already exists")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an HTTP
// 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrTokenInvalid is returned when a password reset redemption matches no
// principal, either because the digest is wrong or the token has expired.
// The two cases are indistinguishable on purpose.
var ErrTokenInvalid = errors.New("invalid or expired token")
