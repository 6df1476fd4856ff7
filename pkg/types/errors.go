package types

import "errors"

// Entity errors.
var (
	// ErrPropertyNotFound is returned by Get for a key that is neither a
	// known field, a derived property, nor a previously stored extra.
	ErrPropertyNotFound = errors.New("property not found")

	// ErrParentCycle marks a parent_id chain that revisits a comment. It is
	// a data-integrity error in the sibling collection.
	ErrParentCycle = errors.New("comment parent chain contains a cycle")
)

// Config validation errors.
var (
	ErrBackendEmpty     = errors.New("backend must not be empty")
	ErrBackendUnknown   = errors.New("unknown backend")
	ErrGuestUserInvalid = errors.New("guest user id must not be negative")
	ErrCacheSizeInvalid = errors.New("user cache size must not be negative")
)

// Backend errors.
var (
	ErrNotAttached     = errors.New("backend is not attached")
	ErrAlreadyAttached = errors.New("backend is already attached")
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidScope    = errors.New("comment has no page or field")
	ErrNameEmpty       = errors.New("name must not be empty")
)
