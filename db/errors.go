package db

import "errors"

// Failure classes surfaced by the repository. Controllers translate these to
// HTTP status codes; raw datastore errors never reach the client.
var (
	ErrNotFound              = errors.New("record not found")
	ErrInvalidState          = errors.New("request not in required state")
	ErrInsufficientInventory = errors.New("insufficient quantity available")
	ErrValidation            = errors.New("invalid input")
	ErrConflict              = errors.New("duplicate record")
)
