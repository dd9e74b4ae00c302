package state

import "errors"

var (
	// ErrInsufficientResource means energy or money is below what an action needs.
	ErrInsufficientResource = errors.New("insufficient resource")
	// ErrNotFound means an unknown NPC, event or content id.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState means the action does not apply to the current state.
	ErrInvalidState = errors.New("invalid state")
)
