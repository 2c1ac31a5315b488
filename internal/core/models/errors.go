package models

import "errors"

var (
	ErrOutOfBounds = errors.New("coordinates must be in range 0-100")
	ErrUnknownKind = errors.New("unknown entity kind")
)
