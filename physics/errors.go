package physics

import "errors"

var (
	ErrUnknownShape     = errors.New("physics: unknown shape")
	ErrUnknownBodyType  = errors.New("physics: unknown body type")
	ErrInvalidShapeSize = errors.New("physics: invalid shape size")
	ErrDuplicateBodyID  = errors.New("physics: duplicate body id")
	ErrInvalidConfig    = errors.New("physics: invalid config")
	ErrInvalidGravity   = errors.New("physics: invalid gravity")
)
