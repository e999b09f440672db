package policy

import "errors"

var (
	ErrInvalidSlabs   = errors.New("invalid ptax slabs")
	ErrUnknownKey     = errors.New("unknown policy key")
	ErrInvalidBoolean = errors.New("invalid boolean policy value")
	ErrInvalidNumber  = errors.New("invalid numeric policy value")
)
