package employee

import "errors"

var (
	ErrNotFound    = errors.New("employee not found")
	ErrEmailExists = errors.New("employee email already exists")
)
