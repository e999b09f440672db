package salary

import "errors"

var ErrNotFound = errors.New("salary structure not found")
