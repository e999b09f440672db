package holiday

import "errors"

var ErrNotFound = errors.New("holiday not found")
