package domain

import "errors"

// ErrDataUnavailable marks portfolio data that is missing or malformed.
// It is never fatal: callers degrade to static text.
var ErrDataUnavailable = errors.New("portfolio data unavailable")
