package raspberry

import "errors"

var (
	ErrInvalidParam = errors.New("invalid parameters")
	ErrNotSupported = errors.New("gpio is only supported on linux")
)
