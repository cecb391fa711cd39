package bus

import "errors"

// Sentinel kinds for bus errors.
var (
	ErrDecode = errors.New("malformed batch payload")
	ErrClosed = errors.New("bus closed")
)
