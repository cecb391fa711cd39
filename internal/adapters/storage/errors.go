package storage

import "errors"

// Sentinel kinds for storage errors.
var (
	ErrInvalidZoneID  = errors.New("invalid zone id")
	ErrInvalidSegment = errors.New("zone endpoints must be distinct")
)
