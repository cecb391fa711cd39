package report

import "errors"

// Sentinel kinds for report errors.
var (
	ErrBadPeriod = errors.New("unknown bucket period")
)
