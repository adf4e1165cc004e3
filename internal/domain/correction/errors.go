package correction

import "errors"

var (
	ErrRequestNotFound = errors.New("correction request not found")
	ErrNotPending      = errors.New("correction request has already been reviewed")
)
