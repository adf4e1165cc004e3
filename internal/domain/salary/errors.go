package salary

import "errors"

var (
	ErrRecordNotFound    = errors.New("salary record not found")
	ErrRecordExists      = errors.New("salary record already exists for this period")
	ErrRecordLocked      = errors.New("salary record is locked and cannot be recalculated")
	ErrInvalidTransition = errors.New("salary record is not in a state that allows this transition")
)
