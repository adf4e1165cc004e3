package attendance

import "errors"

// Attendance domain errors
var (
	// Punch errors
	ErrOutsideGeofence    = errors.New("punch location is outside the allowed office radius")
	ErrOutsideNightWindow = errors.New("punch-in is outside the night-shift window")
	ErrAlreadyPunchedIn   = errors.New("you have already punched in for this day")
	ErrNoOpenPunch        = errors.New("no open punch-in found to punch out from")

	// General errors
	ErrRecordNotFound    = errors.New("attendance record not found")
	ErrInvalidTransition = errors.New("attendance record is not in a state that allows this transition")
)
