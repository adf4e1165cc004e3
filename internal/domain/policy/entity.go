package policy

import (
	"time"

	"github.com/shopspring/decimal"
)

// Policy is an immutable snapshot of a tenant's attendance and payroll
// configuration. It is read once per operation; the engine tolerates any
// non-negative value even when the admin UI enforces tighter bounds.
type Policy struct {
	CompanyID string

	// Shift window, tenant-local time-of-day in "15:04" format.
	ShiftStart string
	ShiftEnd   string
	Timezone   string

	GracePeriodMinutes       int
	MinWorkingHours          float64
	MaxWorkingHours          float64
	AutoPunchOutBufferMin    int
	OvertimeThresholdHours   float64
	NightPunchInWindowHours  int
	HalfDayThresholdHours    float64
	OfficeLatitude           *float64
	OfficeLongitude          *float64
	OfficeRadiusMeters       float64
	EnableLatePenalty        bool
	LatePenaltyPerMinute     decimal.Decimal
	EnableAbsentPenalty      bool
	AbsentPenaltyPerDay      decimal.Decimal
	PFPercentage             decimal.Decimal
	ESIPercentage            decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Location resolves the tenant timezone, falling back to UTC when the
// configured name does not load.
func (p Policy) Location() *time.Location {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func parseTimeOfDay(s string) (hour, minute int) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0
	}
	return t.Hour(), t.Minute()
}

// ShiftStartOn returns the absolute shift start instant for the given
// attendance date (a tenant-local midnight).
func (p Policy) ShiftStartOn(date time.Time, loc *time.Location) time.Time {
	h, m := parseTimeOfDay(p.ShiftStart)
	return time.Date(date.Year(), date.Month(), date.Day(), h, m, 0, 0, loc)
}

// ShiftEndOn returns the absolute shift end instant for the given attendance
// date. For overnight shifts the end falls on the next calendar day.
func (p Policy) ShiftEndOn(date time.Time, loc *time.Location) time.Time {
	h, m := parseTimeOfDay(p.ShiftEnd)
	end := time.Date(date.Year(), date.Month(), date.Day(), h, m, 0, 0, loc)
	if p.IsOvernight() {
		end = end.AddDate(0, 0, 1)
	}
	return end
}

// IsOvernight reports whether the shift crosses midnight.
func (p Policy) IsOvernight() bool {
	sh, sm := parseTimeOfDay(p.ShiftStart)
	eh, em := parseTimeOfDay(p.ShiftEnd)
	return eh*60+em <= sh*60+sm
}

// ShiftDuration is the scheduled length of one shift.
func (p Policy) ShiftDuration() time.Duration {
	sh, sm := parseTimeOfDay(p.ShiftStart)
	eh, em := parseTimeOfDay(p.ShiftEnd)
	minutes := (eh*60 + em) - (sh*60 + sm)
	if minutes <= 0 {
		minutes += 24 * 60
	}
	return time.Duration(minutes) * time.Minute
}

// AutoPunchOutDeadlineOn is the instant after which an open record for the
// given attendance date becomes eligible for automatic closure.
func (p Policy) AutoPunchOutDeadlineOn(date time.Time, loc *time.Location) time.Time {
	return p.ShiftEndOn(date, loc).Add(time.Duration(p.AutoPunchOutBufferMin) * time.Minute)
}
