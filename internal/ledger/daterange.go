package ledger

import (
	"time"

	"github.com/andresuchdata/uniform-ledger/backend-go/internal/domain"
)

// DateLayout is the calendar-date format accepted by report calls.
const DateLayout = "2006-01-02"

// DateRange is an inclusive range of whole local days. The zero value matches
// everything.
type DateRange struct {
	Start time.Time
	End   time.Time
	set   bool
}

// DayRange normalizes start to 00:00:00.000 and end to 23:59:59.999 in loc.
func DayRange(start, end time.Time, loc *time.Location) DateRange {
	if loc == nil {
		loc = time.Local
	}
	s := start.In(loc)
	e := end.In(loc)
	return DateRange{
		Start: time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, loc),
		End:   time.Date(e.Year(), e.Month(), e.Day(), 23, 59, 59, int(999*time.Millisecond), loc),
		set:   true,
	}
}

// ParseDateRange parses two YYYY-MM-DD dates. If either is blank the range is
// unbounded, but a present value must still be well formed. Malformed dates
// and start after end are validation errors.
func ParseDateRange(start, end string, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.Local
	}

	s, err := parseDay(start, loc)
	if err != nil {
		return DateRange{}, domain.NewValidationError("start_date", "expected YYYY-MM-DD")
	}
	e, err := parseDay(end, loc)
	if err != nil {
		return DateRange{}, domain.NewValidationError("end_date", "expected YYYY-MM-DD")
	}
	if s.IsZero() || e.IsZero() {
		return DateRange{}, nil
	}
	if s.After(e) {
		return DateRange{}, domain.NewValidationError("end_date", "must not be before start_date")
	}

	return DayRange(s, e, loc), nil
}

// parseDay returns the zero time for a blank value.
func parseDay(raw string, loc *time.Location) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(DateLayout, raw, loc)
}

// Bounded reports whether the range filters anything.
func (r DateRange) Bounded() bool {
	return r.set
}

// Contains reports whether t falls inside the inclusive range.
func (r DateRange) Contains(t time.Time) bool {
	if !r.set {
		return true
	}
	return !t.Before(r.Start) && !t.After(r.End)
}

// FilterByDate keeps the records whose timestamp, read through field, is in r.
func FilterByDate[T any](records []T, field func(T) time.Time, r DateRange) []T {
	if !r.Bounded() {
		return records
	}

	out := make([]T, 0, len(records))
	for _, rec := range records {
		if r.Contains(field(rec)) {
			out = append(out, rec)
		}
	}
	return out
}
