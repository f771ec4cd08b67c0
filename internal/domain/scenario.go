package domain

import "time"

// Scenario classifies a ticket's billing configuration. The three flags
// come straight from the backend's FEE_TYPE, FEE_MULTI_DAY and
// FEE_STARTS_TYPE fields; the 8 combinations each map to one fixed
// exit-time policy.
type Scenario struct {
	// Hourly bills per started hour; otherwise per started day.
	Hourly bool
	// MultiDay allows a validity window spanning several days.
	MultiDay bool
	// FromMidnight anchors the window end to 23:59:59 instead of the
	// entry's clock time.
	FromMidnight bool
}

// ClassifyFlags builds a Scenario from the backend's integer flags.
// Anything non-zero counts as set, matching how the backend emits them.
func ClassifyFlags(feeType, feeMultiDay, feeStartsType int) Scenario {
	return Scenario{
		Hourly:       feeType != 0,
		MultiDay:     feeMultiDay != 0,
		FromMidnight: feeStartsType != 0,
	}
}

// ExitSelection carries the user-chosen parts of an exit time. Days is
// the number of days past the entry day, Minutes the parking duration in
// minutes. Scenarios that need no user input ignore it.
type ExitSelection struct {
	Days    int
	Minutes int
}

// DateEditable reports whether the user may pick the exit date.
func (s Scenario) DateEditable() bool {
	return s.MultiDay
}

// TimeEditable reports whether the user may pick the exit clock time.
func (s Scenario) TimeEditable() bool {
	return s.Hourly
}

// NeedsSelection reports whether the scenario has no fixed default exit
// time and requires user input.
func (s Scenario) NeedsSelection() bool {
	return s.Hourly || s.MultiDay
}

// DefaultExit returns the fixed exit time for scenarios that have one.
// ok is false for scenarios that require an explicit ExitSelection.
func (s Scenario) DefaultExit(entry time.Time) (exit time.Time, ok bool) {
	if s.NeedsSelection() {
		return time.Time{}, false
	}
	if s.FromMidnight {
		return endOfDay(entry), true
	}
	return entry.AddDate(0, 0, 1), true
}

// ExitTime computes the target exit time for the full policy table,
// consuming the user selection where the scenario calls for one.
func (s Scenario) ExitTime(entry time.Time, sel ExitSelection) (time.Time, error) {
	if sel.Days < 0 || sel.Minutes < 0 {
		return time.Time{}, ErrSelectionRequired
	}

	switch {
	case !s.Hourly && !s.MultiDay:
		exit, _ := s.DefaultExit(entry)
		return exit, nil

	case !s.Hourly && s.MultiDay:
		if sel.Days == 0 {
			return time.Time{}, ErrSelectionRequired
		}
		exit := entry.AddDate(0, 0, sel.Days)
		if s.FromMidnight {
			exit = endOfDay(exit)
		}
		return exit, nil

	case s.Hourly && !s.MultiDay:
		if sel.Minutes == 0 {
			return time.Time{}, ErrSelectionRequired
		}
		exit := entry.Add(time.Duration(sel.Minutes) * time.Minute)
		if eod := endOfDay(entry); exit.After(eod) {
			exit = eod
		}
		return exit, nil

	default: // hourly, multi-day
		if sel.Days == 0 && sel.Minutes == 0 {
			return time.Time{}, ErrSelectionRequired
		}
		exit := entry.AddDate(0, 0, sel.Days)
		exit = exit.Add(time.Duration(sel.Minutes) * time.Minute)
		return exit, nil
	}
}

func endOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 23, 59, 59, 0, t.Location())
}
