package domain

import (
	"fmt"
	"math"
	"time"
)

// Tariff holds the locally configured rates used when the backend did
// not report a fee for the requested window. Amounts are in minor
// currency units; UnitDivisor converts to major units for display (the
// backend's unit is configurable rather than assumed).
type Tariff struct {
	DailyRateMinor  int64
	HourlyRateMinor int64
	UnitDivisor     int64
	FreeMinutes     int
}

func (t Tariff) divisor() int64 {
	if t.UnitDivisor <= 0 {
		return 100
	}
	return t.UnitDivisor
}

// FormatAmount renders a minor-unit amount in major units, e.g. 800 -> "8.00"
// with the default divisor of 100.
func (t Tariff) FormatAmount(minor int64) string {
	div := t.divisor()
	return fmt.Sprintf("%d.%02d", minor/div, minor%div*100/div)
}

type FeeResult struct {
	AmountMinor  int64
	ValidTo      time.Time
	IsFreePeriod bool
}

// FeeInput gathers everything ComputeFee needs for one window. The
// backend amounts come from the (re)fetched ticket record; zero
// BackendFeeMinor means the backend reported no fee and the tariff
// computes one locally.
type FeeInput struct {
	Entry            time.Time
	Exit             time.Time
	BackendFeeMinor  int64
	BackendPaidMinor int64
	OverrideActive   bool
}

// ComputeFee derives the fee for a window. A backend-reported fee is
// authoritative: fee = reported - already paid. Otherwise daily mode
// charges each started day and hourly mode each started hour, with the
// configured free period forcing the fee to zero for short stays unless
// a scenario override is active.
func (t Tariff) ComputeFee(s Scenario, in FeeInput) FeeResult {
	if in.BackendFeeMinor > 0 {
		owed := in.BackendFeeMinor - in.BackendPaidMinor
		if owed < 0 {
			owed = 0
		}
		return FeeResult{AmountMinor: owed, ValidTo: in.Exit}
	}

	elapsed := in.Exit.Sub(in.Entry)
	if elapsed < 0 {
		elapsed = 0
	}

	if !in.OverrideActive && t.FreeMinutes > 0 && elapsed <= time.Duration(t.FreeMinutes)*time.Minute {
		return FeeResult{AmountMinor: 0, ValidTo: in.Exit, IsFreePeriod: true}
	}

	var owed int64
	if s.Hourly {
		hours := int64(math.Ceil(elapsed.Minutes() / 60))
		owed = hours * t.HourlyRateMinor
	} else {
		days := int64(math.Ceil(elapsed.Hours() / 24))
		owed = days * t.DailyRateMinor
	}

	return FeeResult{AmountMinor: owed, ValidTo: in.Exit}
}
