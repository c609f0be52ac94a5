package domain

import (
	"math"
	"time"
)

// WorkSummary holds the derived check-out arithmetic. Conventions: worked and
// early-leave minutes round up, overtime rounds down, total hours keep two
// decimals.
type WorkSummary struct {
	ActualWorkMinutes int
	NetWorkMinutes    int
	TotalHours        float64
	IsEarlyLeave      bool
	EarlyLeaveMinutes int
	HasOvertime       bool
	OvertimeMinutes   int
}

func SummarizeWork(checkIn, checkOut, scheduledEnd time.Time, breakMinutes int) WorkSummary {
	if breakMinutes < 0 {
		breakMinutes = 0
	}
	actual := int(math.Ceil(checkOut.Sub(checkIn).Minutes()))
	if actual < 0 {
		actual = 0
	}
	net := actual - breakMinutes
	if net < 0 {
		net = 0
	}
	summary := WorkSummary{
		ActualWorkMinutes: actual,
		NetWorkMinutes:    net,
		TotalHours:        math.Round(float64(net)/60*100) / 100,
	}
	if checkOut.Before(scheduledEnd) {
		summary.IsEarlyLeave = true
		summary.EarlyLeaveMinutes = int(math.Ceil(scheduledEnd.Sub(checkOut).Minutes()))
	}
	if checkOut.After(scheduledEnd) {
		summary.HasOvertime = true
		summary.OvertimeMinutes = int(math.Floor(checkOut.Sub(scheduledEnd).Minutes()))
	}
	return summary
}

// Lateness reports whether now is past the scheduled start and by how many
// whole minutes, rounded up. Lateness is recorded, never rejected.
func Lateness(scheduledStart, now time.Time) (bool, int) {
	if !now.After(scheduledStart) {
		return false, 0
	}
	return true, int(math.Ceil(now.Sub(scheduledStart).Minutes()))
}
