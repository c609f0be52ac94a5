package domain

import (
	"testing"
	"time"
)

func TestSummarizeWorkWithOvertime(t *testing.T) {
	t.Parallel()

	checkIn := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 3, 2, 17, 30, 0, 0, time.UTC)
	scheduledEnd := time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC)

	sum := SummarizeWork(checkIn, checkOut, scheduledEnd, 60)
	if sum.ActualWorkMinutes != 570 {
		t.Fatalf("actual minutes = %d, want 570", sum.ActualWorkMinutes)
	}
	if sum.NetWorkMinutes != 510 {
		t.Fatalf("net minutes = %d, want 510", sum.NetWorkMinutes)
	}
	if sum.TotalHours != 8.5 {
		t.Fatalf("total hours = %v, want 8.5", sum.TotalHours)
	}
	if sum.IsEarlyLeave {
		t.Fatalf("unexpected early leave")
	}
	if !sum.HasOvertime || sum.OvertimeMinutes != 30 {
		t.Fatalf("overtime = %v/%d, want true/30", sum.HasOvertime, sum.OvertimeMinutes)
	}
}

func TestSummarizeWorkEarlyLeaveRoundsUp(t *testing.T) {
	t.Parallel()

	checkIn := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 3, 2, 16, 45, 30, 0, time.UTC)
	scheduledEnd := time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC)

	sum := SummarizeWork(checkIn, checkOut, scheduledEnd, 0)
	if !sum.IsEarlyLeave {
		t.Fatalf("expected early leave")
	}
	// 14m30s remaining rounds up to 15.
	if sum.EarlyLeaveMinutes != 15 {
		t.Fatalf("early leave minutes = %d, want 15", sum.EarlyLeaveMinutes)
	}
	if sum.HasOvertime {
		t.Fatalf("unexpected overtime")
	}
}

func TestSummarizeWorkOvertimeRoundsDown(t *testing.T) {
	t.Parallel()

	checkIn := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	scheduledEnd := time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC)
	checkOut := scheduledEnd.Add(30*time.Minute + 45*time.Second)

	sum := SummarizeWork(checkIn, checkOut, scheduledEnd, 0)
	if !sum.HasOvertime || sum.OvertimeMinutes != 30 {
		t.Fatalf("overtime = %v/%d, want true/30", sum.HasOvertime, sum.OvertimeMinutes)
	}
}

func TestSummarizeWorkClampsNegativeNet(t *testing.T) {
	t.Parallel()

	checkIn := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	checkOut := checkIn.Add(20 * time.Minute)

	sum := SummarizeWork(checkIn, checkOut, checkIn.Add(8*time.Hour), 60)
	if sum.NetWorkMinutes != 0 {
		t.Fatalf("net minutes = %d, want 0", sum.NetWorkMinutes)
	}
	if sum.TotalHours != 0 {
		t.Fatalf("total hours = %v, want 0", sum.TotalHours)
	}
}

func TestLateness(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	if late, minutes := Lateness(start, start); late || minutes != 0 {
		t.Fatalf("on-time arrival reported late %v/%d", late, minutes)
	}
	if late, minutes := Lateness(start, start.Add(30*time.Second)); !late || minutes != 1 {
		t.Fatalf("partial minute = %v/%d, want true/1", late, minutes)
	}
	if late, minutes := Lateness(start, start.Add(12*time.Minute)); !late || minutes != 12 {
		t.Fatalf("lateness = %v/%d, want true/12", late, minutes)
	}
}
