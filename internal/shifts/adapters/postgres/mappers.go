package postgres

import "github.com/guardpoint/workforce/internal/shifts/domain"

func toDomainShift(m shiftModel) domain.Shift {
	return domain.Shift{
		ID:                   m.ShiftID,
		SiteName:             m.SiteName,
		Latitude:             m.Latitude,
		Longitude:            m.Longitude,
		ScheduledStart:       m.ScheduledStart,
		ScheduledEnd:         m.ScheduledEnd,
		BreakMinutes:         m.BreakMinutes,
		RequiredGuardsCount:  m.RequiredGuardsCount,
		ConfirmedGuardsCount: m.ConfirmedGuardsCount,
		CheckedInGuardsCount: m.CheckedInGuardsCount,
		Status:               domain.ShiftStatus(m.Status),
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

func toDomainAssignment(m shiftAssignmentModel) domain.ShiftAssignment {
	return domain.ShiftAssignment{
		ID:            m.AssignmentID,
		ShiftID:       m.ShiftID,
		GuardID:       m.GuardID,
		Status:        domain.AssignmentStatus(m.Status),
		ConfirmedAt:   m.ConfirmedAt,
		CheckedInAt:   m.CheckedInAt,
		CheckedOutAt:  m.CheckedOutAt,
		WorkedMinutes: m.WorkedMinutes,
		CancelReason:  m.CancelReason,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
