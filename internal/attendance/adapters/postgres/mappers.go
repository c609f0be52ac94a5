package postgres

import "github.com/guardpoint/workforce/internal/attendance/domain"

func toDomainAttendance(m attendanceModel) domain.AttendanceRecord {
	return domain.AttendanceRecord{
		ID:                m.AttendanceID,
		GuardID:           m.GuardID,
		ShiftAssignmentID: m.ShiftAssignmentID,
		ShiftID:           m.ShiftID,
		Status:            domain.AttendanceStatus(m.Status),

		CheckInTime:           m.CheckInTime,
		CheckInLatitude:       m.CheckInLatitude,
		CheckInLongitude:      m.CheckInLongitude,
		CheckInAccuracy:       m.CheckInAccuracy,
		CheckInDistanceMeters: m.CheckInDistanceMeters,
		CheckInFaceScore:      m.CheckInFaceScore,
		CheckInImageURL:       m.CheckInImageURL,
		IsLate:                m.IsLate,
		LateMinutes:           m.LateMinutes,

		CheckOutTime:           m.CheckOutTime,
		CheckOutLatitude:       m.CheckOutLatitude,
		CheckOutLongitude:      m.CheckOutLongitude,
		CheckOutAccuracy:       m.CheckOutAccuracy,
		CheckOutDistanceMeters: m.CheckOutDistanceMeters,
		CheckOutFaceScore:      m.CheckOutFaceScore,
		CheckOutImageURL:       m.CheckOutImageURL,

		ActualWorkDurationMinutes: m.ActualWorkDurationMinutes,
		BreakDurationMinutes:      m.BreakDurationMinutes,
		NetWorkMinutes:            m.NetWorkMinutes,
		TotalHours:                m.TotalHours,
		IsEarlyLeave:              m.IsEarlyLeave,
		EarlyLeaveMinutes:         m.EarlyLeaveMinutes,
		HasOvertime:               m.HasOvertime,
		OvertimeMinutes:           m.OvertimeMinutes,

		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		DeletedAt: m.DeletedAt,
	}
}

func toDomainBiometricLog(m biometricLogModel) domain.BiometricLog {
	return domain.BiometricLog{
		ID:                        m.BiometricLogID,
		GuardID:                   m.GuardID,
		EventType:                 domain.BiometricEventType(m.EventType),
		RegisteredFaceTemplateURL: m.RegisteredFaceTemplateURL,
		FaceQualityScore:          m.FaceQualityScore,
		VerificationStatus:        domain.VerificationStatus(m.VerificationStatus),
		IsVerified:                m.IsVerified,
		CreatedAt:                 m.CreatedAt,
		UpdatedAt:                 m.UpdatedAt,
	}
}
