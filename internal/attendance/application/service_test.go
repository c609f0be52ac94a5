package application

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/guardpoint/workforce/internal/attendance/domain"
	"github.com/guardpoint/workforce/internal/attendance/ports"
	"github.com/guardpoint/workforce/internal/eventbus"
)

const (
	siteLatitude  = 10.762622
	siteLongitude = 106.660172
)

type fakeRecords struct {
	byAssignment map[uuid.UUID]*domain.AttendanceRecord
	events       []eventbus.OutboxEvent

	checkInCalls  int
	checkOutCalls int
	softDeletes   int

	forceCheckOutConflict bool
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{byAssignment: make(map[uuid.UUID]*domain.AttendanceRecord)}
}

func (f *fakeRecords) GetByAssignment(_ context.Context, guardID, shiftAssignmentID, shiftID uuid.UUID) (domain.AttendanceRecord, error) {
	rec, ok := f.byAssignment[shiftAssignmentID]
	if !ok || rec.GuardID != guardID || rec.ShiftID != shiftID {
		return domain.AttendanceRecord{}, domain.ErrNotFound
	}
	return *rec, nil
}

func (f *fakeRecords) GetByID(_ context.Context, id uuid.UUID) (domain.AttendanceRecord, error) {
	for _, rec := range f.byAssignment {
		if rec.ID == id {
			return *rec, nil
		}
	}
	return domain.AttendanceRecord{}, domain.ErrNotFound
}

func (f *fakeRecords) ApplyCheckIn(_ context.Context, params ports.CheckInRecordParams, event eventbus.OutboxEvent) (domain.AttendanceRecord, error) {
	f.checkInCalls++
	rec := &domain.AttendanceRecord{
		ID:                    uuid.New(),
		GuardID:               params.GuardID,
		ShiftAssignmentID:     params.ShiftAssignmentID,
		ShiftID:               params.ShiftID,
		Status:                domain.StatusCheckedIn,
		CheckInTime:           &params.CheckInTime,
		CheckInLatitude:       &params.Latitude,
		CheckInLongitude:      &params.Longitude,
		CheckInDistanceMeters: &params.DistanceMeters,
		CheckInFaceScore:      &params.FaceScore,
		CheckInImageURL:       params.ImageURL,
		IsLate:                params.IsLate,
		LateMinutes:           params.LateMinutes,
		BreakDurationMinutes:  params.BreakMinutes,
	}
	f.byAssignment[params.ShiftAssignmentID] = rec
	f.events = append(f.events, event)
	return *rec, nil
}

func (f *fakeRecords) ApplyCheckOut(_ context.Context, params ports.CheckOutRecordParams, event eventbus.OutboxEvent) (domain.AttendanceRecord, error) {
	f.checkOutCalls++
	if f.forceCheckOutConflict {
		return domain.AttendanceRecord{}, domain.ErrStateConflict
	}
	for _, rec := range f.byAssignment {
		if rec.ID != params.RecordID {
			continue
		}
		if rec.Status != domain.StatusCheckedIn {
			return domain.AttendanceRecord{}, domain.ErrStateConflict
		}
		rec.Status = domain.StatusCheckedOut
		rec.CheckOutTime = &params.CheckOutTime
		rec.CheckOutDistanceMeters = &params.DistanceMeters
		rec.CheckOutFaceScore = &params.FaceScore
		rec.CheckOutImageURL = params.ImageURL
		rec.ActualWorkDurationMinutes = params.Summary.ActualWorkMinutes
		rec.NetWorkMinutes = params.Summary.NetWorkMinutes
		rec.TotalHours = params.Summary.TotalHours
		rec.IsEarlyLeave = params.Summary.IsEarlyLeave
		rec.EarlyLeaveMinutes = params.Summary.EarlyLeaveMinutes
		rec.HasOvertime = params.Summary.HasOvertime
		rec.OvertimeMinutes = params.Summary.OvertimeMinutes
		f.events = append(f.events, event)
		return *rec, nil
	}
	return domain.AttendanceRecord{}, domain.ErrNotFound
}

func (f *fakeRecords) MarkIncomplete(_ context.Context, id uuid.UUID, at time.Time) (domain.AttendanceRecord, error) {
	for _, rec := range f.byAssignment {
		if rec.ID != id {
			continue
		}
		if rec.Status != domain.StatusCheckedIn {
			return domain.AttendanceRecord{}, domain.ErrStateConflict
		}
		rec.Status = domain.StatusIncomplete
		rec.UpdatedAt = at
		return *rec, nil
	}
	return domain.AttendanceRecord{}, domain.ErrNotFound
}

func (f *fakeRecords) SoftDeletePendingByAssignment(_ context.Context, shiftAssignmentID uuid.UUID, at time.Time) (bool, error) {
	f.softDeletes++
	rec, ok := f.byAssignment[shiftAssignmentID]
	if !ok || rec.Status != domain.StatusPending {
		return false, nil
	}
	rec.DeletedAt = &at
	return true, nil
}

type fakeBiometrics struct {
	templateURL   string
	verifications []ports.VerificationLogParams
	upserts       int
}

func (f *fakeBiometrics) GetVerifiedRegistration(_ context.Context, guardID uuid.UUID) (domain.BiometricLog, error) {
	if f.templateURL == "" {
		return domain.BiometricLog{}, domain.ErrNotFound
	}
	return domain.BiometricLog{
		GuardID:                   guardID,
		EventType:                 domain.BiometricEventRegistration,
		RegisteredFaceTemplateURL: f.templateURL,
		IsVerified:                true,
	}, nil
}

func (f *fakeBiometrics) UpsertRegistration(_ context.Context, params ports.RegistrationParams) (domain.BiometricLog, error) {
	f.upserts++
	f.templateURL = params.TemplateURL
	return domain.BiometricLog{
		GuardID:                   params.GuardID,
		EventType:                 domain.BiometricEventRegistration,
		RegisteredFaceTemplateURL: params.TemplateURL,
		FaceQualityScore:          params.FaceQualityScore,
		IsVerified:                true,
	}, nil
}

func (f *fakeBiometrics) AppendVerification(_ context.Context, params ports.VerificationLogParams) error {
	f.verifications = append(f.verifications, params)
	return nil
}

type fakeGateway struct {
	verifyResult ports.VerifyFaceResult
	verifyErr    error
	verifyCalls  int

	registerResult ports.EnrollResult
	registerErr    error
}

func (f *fakeGateway) Verify(_ context.Context, _ ports.VerifyFaceRequest) (ports.VerifyFaceResult, error) {
	f.verifyCalls++
	return f.verifyResult, f.verifyErr
}

func (f *fakeGateway) Register(_ context.Context, _ uuid.UUID, _ []ports.EnrollImage) (ports.EnrollResult, error) {
	return f.registerResult, f.registerErr
}

type fakeStorage struct {
	err     error
	uploads int
}

func (f *fakeStorage) UploadImage(_ context.Context, key, _ string, _ []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.uploads++
	return "https://cdn.test/" + key, nil
}

type fakeShifts struct {
	location ports.ShiftLocation
	err      error
}

func (f *fakeShifts) GetShiftLocation(_ context.Context, _ uuid.UUID) (ports.ShiftLocation, error) {
	return f.location, f.err
}

type fakeDedup struct {
	seen map[string]bool
}

func newFakeDedup() *fakeDedup { return &fakeDedup{seen: make(map[string]bool)} }

func (f *fakeDedup) IsDuplicate(_ context.Context, eventID string, _ time.Time) (bool, error) {
	return f.seen[eventID], nil
}

func (f *fakeDedup) MarkProcessed(_ context.Context, eventID, _ string, _ time.Time) error {
	f.seen[eventID] = true
	return nil
}

type fixture struct {
	service    *Service
	records    *fakeRecords
	biometrics *fakeBiometrics
	gateway    *fakeGateway
	storage    *fakeStorage
	shifts     *fakeShifts
	dedup      *fakeDedup
	now        *time.Time
}

func newFixture() *fixture {
	now := time.Date(2026, 3, 2, 8, 10, 0, 0, time.UTC)
	f := &fixture{
		records:    newFakeRecords(),
		biometrics: &fakeBiometrics{templateURL: "https://cdn.test/templates/guard.bin"},
		gateway: &fakeGateway{verifyResult: ports.VerifyFaceResult{
			IsMatch:      true,
			Confidence:   0.93,
			FaceDetected: true,
			FaceQuality:  82,
		}},
		storage: &fakeStorage{},
		shifts: &fakeShifts{location: ports.ShiftLocation{
			Latitude:       siteLatitude,
			Longitude:      siteLongitude,
			ScheduledStart: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
			ScheduledEnd:   time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC),
			BreakMinutes:   60,
		}},
		dedup: newFakeDedup(),
		now:   &now,
	}
	f.service = NewService(Dependencies{
		Records:    f.records,
		Biometrics: f.biometrics,
		EventDedup: f.dedup,
		Gateway:    f.gateway,
		Storage:    f.storage,
		Shifts:     f.shifts,
		Now:        func() time.Time { return *f.now },
	})
	return f
}

func validCommand() CheckInCommand {
	return CheckInCommand{
		GuardID:           uuid.New(),
		ShiftAssignmentID: uuid.New(),
		ShiftID:           uuid.New(),
		Latitude:          siteLatitude,
		Longitude:         siteLongitude,
		Image:             []byte("probe image bytes"),
		ImageContentType:  "image/jpeg",
	}
}

func TestCheckInHappyPath(t *testing.T) {
	t.Parallel()

	f := newFixture()
	cmd := validCommand()

	out, err := f.service.CheckIn(context.Background(), cmd)
	if err != nil {
		t.Fatalf("check-in failed: %v", err)
	}
	if !out.Accepted {
		t.Fatalf("check-in rejected: %s %s", out.Code, out.Message)
	}
	if out.Record == nil || out.Record.Status != string(domain.StatusCheckedIn) {
		t.Fatalf("record = %+v, want CHECKED_IN", out.Record)
	}
	if !out.Record.IsLate || out.Record.LateMinutes != 10 {
		t.Fatalf("lateness = %v/%d, want true/10", out.Record.IsLate, out.Record.LateMinutes)
	}
	if out.Record.CheckInImageURL == "" {
		t.Fatalf("evidence URL not recorded")
	}

	if f.records.checkInCalls != 1 {
		t.Fatalf("check-in applied %d times", f.records.checkInCalls)
	}
	if len(f.records.events) != 1 {
		t.Fatalf("%d outbox events, want 1", len(f.records.events))
	}
	event := f.records.events[0]
	if event.EventType != eventbus.EventCheckedIn {
		t.Fatalf("event type = %s", event.EventType)
	}
	if event.PartitionKey != cmd.ShiftAssignmentID.String() {
		t.Fatalf("partition key = %s, want assignment id", event.PartitionKey)
	}

	env, err := eventbus.DecodeEnvelope(event.Payload)
	if err != nil {
		t.Fatalf("event payload is not a valid envelope: %v", err)
	}
	var data struct {
		GuardID     string `json:"guard_id"`
		IsLate      bool   `json:"is_late"`
		LateMinutes int    `json:"late_minutes"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode event data: %v", err)
	}
	if data.GuardID != cmd.GuardID.String() {
		t.Fatalf("event guard_id = %s, want %s", data.GuardID, cmd.GuardID)
	}
	if !data.IsLate || data.LateMinutes != 10 {
		t.Fatalf("event lateness = %v/%d, want true/10", data.IsLate, data.LateMinutes)
	}
}

func TestCheckInDuplicateRejected(t *testing.T) {
	t.Parallel()

	f := newFixture()
	cmd := validCommand()

	if out, err := f.service.CheckIn(context.Background(), cmd); err != nil || !out.Accepted {
		t.Fatalf("first check-in failed: %v %+v", err, out)
	}
	out, err := f.service.CheckIn(context.Background(), cmd)
	if err != nil {
		t.Fatalf("second check-in errored: %v", err)
	}
	if out.Accepted || out.Code != RejectDuplicateCheckIn {
		t.Fatalf("outcome = %+v, want %s", out, RejectDuplicateCheckIn)
	}
	if f.records.checkInCalls != 1 || len(f.records.events) != 1 {
		t.Fatalf("duplicate wrote: %d calls, %d events", f.records.checkInCalls, len(f.records.events))
	}
	// The duplicate is caught before any biometric work.
	if f.gateway.verifyCalls != 1 {
		t.Fatalf("gateway called %d times, want 1", f.gateway.verifyCalls)
	}
}

func TestCheckInFailsClosedWhenGatewayDown(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.gateway.verifyErr = errors.New("dial tcp: connection refused")

	out, err := f.service.CheckIn(context.Background(), validCommand())
	if err != nil {
		t.Fatalf("check-in errored: %v", err)
	}
	if out.Accepted || out.Code != RejectVerificationUnavail {
		t.Fatalf("outcome = %+v, want %s", out, RejectVerificationUnavail)
	}
	if f.records.checkInCalls != 0 || len(f.records.events) != 0 || f.storage.uploads != 0 {
		t.Fatalf("gateway outage still wrote state")
	}
}

func TestCheckInWithoutEnrollment(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.biometrics.templateURL = ""

	out, err := f.service.CheckIn(context.Background(), validCommand())
	if err != nil {
		t.Fatalf("check-in errored: %v", err)
	}
	if out.Code != RejectNoBiometricTemplate {
		t.Fatalf("code = %s, want %s", out.Code, RejectNoBiometricTemplate)
	}
	if f.gateway.verifyCalls != 0 {
		t.Fatalf("gateway called without an enrolled template")
	}
}

func TestCheckInLowMatchConfidence(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.gateway.verifyResult.Confidence = 0.42

	out, err := f.service.CheckIn(context.Background(), validCommand())
	if err != nil {
		t.Fatalf("check-in errored: %v", err)
	}
	if out.Code != RejectLowMatchConfidence {
		t.Fatalf("code = %s, want %s", out.Code, RejectLowMatchConfidence)
	}
	if out.FaceMatchScore == nil || *out.FaceMatchScore != 0.42 {
		t.Fatalf("face match score signal missing: %+v", out.FaceMatchScore)
	}
	if len(f.biometrics.verifications) != 1 || f.biometrics.verifications[0].Passed {
		t.Fatalf("failed verification not logged: %+v", f.biometrics.verifications)
	}
}

func TestCheckInOutsideGeofence(t *testing.T) {
	t.Parallel()

	f := newFixture()
	cmd := validCommand()
	// Roughly 1.1km north of the site.
	cmd.Latitude = siteLatitude + 0.01

	out, err := f.service.CheckIn(context.Background(), cmd)
	if err != nil {
		t.Fatalf("check-in errored: %v", err)
	}
	if out.Code != RejectOutsideGeofence {
		t.Fatalf("code = %s, want %s", out.Code, RejectOutsideGeofence)
	}
	if out.FaceMatchScore == nil || out.DistanceFromSite == nil {
		t.Fatalf("geofence rejection dropped its signals: %+v", out)
	}
	if *out.DistanceFromSite <= 500 {
		t.Fatalf("distance = %.0fm, expected beyond the 500m fence", *out.DistanceFromSite)
	}
	if f.records.checkInCalls != 0 || len(f.records.events) != 0 {
		t.Fatalf("geofence rejection wrote state")
	}
}

func TestCheckInLocationUnavailable(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.shifts.err = errors.New("shifts service timeout")

	out, err := f.service.CheckIn(context.Background(), validCommand())
	if err != nil {
		t.Fatalf("check-in errored: %v", err)
	}
	if out.Code != RejectLocationUnavailable {
		t.Fatalf("code = %s, want %s", out.Code, RejectLocationUnavailable)
	}

	f.shifts.err = nil
	f.shifts.location = ports.ShiftLocation{}
	out, err = f.service.CheckIn(context.Background(), validCommand())
	if err != nil {
		t.Fatalf("check-in errored: %v", err)
	}
	if out.Code != RejectLocationUnavailable {
		t.Fatalf("zeroed location accepted: %+v", out)
	}
}

func TestCheckOutWithoutCheckIn(t *testing.T) {
	t.Parallel()

	f := newFixture()

	out, err := f.service.CheckOut(context.Background(), validCommand())
	if err != nil {
		t.Fatalf("check-out errored: %v", err)
	}
	if out.Code != RejectNoCheckIn {
		t.Fatalf("code = %s, want %s", out.Code, RejectNoCheckIn)
	}
	if f.records.checkOutCalls != 0 || len(f.records.events) != 0 || f.gateway.verifyCalls != 0 {
		t.Fatalf("rejected check-out still did work")
	}
}

func TestCheckOutLifecycle(t *testing.T) {
	t.Parallel()

	f := newFixture()
	cmd := validCommand()

	if out, err := f.service.CheckIn(context.Background(), cmd); err != nil || !out.Accepted {
		t.Fatalf("check-in failed: %v %+v", err, out)
	}

	*f.now = time.Date(2026, 3, 2, 17, 30, 0, 0, time.UTC)
	out, err := f.service.CheckOut(context.Background(), cmd)
	if err != nil {
		t.Fatalf("check-out failed: %v", err)
	}
	if !out.Accepted {
		t.Fatalf("check-out rejected: %s %s", out.Code, out.Message)
	}
	rec := out.Record
	if rec.Status != string(domain.StatusCheckedOut) {
		t.Fatalf("status = %s, want CHECKED_OUT", rec.Status)
	}
	// 08:10 -> 17:30 is 560 minutes, minus the 60-minute break.
	if rec.ActualWorkDurationMinutes != 560 || rec.NetWorkMinutes != 500 {
		t.Fatalf("work minutes = %d/%d, want 560/500", rec.ActualWorkDurationMinutes, rec.NetWorkMinutes)
	}
	if rec.TotalHours != 8.33 {
		t.Fatalf("total hours = %v, want 8.33", rec.TotalHours)
	}
	if !rec.HasOvertime || rec.OvertimeMinutes != 30 {
		t.Fatalf("overtime = %v/%d, want true/30", rec.HasOvertime, rec.OvertimeMinutes)
	}
	if rec.IsEarlyLeave {
		t.Fatalf("unexpected early leave")
	}
	if len(f.records.events) != 2 {
		t.Fatalf("%d outbox events, want 2", len(f.records.events))
	}
	if f.records.events[1].EventType != eventbus.EventCheckedOut {
		t.Fatalf("second event type = %s", f.records.events[1].EventType)
	}

	out, err = f.service.CheckOut(context.Background(), cmd)
	if err != nil {
		t.Fatalf("repeat check-out errored: %v", err)
	}
	if out.Accepted || out.Code != RejectAlreadyCheckedOut {
		t.Fatalf("repeat outcome = %+v, want %s", out, RejectAlreadyCheckedOut)
	}
	if len(f.records.events) != 2 {
		t.Fatalf("repeat check-out enqueued another event")
	}
}

func TestCheckOutLosesConditionalUpdate(t *testing.T) {
	t.Parallel()

	f := newFixture()
	cmd := validCommand()
	if out, err := f.service.CheckIn(context.Background(), cmd); err != nil || !out.Accepted {
		t.Fatalf("check-in failed: %v %+v", err, out)
	}

	// Simulates a concurrent check-out winning between the status read and
	// the conditional update.
	f.records.forceCheckOutConflict = true
	out, err := f.service.CheckOut(context.Background(), cmd)
	if err != nil {
		t.Fatalf("check-out errored: %v", err)
	}
	if out.Accepted || out.Code != RejectAlreadyCheckedOut {
		t.Fatalf("outcome = %+v, want %s", out, RejectAlreadyCheckedOut)
	}
}

func TestRegisterFacesValidation(t *testing.T) {
	t.Parallel()

	f := newFixture()
	guardID := uuid.New()
	image := base64.StdEncoding.EncodeToString([]byte("pose bytes"))
	poses := []string{"front", "left", "right", "up", "down", "smile"}

	images := make([]PoseImage, 0, len(poses))
	for _, pose := range poses[:5] {
		images = append(images, PoseImage{ImageBase64: image, PoseType: pose})
	}
	if _, err := f.service.RegisterFaces(context.Background(), RegisterFacesCommand{GuardID: guardID, Images: images}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("five images accepted: %v", err)
	}

	images = append(images, PoseImage{ImageBase64: image, PoseType: "front"})
	if _, err := f.service.RegisterFaces(context.Background(), RegisterFacesCommand{GuardID: guardID, Images: images}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("duplicate pose accepted: %v", err)
	}
}

func TestRegisterFacesSuccess(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.gateway.registerResult = ports.EnrollResult{
		Success:        true,
		TemplateURL:    "https://cdn.test/templates/new.bin",
		AverageQuality: 88.5,
		QualityScores:  []float64{90, 87, 88, 89, 88, 89},
	}

	guardID := uuid.New()
	image := base64.StdEncoding.EncodeToString([]byte("pose bytes"))
	images := make([]PoseImage, 0, requiredPoseImages)
	for _, pose := range []string{"front", "left", "right", "up", "down", "smile"} {
		images = append(images, PoseImage{ImageBase64: image, PoseType: pose})
	}

	resp, err := f.service.RegisterFaces(context.Background(), RegisterFacesCommand{GuardID: guardID, Images: images})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if resp.TemplateURL != "https://cdn.test/templates/new.bin" || resp.AverageQuality != 88.5 {
		t.Fatalf("response = %+v", resp)
	}
	if f.biometrics.upserts != 1 {
		t.Fatalf("registration upserts = %d, want 1", f.biometrics.upserts)
	}
}

func TestRegisterFacesGatewayDown(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.gateway.registerErr = errors.New("dial tcp: connection refused")

	image := base64.StdEncoding.EncodeToString([]byte("pose bytes"))
	images := make([]PoseImage, 0, requiredPoseImages)
	for _, pose := range []string{"front", "left", "right", "up", "down", "smile"} {
		images = append(images, PoseImage{ImageBase64: image, PoseType: pose})
	}
	_, err := f.service.RegisterFaces(context.Background(), RegisterFacesCommand{GuardID: uuid.New(), Images: images})
	if !errors.Is(err, domain.ErrDependencyUnavailable) {
		t.Fatalf("err = %v, want ErrDependencyUnavailable", err)
	}
	if f.biometrics.upserts != 0 {
		t.Fatalf("enrollment persisted despite gateway outage")
	}
}

func TestEnrollThenFullShiftLifecycle(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.biometrics.templateURL = ""
	f.gateway.registerResult = ports.EnrollResult{
		Success:        true,
		TemplateURL:    "https://cdn.test/templates/lifecycle.bin",
		AverageQuality: 91,
	}

	cmd := validCommand()
	image := base64.StdEncoding.EncodeToString([]byte("pose bytes"))
	images := make([]PoseImage, 0, requiredPoseImages)
	for _, pose := range []string{"front", "left", "right", "up", "down", "smile"} {
		images = append(images, PoseImage{ImageBase64: image, PoseType: pose})
	}
	if _, err := f.service.RegisterFaces(context.Background(), RegisterFacesCommand{GuardID: cmd.GuardID, Images: images}); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	out, err := f.service.CheckIn(context.Background(), cmd)
	if err != nil || !out.Accepted {
		t.Fatalf("check-in after enrollment: %v %+v", err, out)
	}

	*f.now = f.now.Add(9 * time.Hour)
	out, err = f.service.CheckOut(context.Background(), cmd)
	if err != nil || !out.Accepted {
		t.Fatalf("check-out: %v %+v", err, out)
	}
	if out.Record.TotalHours <= 0 {
		t.Fatalf("computed totals missing: %+v", out.Record)
	}

	out, err = f.service.CheckOut(context.Background(), cmd)
	if err != nil {
		t.Fatalf("second check-out errored: %v", err)
	}
	if out.Accepted || out.Code != RejectAlreadyCheckedOut {
		t.Fatalf("second check-out outcome = %+v, want %s", out, RejectAlreadyCheckedOut)
	}
}

func TestHandleAssignmentCancelledIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newFixture()
	assignmentID := uuid.New()
	f.records.byAssignment[assignmentID] = &domain.AttendanceRecord{
		ID:                uuid.New(),
		GuardID:           uuid.New(),
		ShiftAssignmentID: assignmentID,
		ShiftID:           uuid.New(),
		Status:            domain.StatusPending,
	}

	_, payload, err := eventbus.NewEnvelope(eventbus.EventAssignmentCancelled, "shifts-service", assignmentID.String(), *f.now, map[string]string{
		"shift_assignment_id": assignmentID.String(),
		"shift_id":            uuid.NewString(),
		"guard_id":            uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("build envelope: %v", err)
	}

	if err := f.service.HandleAssignmentCancelled(context.Background(), payload); err != nil {
		t.Fatalf("first delivery failed: %v", err)
	}
	if f.records.byAssignment[assignmentID].DeletedAt == nil {
		t.Fatalf("pending record not soft-deleted")
	}
	if err := f.service.HandleAssignmentCancelled(context.Background(), payload); err != nil {
		t.Fatalf("redelivery failed: %v", err)
	}
	if f.records.softDeletes != 1 {
		t.Fatalf("soft delete ran %d times, want 1", f.records.softDeletes)
	}
}
