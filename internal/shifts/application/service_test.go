package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/guardpoint/workforce/internal/eventbus"
	"github.com/guardpoint/workforce/internal/shifts/domain"
	"github.com/guardpoint/workforce/internal/shifts/ports"
)

type fakeShiftRepo struct {
	shifts map[uuid.UUID]domain.Shift
	err    error
}

func (f *fakeShiftRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Shift, error) {
	if f.err != nil {
		return domain.Shift{}, f.err
	}
	shift, ok := f.shifts[id]
	if !ok {
		return domain.Shift{}, domain.ErrNotFound
	}
	return shift, nil
}

type seededAssignment struct {
	assignment domain.ShiftAssignment
	shiftStart time.Time
	shiftEnd   time.Time
}

type fakeAssignments struct {
	items  map[uuid.UUID]*seededAssignment
	events []eventbus.OutboxEvent

	checkInCalls      int
	checkedInCounters map[uuid.UUID]int
	confirmedCounters map[uuid.UUID]int
}

func newFakeAssignments() *fakeAssignments {
	return &fakeAssignments{
		items:             make(map[uuid.UUID]*seededAssignment),
		checkedInCounters: make(map[uuid.UUID]int),
		confirmedCounters: make(map[uuid.UUID]int),
	}
}

func (f *fakeAssignments) GetByID(_ context.Context, id uuid.UUID) (domain.ShiftAssignment, error) {
	item, ok := f.items[id]
	if !ok {
		return domain.ShiftAssignment{}, domain.ErrNotFound
	}
	return item.assignment, nil
}

func (f *fakeAssignments) CancelLeaveOverlapping(_ context.Context, params ports.LeaveCancellationParams, eventFn ports.CancelEventFn) ([]domain.ShiftAssignment, error) {
	var cancelled []domain.ShiftAssignment
	for _, item := range f.items {
		a := &item.assignment
		if a.GuardID != params.GuardID {
			continue
		}
		if a.Status != domain.AssignmentAssigned && a.Status != domain.AssignmentConfirmed {
			continue
		}
		if !item.shiftStart.Before(params.To) || !item.shiftEnd.After(params.From) {
			continue
		}
		a.Status = domain.AssignmentCancelled
		a.CancelReason = params.Reason
		event, err := eventFn(*a)
		if err != nil {
			return nil, err
		}
		f.events = append(f.events, event)
		cancelled = append(cancelled, *a)
	}
	return cancelled, nil
}

func (f *fakeAssignments) ApplyCheckIn(_ context.Context, params ports.CheckInApplyParams) (bool, error) {
	f.checkInCalls++
	item, ok := f.items[params.AssignmentID]
	if !ok {
		return false, nil
	}
	a := &item.assignment
	if a.CheckedInAt != nil {
		return false, nil
	}
	a.Status = domain.AssignmentCheckedIn
	a.CheckedInAt = &params.CheckInTime
	f.checkedInCounters[params.ShiftID]++
	if a.ConfirmedAt == nil {
		a.ConfirmedAt = &params.ConfirmedAt
		f.confirmedCounters[params.ShiftID]++
	}
	return true, nil
}

func (f *fakeAssignments) ApplyCheckOut(_ context.Context, params ports.CheckOutApplyParams) (bool, error) {
	item, ok := f.items[params.AssignmentID]
	if !ok {
		return false, nil
	}
	a := &item.assignment
	if a.CheckedOutAt != nil {
		return false, nil
	}
	a.Status = domain.AssignmentCompleted
	a.CheckedOutAt = &params.CheckOutTime
	a.WorkedMinutes = params.WorkedMinutes
	return true, nil
}

type personnelCall struct {
	role   domain.UserRole
	userID uuid.UUID
	email  string
}

type fakePersonnel struct {
	upserts      []ports.UserRecordParams
	deactivations []personnelCall
	softDeletes  []uuid.UUID

	knownIDs    map[uuid.UUID]bool
	knownEmails map[string]bool
}

func newFakePersonnel() *fakePersonnel {
	return &fakePersonnel{knownIDs: make(map[uuid.UUID]bool), knownEmails: make(map[string]bool)}
}

func (f *fakePersonnel) Upsert(_ context.Context, params ports.UserRecordParams) error {
	f.upserts = append(f.upserts, params)
	f.knownIDs[params.UserID] = true
	f.knownEmails[params.Email] = true
	return nil
}

func (f *fakePersonnel) SoftDelete(_ context.Context, userID uuid.UUID, _ time.Time) (bool, error) {
	f.softDeletes = append(f.softDeletes, userID)
	return f.knownIDs[userID], nil
}

func (f *fakePersonnel) DeactivateByID(_ context.Context, role domain.UserRole, userID uuid.UUID, _ time.Time) (bool, error) {
	f.deactivations = append(f.deactivations, personnelCall{role: role, userID: userID})
	return f.knownIDs[userID], nil
}

func (f *fakePersonnel) DeactivateByEmail(_ context.Context, role domain.UserRole, email string, _ time.Time) (bool, error) {
	f.deactivations = append(f.deactivations, personnelCall{role: role, email: email})
	return f.knownEmails[email], nil
}

type fakeTemplates struct {
	imports map[uuid.UUID][]ports.TemplateImport
	err     error
}

func (f *fakeTemplates) ImportForContract(_ context.Context, contractID uuid.UUID, templates []ports.TemplateImport, _ time.Time) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	if f.imports == nil {
		f.imports = make(map[uuid.UUID][]ports.TemplateImport)
	}
	f.imports[contractID] = templates
	return len(templates), nil
}

type fakeSyncAudit struct {
	rows []ports.SyncAuditParams
}

func (f *fakeSyncAudit) Append(_ context.Context, params ports.SyncAuditParams) error {
	f.rows = append(f.rows, params)
	return nil
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
	service     *Service
	shifts      *fakeShiftRepo
	assignments *fakeAssignments
	personnel   *fakePersonnel
	templates   *fakeTemplates
	syncAudit   *fakeSyncAudit
	dedup       *fakeDedup
	now         time.Time
}

func newFixture() *fixture {
	f := &fixture{
		shifts:      &fakeShiftRepo{shifts: make(map[uuid.UUID]domain.Shift)},
		assignments: newFakeAssignments(),
		personnel:   newFakePersonnel(),
		templates:   &fakeTemplates{},
		syncAudit:   &fakeSyncAudit{},
		dedup:       newFakeDedup(),
		now:         time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
	}
	f.service = NewService(Dependencies{
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Shifts:      f.shifts,
		Assignments: f.assignments,
		Personnel:   f.personnel,
		Templates:   f.templates,
		SyncAudit:   f.syncAudit,
		EventDedup:  f.dedup,
		Now:         func() time.Time { return f.now },
	})
	return f
}

func envelopeFor(t *testing.T, eventType string, data any) []byte {
	t.Helper()
	_, payload, err := eventbus.NewEnvelope(eventType, "attendance-service", uuid.NewString(), time.Now().UTC(), data)
	if err != nil {
		t.Fatalf("build envelope: %v", err)
	}
	return payload
}

func TestGetShiftLocation(t *testing.T) {
	t.Parallel()

	f := newFixture()
	shiftID := uuid.New()
	f.shifts.shifts[shiftID] = domain.Shift{
		ID:             shiftID,
		Latitude:       10.762622,
		Longitude:      106.660172,
		ScheduledStart: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
		ScheduledEnd:   time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC),
		BreakMinutes:   60,
	}

	answer := f.service.GetShiftLocation(context.Background(), shiftID)
	if !answer.Success || answer.Location == nil {
		t.Fatalf("answer = %+v, want success with location", answer)
	}
	if answer.Location.Latitude != 10.762622 || answer.Location.BreakMinutes != 60 {
		t.Fatalf("location = %+v", answer.Location)
	}

	answer = f.service.GetShiftLocation(context.Background(), uuid.New())
	if answer.Success || answer.ErrorMessage != "shift not found" {
		t.Fatalf("missing shift answer = %+v", answer)
	}

	f.shifts.err = errors.New("connection reset")
	answer = f.service.GetShiftLocation(context.Background(), shiftID)
	if answer.Success || answer.ErrorMessage == "" {
		t.Fatalf("repo failure answer = %+v", answer)
	}
}

func TestHandleCheckedInAppliesOnce(t *testing.T) {
	t.Parallel()

	f := newFixture()
	assignmentID := uuid.New()
	shiftID := uuid.New()
	guardID := uuid.New()
	f.assignments.items[assignmentID] = &seededAssignment{
		assignment: domain.ShiftAssignment{
			ID:      assignmentID,
			ShiftID: shiftID,
			GuardID: guardID,
			Status:  domain.AssignmentAssigned,
		},
	}

	data := map[string]any{
		"guard_id":            guardID.String(),
		"shift_assignment_id": assignmentID.String(),
		"shift_id":            shiftID.String(),
		"check_in_time":       time.Date(2026, 3, 2, 8, 5, 0, 0, time.UTC),
	}
	payload := envelopeFor(t, eventbus.EventCheckedIn, data)

	if err := f.service.HandleCheckedIn(context.Background(), payload); err != nil {
		t.Fatalf("first delivery failed: %v", err)
	}
	a := f.assignments.items[assignmentID].assignment
	if a.Status != domain.AssignmentCheckedIn || a.CheckedInAt == nil {
		t.Fatalf("assignment = %+v, want CHECKED_IN", a)
	}
	// No confirmed_at in the event, so check-in time stands in for it.
	if a.ConfirmedAt == nil || !a.ConfirmedAt.Equal(*a.CheckedInAt) {
		t.Fatalf("confirmed_at = %v, want check-in time", a.ConfirmedAt)
	}
	if f.assignments.checkedInCounters[shiftID] != 1 || f.assignments.confirmedCounters[shiftID] != 1 {
		t.Fatalf("counters = %d/%d, want 1/1",
			f.assignments.checkedInCounters[shiftID], f.assignments.confirmedCounters[shiftID])
	}

	// Same event id again: dedup short-circuits before the repository.
	if err := f.service.HandleCheckedIn(context.Background(), payload); err != nil {
		t.Fatalf("redelivery failed: %v", err)
	}
	if f.assignments.checkInCalls != 1 {
		t.Fatalf("apply ran %d times, want 1", f.assignments.checkInCalls)
	}

	// A fresh event id for the same assignment: the conditional update
	// affects zero rows and the counters stay put.
	if err := f.service.HandleCheckedIn(context.Background(), envelopeFor(t, eventbus.EventCheckedIn, data)); err != nil {
		t.Fatalf("second event failed: %v", err)
	}
	if f.assignments.checkedInCounters[shiftID] != 1 {
		t.Fatalf("counter double-incremented: %d", f.assignments.checkedInCounters[shiftID])
	}
}

func TestHandleCheckedOutUsesEventMinutes(t *testing.T) {
	t.Parallel()

	f := newFixture()
	assignmentID := uuid.New()
	shiftID := uuid.New()
	checkedInAt := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	f.assignments.items[assignmentID] = &seededAssignment{
		assignment: domain.ShiftAssignment{
			ID:          assignmentID,
			ShiftID:     shiftID,
			GuardID:     uuid.New(),
			Status:      domain.AssignmentCheckedIn,
			CheckedInAt: &checkedInAt,
		},
	}

	payload := envelopeFor(t, eventbus.EventCheckedOut, map[string]any{
		"shift_assignment_id": assignmentID.String(),
		"shift_id":            shiftID.String(),
		"check_out_time":      time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC),
		"net_work_minutes":    480,
	})
	if err := f.service.HandleCheckedOut(context.Background(), payload); err != nil {
		t.Fatalf("handle checked out: %v", err)
	}
	a := f.assignments.items[assignmentID].assignment
	if a.Status != domain.AssignmentCompleted || a.WorkedMinutes != 480 {
		t.Fatalf("assignment = %+v, want COMPLETED with 480 minutes", a)
	}
}

func TestCancelLeaveFansOutEvents(t *testing.T) {
	t.Parallel()

	f := newFixture()
	guardID := uuid.New()
	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	seed := func(status domain.AssignmentStatus, start, end time.Time) uuid.UUID {
		id := uuid.New()
		f.assignments.items[id] = &seededAssignment{
			assignment: domain.ShiftAssignment{ID: id, ShiftID: uuid.New(), GuardID: guardID, Status: status},
			shiftStart: start,
			shiftEnd:   end,
		}
		return id
	}
	inWindow1 := seed(domain.AssignmentAssigned, day.Add(8*time.Hour), day.Add(17*time.Hour))
	inWindow2 := seed(domain.AssignmentConfirmed, day.Add(32*time.Hour), day.Add(41*time.Hour))
	seed(domain.AssignmentCheckedIn, day.Add(8*time.Hour), day.Add(17*time.Hour))
	seed(domain.AssignmentAssigned, day.Add(96*time.Hour), day.Add(105*time.Hour))

	resp, err := f.service.CancelLeave(context.Background(), CancelLeaveCommand{
		GuardID: guardID,
		From:    day,
		To:      day.Add(48 * time.Hour),
		Reason:  "approved annual leave",
	})
	if err != nil {
		t.Fatalf("cancel leave: %v", err)
	}
	if resp.CancelledCount != 2 || len(resp.CancelledAssignmentIDs) != 2 {
		t.Fatalf("response = %+v, want 2 cancellations", resp)
	}
	if len(f.assignments.events) != 2 {
		t.Fatalf("%d outbox events, want one per cancelled assignment", len(f.assignments.events))
	}

	wantIDs := map[string]bool{inWindow1.String(): true, inWindow2.String(): true}
	for _, event := range f.assignments.events {
		if event.EventType != eventbus.EventAssignmentCancelled {
			t.Fatalf("event type = %s", event.EventType)
		}
		env, err := eventbus.DecodeEnvelope(event.Payload)
		if err != nil {
			t.Fatalf("decode envelope: %v", err)
		}
		var data struct {
			ShiftAssignmentID string `json:"shift_assignment_id"`
			Reason            string `json:"reason"`
		}
		if err := json.Unmarshal(env.Data, &data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
		if !wantIDs[data.ShiftAssignmentID] {
			t.Fatalf("event for unexpected assignment %s", data.ShiftAssignmentID)
		}
		if data.Reason != "approved annual leave" {
			t.Fatalf("reason = %q", data.Reason)
		}
		delete(wantIDs, data.ShiftAssignmentID)
	}
}

func TestCancelLeaveValidation(t *testing.T) {
	t.Parallel()

	f := newFixture()
	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	cases := []CancelLeaveCommand{
		{From: day, To: day.Add(time.Hour)},
		{GuardID: uuid.New(), To: day},
		{GuardID: uuid.New(), From: day, To: day},
		{GuardID: uuid.New(), From: day.Add(time.Hour), To: day},
	}
	for i, cmd := range cases {
		if _, err := f.service.CancelLeave(context.Background(), cmd); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("case %d: err = %v, want ErrInvalidInput", i, err)
		}
	}
}

func TestHandleUserUpsertedAudits(t *testing.T) {
	t.Parallel()

	f := newFixture()
	userID := uuid.New()
	payload := envelopeFor(t, eventbus.EventUserCreated, map[string]any{
		"user_id":   userID.String(),
		"email":     "guard@example.com",
		"full_name": "Tran Van A",
		"role":      "GUARD",
	})

	if err := f.service.HandleUserUpserted(context.Background(), payload); err != nil {
		t.Fatalf("handle user upserted: %v", err)
	}
	if len(f.personnel.upserts) != 1 || f.personnel.upserts[0].Role != domain.RoleGuard {
		t.Fatalf("upserts = %+v", f.personnel.upserts)
	}
	if len(f.syncAudit.rows) != 1 || f.syncAudit.rows[0].Status != domain.SyncSuccess {
		t.Fatalf("audit rows = %+v, want one SUCCESS", f.syncAudit.rows)
	}

	// Redelivery is absorbed by dedup, no second upsert, no second audit row.
	if err := f.service.HandleUserUpserted(context.Background(), payload); err != nil {
		t.Fatalf("redelivery failed: %v", err)
	}
	if len(f.personnel.upserts) != 1 || len(f.syncAudit.rows) != 1 {
		t.Fatalf("redelivery wrote again: %d upserts, %d audits", len(f.personnel.upserts), len(f.syncAudit.rows))
	}
}

func TestDeactivateFallsBackToEmail(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.personnel.knownEmails["guard@example.com"] = true

	payload := envelopeFor(t, eventbus.EventDeactivateGuard, map[string]any{
		"email": "guard@example.com",
	})
	if err := f.service.HandleDeactivateGuard(context.Background(), payload); err != nil {
		t.Fatalf("deactivate by email: %v", err)
	}
	if len(f.personnel.deactivations) != 1 {
		t.Fatalf("deactivations = %+v", f.personnel.deactivations)
	}
	call := f.personnel.deactivations[0]
	if call.email != "guard@example.com" || call.userID != uuid.Nil || call.role != domain.RoleGuard {
		t.Fatalf("call = %+v, want email lookup", call)
	}
}

func TestDeactivatePrefersID(t *testing.T) {
	t.Parallel()

	f := newFixture()
	managerID := uuid.New()
	f.personnel.knownIDs[managerID] = true

	payload := envelopeFor(t, eventbus.EventDeactivateManager, map[string]any{
		"manager_id": managerID.String(),
		"email":      "manager@example.com",
	})
	if err := f.service.HandleDeactivateManager(context.Background(), payload); err != nil {
		t.Fatalf("deactivate by id: %v", err)
	}
	call := f.personnel.deactivations[0]
	if call.userID != managerID || call.email != "" || call.role != domain.RoleManager {
		t.Fatalf("call = %+v, want id lookup", call)
	}
}

func TestDeactivateUnknownTargetIsSwallowed(t *testing.T) {
	t.Parallel()

	f := newFixture()
	payload := envelopeFor(t, eventbus.EventDeactivateGuard, map[string]any{
		"guard_id": uuid.NewString(),
	})
	// The target does not exist; retrying cannot make it appear, so the
	// handler must not error.
	if err := f.service.HandleDeactivateGuard(context.Background(), payload); err != nil {
		t.Fatalf("unknown target errored: %v", err)
	}

	payload = envelopeFor(t, eventbus.EventDeactivateGuard, map[string]any{})
	if err := f.service.HandleDeactivateGuard(context.Background(), payload); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("keyless event accepted: %v", err)
	}
}

func TestHandleContractActivated(t *testing.T) {
	t.Parallel()

	f := newFixture()
	contractID := uuid.New()
	payload := envelopeFor(t, eventbus.EventContractActivated, map[string]any{
		"contract_id": contractID.String(),
		"templates": []map[string]any{
			{"site_name": "Diamond Plaza", "latitude": 10.78, "longitude": 106.70, "start_time": "08:00", "end_time": "17:00", "break_minutes": 60, "required_guards_count": 4, "days_of_week": "1,2,3,4,5"},
			{"site_name": "Diamond Plaza", "latitude": 10.78, "longitude": 106.70, "start_time": "17:00", "end_time": "23:00", "break_minutes": 30, "required_guards_count": 2, "days_of_week": "1,2,3,4,5"},
		},
	})
	if err := f.service.HandleContractActivated(context.Background(), payload); err != nil {
		t.Fatalf("handle contract activated: %v", err)
	}
	if got := f.templates.imports[contractID]; len(got) != 2 || got[0].SiteName != "Diamond Plaza" {
		t.Fatalf("imports = %+v", got)
	}
}

func TestHandleContractActivatedPropagatesImportErrors(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.templates.err = errors.New("deadlock detected")
	payload := envelopeFor(t, eventbus.EventContractActivated, map[string]any{
		"contract_id": uuid.NewString(),
		"templates":   []map[string]any{},
	})
	// Import failures must reach the worker so retry and dead-lettering
	// apply.
	if err := f.service.HandleContractActivated(context.Background(), payload); err == nil {
		t.Fatalf("import error swallowed")
	}
}
