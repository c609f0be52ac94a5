package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/guardpoint/workforce/internal/shifts/application"
	"github.com/guardpoint/workforce/internal/shifts/domain"
	"github.com/guardpoint/workforce/internal/shifts/ports"
)

type stubShiftRepo struct {
	shifts map[uuid.UUID]domain.Shift
}

func (s *stubShiftRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Shift, error) {
	shift, ok := s.shifts[id]
	if !ok {
		return domain.Shift{}, domain.ErrNotFound
	}
	return shift, nil
}

type stubVerifier struct {
	claims ports.AuthClaims
	err    error
}

func (s *stubVerifier) ParseAndValidate(string) (ports.AuthClaims, error) {
	return s.claims, s.err
}

func newTestRouter(repo *stubShiftRepo, verifier ports.TokenVerifier) http.Handler {
	service := application.NewService(application.Dependencies{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Shifts: repo,
	})
	return NewRouter(NewHandler(service, verifier))
}

func TestLocationEndpointContract(t *testing.T) {
	t.Parallel()

	shiftID := uuid.New()
	router := newTestRouter(&stubShiftRepo{shifts: map[uuid.UUID]domain.Shift{
		shiftID: {
			ID:             shiftID,
			Latitude:       10.762622,
			Longitude:      106.660172,
			ScheduledStart: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
			ScheduledEnd:   time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC),
			BreakMinutes:   60,
		},
	}}, &stubVerifier{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/internal/shifts/"+shiftID.String()+"/location", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var answer struct {
		Success  bool `json:"success"`
		Location *struct {
			Latitude       float64   `json:"latitude"`
			Longitude      float64   `json:"longitude"`
			ScheduledStart time.Time `json:"scheduled_start_time"`
			ScheduledEnd   time.Time `json:"scheduled_end_time"`
			BreakMinutes   int       `json:"break_minutes"`
		} `json:"location"`
		ErrorMessage string `json:"error_message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &answer); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !answer.Success || answer.Location == nil {
		t.Fatalf("answer = %+v", answer)
	}
	if answer.Location.BreakMinutes != 60 || answer.Location.ScheduledStart.IsZero() {
		t.Fatalf("location = %+v", answer.Location)
	}
}

func TestLocationEndpointNeverErrorsTransportwise(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&stubShiftRepo{shifts: map[uuid.UUID]domain.Shift{}}, &stubVerifier{})

	for _, path := range []string{
		"/internal/shifts/not-a-uuid/location",
		"/internal/shifts/" + uuid.NewString() + "/location",
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d, want 200 with an unsuccessful body", path, rec.Code)
		}
		var answer struct {
			Success      bool   `json:"success"`
			ErrorMessage string `json:"error_message"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &answer); err != nil {
			t.Fatalf("%s: decode body: %v", path, err)
		}
		if answer.Success || answer.ErrorMessage == "" {
			t.Fatalf("%s: answer = %+v", path, answer)
		}
	}
}

func TestAPIRequiresBearerToken(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&stubShiftRepo{shifts: map[uuid.UUID]domain.Shift{}},
		&stubVerifier{err: domain.ErrUnauthorized})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/shifts/"+uuid.NewString(), nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/shifts/"+uuid.NewString(), nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: status = %d, want 401", rec.Code)
	}
}

func TestBearerTokenFromHeader(t *testing.T) {
	t.Parallel()

	if _, err := bearerTokenFromHeader(""); err == nil {
		t.Fatalf("empty header accepted")
	}
	if _, err := bearerTokenFromHeader("Basic abc"); err == nil {
		t.Fatalf("basic auth accepted")
	}
	if _, err := bearerTokenFromHeader("Bearer "); err == nil {
		t.Fatalf("empty token accepted")
	}
	token, err := bearerTokenFromHeader("Bearer abc.def.ghi")
	if err != nil || token != "abc.def.ghi" {
		t.Fatalf("token = %q, err = %v", token, err)
	}
}
