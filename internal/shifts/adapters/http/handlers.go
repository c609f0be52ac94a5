package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/guardpoint/workforce/internal/shifts/application"
)

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := bearerTokenFromHeader(r.Header.Get("Authorization"))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or missing credentials")
			return
		}
		claims, err := h.verifier.ParseAndValidate(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or missing credentials")
			return
		}
		ctx := context.WithValue(r.Context(), ctxKeyClaims, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// getShiftLocation serves the attendance service's location query. The
// answer body is the request/response contract itself, not the public API
// envelope, so the caller can branch on success/error_message directly.
func (h *Handler) getShiftLocation(w http.ResponseWriter, r *http.Request) {
	shiftID, err := uuid.Parse(chi.URLParam(r, "shift_id"))
	if err != nil {
		writeJSON(w, http.StatusOK, application.ShiftLocationAnswer{ErrorMessage: "shift_id must be a valid uuid"})
		return
	}
	writeJSON(w, http.StatusOK, h.service.GetShiftLocation(r.Context(), shiftID))
}

func (h *Handler) getShift(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "id must be a valid uuid")
		return
	}
	view, err := h.service.GetShift(r.Context(), id)
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	writeSuccess(w, http.StatusOK, view, "")
}

type cancelLeaveRequest struct {
	GuardID string    `json:"guard_id"`
	From    time.Time `json:"from"`
	To      time.Time `json:"to"`
	Reason  string    `json:"reason"`
}

func (h *Handler) cancelLeave(w http.ResponseWriter, r *http.Request) {
	var req cancelLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json body")
		return
	}
	guardID, err := uuid.Parse(req.GuardID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "guard_id must be a valid uuid")
		return
	}
	resp, err := h.service.CancelLeave(r.Context(), application.CancelLeaveCommand{
		GuardID: guardID,
		From:    req.From,
		To:      req.To,
		Reason:  req.Reason,
	})
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	writeSuccess(w, http.StatusOK, resp, "leave assignments cancelled")
}
