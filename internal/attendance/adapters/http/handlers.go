package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/guardpoint/workforce/internal/attendance/application"
	"github.com/guardpoint/workforce/internal/attendance/domain"
)

const maxMultipartMemory = 12 << 20

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

func (h *Handler) checkIn(w http.ResponseWriter, r *http.Request) {
	cmd, err := parseAttendanceForm(r, "checkIn")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	outcome, err := h.service.CheckIn(r.Context(), cmd)
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	writeOutcome(w, outcome, "check-in recorded")
}

func (h *Handler) checkOut(w http.ResponseWriter, r *http.Request) {
	cmd, err := parseAttendanceForm(r, "checkOut")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	outcome, err := h.service.CheckOut(r.Context(), cmd)
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	writeOutcome(w, outcome, "check-out recorded")
}

func writeOutcome(w http.ResponseWriter, outcome application.AttendanceOutcome, okMessage string) {
	if outcome.Accepted {
		writeSuccess(w, http.StatusOK, outcome.Record, okMessage)
		return
	}
	signals := rejectionSignals(outcome)
	writeRejection(w, outcome.Code, outcome.Message, signals)
}

func rejectionSignals(outcome application.AttendanceOutcome) any {
	if outcome.FaceMatchScore == nil && outcome.DistanceFromSite == nil {
		return nil
	}
	signals := map[string]any{}
	if outcome.FaceMatchScore != nil {
		signals["faceMatchScore"] = *outcome.FaceMatchScore
	}
	if outcome.DistanceFromSite != nil {
		signals["distanceFromSite"] = *outcome.DistanceFromSite
	}
	return signals
}

// parseAttendanceForm maps the multipart check-in/check-out form onto the
// shared command. prefix selects the field family (checkIn vs checkOut).
func parseAttendanceForm(r *http.Request, prefix string) (application.CheckInCommand, error) {
	var cmd application.CheckInCommand
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return cmd, domain.InvalidInput("invalid multipart payload")
	}

	var err error
	if cmd.GuardID, err = uuid.Parse(r.FormValue("guardId")); err != nil {
		return cmd, domain.InvalidInput("guardId must be a valid uuid")
	}
	if cmd.ShiftAssignmentID, err = uuid.Parse(r.FormValue("shiftAssignmentId")); err != nil {
		return cmd, domain.InvalidInput("shiftAssignmentId must be a valid uuid")
	}
	if cmd.ShiftID, err = uuid.Parse(r.FormValue("shiftId")); err != nil {
		return cmd, domain.InvalidInput("shiftId must be a valid uuid")
	}
	if cmd.Latitude, err = strconv.ParseFloat(r.FormValue(prefix+"Latitude"), 64); err != nil {
		return cmd, domain.InvalidInput(prefix + "Latitude must be a number")
	}
	if cmd.Longitude, err = strconv.ParseFloat(r.FormValue(prefix+"Longitude"), 64); err != nil {
		return cmd, domain.InvalidInput(prefix + "Longitude must be a number")
	}
	if raw := r.FormValue(prefix + "LocationAccuracy"); raw != "" {
		accuracy, parseErr := strconv.ParseFloat(raw, 64)
		if parseErr != nil {
			return cmd, domain.InvalidInput(prefix + "LocationAccuracy must be a number")
		}
		cmd.Accuracy = &accuracy
	}

	file, header, err := r.FormFile(prefix + "Image")
	if err != nil {
		return cmd, domain.InvalidInput(prefix + "Image file is required")
	}
	defer file.Close()
	cmd.Image, err = readImageFile(file)
	if err != nil {
		return cmd, err
	}
	cmd.ImageContentType = header.Header.Get("Content-Type")
	return cmd, nil
}

func readImageFile(file multipart.File) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(file, domain.MaxProbeImageBytes+1))
	if err != nil {
		return nil, domain.InvalidInput("could not read image file")
	}
	if len(data) > domain.MaxProbeImageBytes {
		return nil, domain.InvalidInput("image exceeds the 10MB limit")
	}
	return data, nil
}

func (h *Handler) registerFaces(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GuardID string                  `json:"guard_id"`
		Images  []application.PoseImage `json:"images"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json body")
		return
	}
	guardID, err := uuid.Parse(req.GuardID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "guard_id must be a valid uuid")
		return
	}
	resp, err := h.service.RegisterFaces(r.Context(), application.RegisterFacesCommand{
		GuardID: guardID,
		Images:  req.Images,
	})
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	writeSuccess(w, http.StatusOK, resp, "faces registered")
}

// registerFacesWithFiles accepts the same enrollment as multipart uploads:
// one file per pose, the form field name carrying the pose type.
func (h *Handler) registerFacesWithFiles(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 * maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid multipart payload")
		return
	}
	guardID, err := uuid.Parse(r.FormValue("guardId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "guardId must be a valid uuid")
		return
	}

	cmd := application.RegisterFacesCommand{GuardID: guardID}
	for pose, headers := range r.MultipartForm.File {
		for _, header := range headers {
			file, openErr := header.Open()
			if openErr != nil {
				writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "could not read "+pose+" image")
				return
			}
			data, readErr := readImageFile(file)
			_ = file.Close()
			if readErr != nil {
				status, code, msg := mapDomainError(readErr)
				writeError(w, status, code, msg)
				return
			}
			cmd.Images = append(cmd.Images, application.PoseImage{
				ImageBase64: base64.StdEncoding.EncodeToString(data),
				PoseType:    pose,
			})
		}
	}

	resp, err := h.service.RegisterFaces(r.Context(), cmd)
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	writeSuccess(w, http.StatusOK, resp, "faces registered")
}

func (h *Handler) getAttendance(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "id must be a valid uuid")
		return
	}
	view, err := h.service.GetAttendance(r.Context(), id)
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	writeSuccess(w, http.StatusOK, view, "")
}

func (h *Handler) markIncomplete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "id must be a valid uuid")
		return
	}
	view, err := h.service.MarkIncomplete(r.Context(), id)
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	writeSuccess(w, http.StatusOK, view, "attendance marked incomplete")
}
