// Package http exposes the shifts REST surface and the internal location
// endpoint consumed by the attendance service.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/guardpoint/workforce/internal/shifts/application"
	"github.com/guardpoint/workforce/internal/shifts/ports"
)

type Handler struct {
	service  *application.Service
	verifier ports.TokenVerifier
}

func NewHandler(service *application.Service, verifier ports.TokenVerifier) *Handler {
	return &Handler{service: service, verifier: verifier}
}

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { writeMessage(w, http.StatusOK, "ok") })
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) { writeMessage(w, http.StatusOK, "ready") })

	// Internal surface, reachable only inside the service mesh.
	r.Get("/internal/shifts/{shift_id}/location", handler.getShiftLocation)

	r.Route("/api/shifts", func(r chi.Router) {
		r.Use(handler.authMiddleware)
		r.Post("/leave-cancellations", handler.cancelLeave)
		r.Get("/{id}", handler.getShift)
	})
	return r
}
