// Package http exposes the attendance REST surface.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/guardpoint/workforce/internal/attendance/application"
	"github.com/guardpoint/workforce/internal/attendance/ports"
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

	r.Route("/api/attendances", func(r chi.Router) {
		r.Use(handler.authMiddleware)
		r.Post("/check-in", handler.checkIn)
		r.Post("/check-out", handler.checkOut)
		r.Post("/faces/register", handler.registerFaces)
		r.Post("/faces/register-with-files", handler.registerFacesWithFiles)
		r.Get("/{id}", handler.getAttendance)
		r.Post("/{id}/incomplete", handler.markIncomplete)
	})
	return r
}
