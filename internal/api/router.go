package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Auth endpoints (no auth required)
		r.Post("/auth/login", s.handleLogin)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			// WS ticket requires authentication - user must be logged in to request a ticket
			r.Post("/auth/ws-ticket", s.handleWSTicket)

			// Device endpoints
			r.Route("/devices", func(r chi.Router) {
				r.Get("/", s.handleListDevices)
				r.Get("/active", s.handleListActive)

				r.Route("/{udid}", func(r chi.Router) {
					r.Get("/", s.handleGetDevice)
					r.Post("/boot", s.handleBootDevice)
					r.Post("/shutdown", s.handleShutdownDevice)
					r.Post("/install", s.handleInstallApp)
					r.Post("/launch", s.handleLaunchApp)
					r.Post("/tap", s.handleTapDevice)
					r.Post("/type", s.handleTypeText)
					r.Post("/screenshot", s.handleScreenshot)
					r.Get("/history", s.handleDeviceHistory)
				})
			})

			// Capture endpoints
			r.Route("/captures", func(r chi.Router) {
				r.Get("/", s.handleListCaptures)
				r.Post("/", s.handleStartCapture)
				r.Post("/window", s.handleWindowCapture)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetCapture)
					r.Delete("/", s.handleStopCapture)
				})
			})

			// WebSocket (auth via ticket, validated in handler)
			r.Get("/ws", s.handleWebSocket)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
