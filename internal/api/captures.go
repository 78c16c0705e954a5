package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/simfleet-core/internal/capture"
)

// startCaptureRequest is the request body for POST /captures.
type startCaptureRequest struct {
	UDID        string `json:"udid"`
	Dest        string `json:"dest"`
	FPS         int    `json:"fps,omitempty"`
	MaxDuration int    `json:"max_duration_seconds,omitempty"`
}

// handleStartCapture begins a screen recording session for a device.
func (s *Server) handleStartCapture(w http.ResponseWriter, r *http.Request) {
	var req startCaptureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.UDID == "" {
		writeBadRequest(w, "udid is required")
		return
	}
	if req.Dest == "" {
		writeBadRequest(w, "dest is required")
		return
	}
	if req.FPS < 0 || req.FPS > 60 {
		writeBadRequest(w, "fps must be between 1 and 60")
		return
	}
	if req.MaxDuration < 0 {
		writeBadRequest(w, "max_duration_seconds must be non-negative")
		return
	}

	maxDuration := time.Duration(req.MaxDuration) * time.Second
	sess, err := s.captures.Start(r.Context(), req.UDID, req.Dest, req.FPS, maxDuration)
	if err != nil {
		s.writeCommandError(w, err, "failed to start capture")
		return
	}

	writeJSON(w, http.StatusCreated, sess.Info())
}

// handleListCaptures returns every active capture session.
func (s *Server) handleListCaptures(w http.ResponseWriter, _ *http.Request) {
	sessions := s.captures.List()
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions, "count": len(sessions)})
}

// handleGetCapture returns a single capture session by ID.
func (s *Server) handleGetCapture(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sess, err := s.captures.Get(id)
	if err != nil {
		if errors.Is(err, capture.ErrSessionNotFound) {
			writeNotFound(w, "capture session not found")
			return
		}
		writeInternalError(w, "failed to get capture session")
		return
	}

	writeJSON(w, http.StatusOK, sess.Info())
}

// handleStopCapture stops a capture session and finalizes the output file.
func (s *Server) handleStopCapture(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sess, err := s.captures.Get(id)
	if err != nil {
		if errors.Is(err, capture.ErrSessionNotFound) {
			writeNotFound(w, "capture session not found")
			return
		}
		writeInternalError(w, "failed to get capture session")
		return
	}

	// Snapshot the counters before Stop removes the session.
	info := sess.Info()
	if err := s.captures.Stop(id); err != nil && !errors.Is(err, capture.ErrSessionNotFound) {
		s.logger.Warn("capture session ended with error", "session_id", id, "error", err)
	}
	info.Active = false

	writeJSON(w, http.StatusOK, info)
}

// windowCaptureRequest is the request body for POST /captures/window.
type windowCaptureRequest struct {
	UDID     string `json:"udid"`
	Dest     string `json:"dest"`
	Duration int    `json:"duration_seconds"`
}

// handleWindowCapture records the device window directly with the external
// window recorder. The call blocks until the recording completes.
func (s *Server) handleWindowCapture(w http.ResponseWriter, r *http.Request) {
	var req windowCaptureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.UDID == "" {
		writeBadRequest(w, "udid is required")
		return
	}
	if req.Dest == "" {
		writeBadRequest(w, "dest is required")
		return
	}
	if req.Duration <= 0 {
		writeBadRequest(w, "duration_seconds must be positive")
		return
	}

	duration := time.Duration(req.Duration) * time.Second
	if err := s.captures.CaptureWindow(r.Context(), req.UDID, req.Dest, duration); err != nil {
		s.writeCommandError(w, err, "window capture failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"udid": req.UDID, "dest": req.Dest})
}
