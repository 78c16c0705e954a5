package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/simfleet-core/internal/lifecycle"
	"github.com/nerrad567/simfleet-core/internal/simctl"
)

// handleListDevices returns every device the control tool knows about,
// whether or not an actor is tracking it.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.control.List(r.Context())
	if err != nil {
		s.writeCommandError(w, err, "failed to list devices")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"devices": devices, "count": len(devices)})
}

// handleListActive returns a snapshot of every live device actor.
func (s *Server) handleListActive(w http.ResponseWriter, _ *http.Request) {
	actors := s.supervisor.ListActive()
	writeJSON(w, http.StatusOK, map[string]any{"devices": actors, "count": len(actors)})
}

// handleGetDevice returns the live actor snapshot for a device.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	udid := chi.URLParam(r, "udid")

	actor, err := s.supervisor.Resolve(r.Context(), udid)
	if err != nil {
		if errors.Is(err, lifecycle.ErrNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.writeCommandError(w, err, "failed to resolve device")
		return
	}

	writeJSON(w, http.StatusOK, actor.Snapshot())
}

// handleBootDevice boots a device through its actor. Booting an
// already-booted device is a no-op and still returns the snapshot.
func (s *Server) handleBootDevice(w http.ResponseWriter, r *http.Request) {
	udid := chi.URLParam(r, "udid")

	actor, err := s.supervisor.Resolve(r.Context(), udid)
	if err != nil {
		if errors.Is(err, lifecycle.ErrNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.writeCommandError(w, err, "failed to resolve device")
		return
	}

	if err := actor.Boot(r.Context()); err != nil {
		s.writeActorError(w, err, "boot failed")
		return
	}

	writeJSON(w, http.StatusOK, actor.Snapshot())
}

// handleShutdownDevice shuts a device down and terminates its actor.
func (s *Server) handleShutdownDevice(w http.ResponseWriter, r *http.Request) {
	udid := chi.URLParam(r, "udid")

	if err := s.supervisor.StopActor(r.Context(), udid); err != nil {
		if errors.Is(err, lifecycle.ErrNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.writeCommandError(w, err, "shutdown failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"udid": udid, "status": "stopped"})
}

// installRequest is the request body for POST /devices/{udid}/install.
type installRequest struct {
	Path string `json:"path"`
}

// handleInstallApp installs an app bundle onto a device.
func (s *Server) handleInstallApp(w http.ResponseWriter, r *http.Request) {
	udid := chi.URLParam(r, "udid")

	var req installRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Path == "" {
		writeBadRequest(w, "path is required")
		return
	}

	actor, err := s.supervisor.Resolve(r.Context(), udid)
	if err != nil {
		if errors.Is(err, lifecycle.ErrNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.writeCommandError(w, err, "failed to resolve device")
		return
	}

	if err := actor.Install(r.Context(), req.Path); err != nil {
		s.writeActorError(w, err, "install failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"udid": udid, "installed": req.Path})
}

// launchRequest is the request body for POST /devices/{udid}/launch.
type launchRequest struct {
	BundleID string   `json:"bundle_id"`
	Args     []string `json:"args,omitempty"`
}

// handleLaunchApp launches an installed app by bundle identifier.
func (s *Server) handleLaunchApp(w http.ResponseWriter, r *http.Request) {
	udid := chi.URLParam(r, "udid")

	var req launchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.BundleID == "" {
		writeBadRequest(w, "bundle_id is required")
		return
	}

	actor, err := s.supervisor.Resolve(r.Context(), udid)
	if err != nil {
		if errors.Is(err, lifecycle.ErrNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.writeCommandError(w, err, "failed to resolve device")
		return
	}

	if err := actor.Launch(r.Context(), req.BundleID, req.Args); err != nil {
		s.writeActorError(w, err, "launch failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"udid": udid, "launched": req.BundleID})
}

// tapRequest is the request body for POST /devices/{udid}/tap.
type tapRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// handleTapDevice simulates a touch at screen coordinates.
func (s *Server) handleTapDevice(w http.ResponseWriter, r *http.Request) {
	udid := chi.URLParam(r, "udid")

	var req tapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.X < 0 || req.Y < 0 {
		writeBadRequest(w, "coordinates must be non-negative")
		return
	}

	actor, err := s.supervisor.Resolve(r.Context(), udid)
	if err != nil {
		if errors.Is(err, lifecycle.ErrNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.writeCommandError(w, err, "failed to resolve device")
		return
	}

	if err := actor.Tap(r.Context(), req.X, req.Y); err != nil {
		s.writeActorError(w, err, "tap failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"udid": udid, "tapped": [2]int{req.X, req.Y}})
}

// typeTextRequest is the request body for POST /devices/{udid}/type.
type typeTextRequest struct {
	Text string `json:"text"`
}

// handleTypeText types text into the focused element on the device.
func (s *Server) handleTypeText(w http.ResponseWriter, r *http.Request) {
	udid := chi.URLParam(r, "udid")

	var req typeTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Text == "" {
		writeBadRequest(w, "text is required")
		return
	}

	actor, err := s.supervisor.Resolve(r.Context(), udid)
	if err != nil {
		if errors.Is(err, lifecycle.ErrNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.writeCommandError(w, err, "failed to resolve device")
		return
	}

	if err := actor.TypeText(r.Context(), req.Text); err != nil {
		s.writeActorError(w, err, "type failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"udid": udid, "typed": len(req.Text)})
}

// screenshotRequest is the request body for POST /devices/{udid}/screenshot.
type screenshotRequest struct {
	Path string `json:"path"`
}

// handleScreenshot captures a still image of the device screen to a file.
func (s *Server) handleScreenshot(w http.ResponseWriter, r *http.Request) {
	udid := chi.URLParam(r, "udid")

	var req screenshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Path == "" {
		writeBadRequest(w, "path is required")
		return
	}

	actor, err := s.supervisor.Resolve(r.Context(), udid)
	if err != nil {
		if errors.Is(err, lifecycle.ErrNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.writeCommandError(w, err, "failed to resolve device")
		return
	}

	if err := actor.Screenshot(r.Context(), req.Path); err != nil {
		s.writeActorError(w, err, "screenshot failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"udid": udid, "path": req.Path})
}

// handleDeviceHistory returns recent state transitions for a device,
// newest first.
//
// Query parameters:
//   - limit: maximum number of entries (default 50, cap 200)
func (s *Server) handleDeviceHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeNotFound(w, "history is not configured")
		return
	}

	udid := chi.URLParam(r, "udid")

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 0 {
			writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	entries, err := s.history.List(r.Context(), udid, limit)
	if err != nil {
		writeInternalError(w, "failed to query history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"transitions": entries, "count": len(entries)})
}

// writeActorError maps an actor operation error to an HTTP response.
// A vanished actor reads as 404; a failed device command reads as a
// 502 from the control tool.
func (s *Server) writeActorError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, lifecycle.ErrNotFound), errors.Is(err, lifecycle.ErrTerminating):
		writeNotFound(w, "device actor no longer running")
	default:
		s.writeCommandError(w, err, msg)
	}
}

// writeCommandError maps a control tool failure to an HTTP response,
// surfacing the exit code and trailing output when available.
func (s *Server) writeCommandError(w http.ResponseWriter, err error, msg string) {
	var cmdErr *simctl.CommandError
	if errors.As(err, &cmdErr) {
		writeError(w, http.StatusBadGateway, ErrCodeUpstream, cmdErr.Error())
		return
	}
	s.logger.Error(msg, "error", err)
	writeInternalError(w, msg)
}
