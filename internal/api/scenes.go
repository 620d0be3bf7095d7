package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kakuware/ics2000-core/internal/device"
)

// Scene routes answer 404 unless show_scenes is enabled, matching the
// vendor integration where scenes only become entities on request.

// handleListScenes returns all cached scenes.
func (s *Server) handleListScenes(w http.ResponseWriter, _ *http.Request) {
	if !s.devCfg.ShowScenes {
		writeNotFound(w, "scenes are not exposed (devices.show_scenes is disabled)")
		return
	}

	scenes := s.hub.Scenes()
	writeJSON(w, http.StatusOK, map[string]any{
		"scenes": scenes,
		"count":  len(scenes),
	})
}

// handleGetScene returns one cached scene by id.
func (s *Server) handleGetScene(w http.ResponseWriter, r *http.Request) {
	if !s.devCfg.ShowScenes {
		writeNotFound(w, "scenes are not exposed (devices.show_scenes is disabled)")
		return
	}

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "scene id must be an integer")
		return
	}

	scene, err := s.hub.Scene(id)
	if err != nil {
		if errors.Is(err, device.ErrSceneNotFound) {
			writeNotFound(w, "scene not found")
			return
		}
		writeInternalError(w, "looking up scene failed")
		return
	}

	writeJSON(w, http.StatusOK, scene)
}
