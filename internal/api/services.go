package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kakuware/ics2000-core/internal/cloud"
	"github.com/kakuware/ics2000-core/internal/device"
	"github.com/kakuware/ics2000-core/internal/service"
)

// handleService dispatches a named service action.
//
// The request body is an optional JSON object of arguments
// (e.g. {"scene_id": 7} for run_scene). Errors map to:
//
//	unknown action / unknown id → 404
//	invalid arguments           → 400
//	cloud failure               → 502
func (s *Server) handleService(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")

	args := map[string]any{}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeBadRequest(w, "reading request body failed")
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &args); err != nil {
			writeBadRequest(w, "request body must be a JSON object")
			return
		}
	}

	if err := s.dispatcher.Dispatch(r.Context(), action, args); err != nil {
		s.writeServiceError(w, action, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"action": action,
	})
}

// writeServiceError maps dispatch errors onto HTTP responses.
func (s *Server) writeServiceError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownAction):
		writeNotFound(w, "unknown action: "+action)
	case errors.Is(err, service.ErrInvalidArgument):
		writeBadRequest(w, err.Error())
	case errors.Is(err, device.ErrSceneNotFound), errors.Is(err, device.ErrDeviceNotFound):
		writeNotFound(w, err.Error())
	case errors.Is(err, cloud.ErrAuth), errors.Is(err, cloud.ErrSync), errors.Is(err, cloud.ErrCommand):
		s.logger.Warn("service action failed upstream", "action", action, "error", err)
		writeError(w, http.StatusBadGateway, ErrCodeUpstream, err.Error())
	default:
		s.logger.Error("service action failed", "action", action, "error", err)
		writeInternalError(w, "service action failed")
	}
}
