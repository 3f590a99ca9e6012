package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/scorebook/internal/domain/model"
)

// eventRequest mirrors the OpenAPI schema for recording and editing events.
type eventRequest struct {
	Participant string `json:"participant"`
	EventKey    string `json:"event_key"`
	RequestID   string `json:"request_id,omitempty"`
}

type recordResponse struct {
	Event          model.Event `json:"event"`
	Score          model.Score `json:"score"`
	ClearSelection bool        `json:"clear_selection"`
}

type eventResponse struct {
	Event model.Event `json:"event"`
	Score model.Score `json:"score"`
}

type eventLogResponse struct {
	Events []model.Event `json:"events"`
	Score  model.Score   `json:"score"`
}

type scoreResponse struct {
	Score model.Score `json:"score"`
}

// EventsHandler handles event log commands and reads.
type EventsHandler struct {
	deps Dependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps Dependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// HandleRecord handles POST /matches/{matchID}/events.
func (h *EventsHandler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	const op = "api.record_event"
	var req eventRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	res, duplicate, err := h.deps.RecordEvent(r.Context(), chi.URLParam(r, "matchID"), req.Participant, req.EventKey, req.RequestID)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	if duplicate {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	// A neutral event has no snapshot; read the running score instead.
	score := model.Score{}
	if res.Event.Snapshot != nil {
		score = *res.Event.Snapshot
	} else if score, err = h.deps.Score(r.Context(), chi.URLParam(r, "matchID")); err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, recordResponse{
		Event:          res.Event,
		Score:          score,
		ClearSelection: res.ClearSelection,
	})
}

// HandleList handles GET /matches/{matchID}/events. Events are newest first.
func (h *EventsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.event_log"
	matchID := chi.URLParam(r, "matchID")
	events, err := h.deps.EventLog(r.Context(), matchID)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	score, err := h.deps.Score(r.Context(), matchID)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, eventLogResponse{Events: events, Score: score})
}

// HandleEdit handles PUT /matches/{matchID}/events/{seq}.
func (h *EventsHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	const op = "api.edit_event"
	seq, err := seqParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	var req eventRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	matchID := chi.URLParam(r, "matchID")
	ev, err := h.deps.EditEvent(r.Context(), matchID, seq, req.Participant, req.EventKey)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	score, err := h.deps.Score(r.Context(), matchID)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, eventResponse{Event: ev, Score: score})
}

// HandleDelete handles DELETE /matches/{matchID}/events/{seq}.
func (h *EventsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_event"
	seq, err := seqParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	matchID := chi.URLParam(r, "matchID")
	if err := h.deps.DeleteEvent(r.Context(), matchID, seq); err != nil {
		writeFailure(w, op, err)
		return
	}
	score, err := h.deps.Score(r.Context(), matchID)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, scoreResponse{Score: score})
}
