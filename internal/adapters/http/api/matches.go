package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okian/scorebook/internal/adapters/repository"
	"github.com/okian/scorebook/internal/domain/model"
)

type createMatchRequest struct {
	Starters []string `json:"starters"`
}

type matchResponse struct {
	MatchID      string    `json:"match_id"`
	CreatedAt    time.Time `json:"created_at"`
	Participants []string  `json:"participants"`
}

type matchListResponse struct {
	Matches []repository.Summary `json:"matches"`
}

type participantsResponse struct {
	Participants []string `json:"participants"`
}

type introduceRequest struct {
	ID string `json:"id"`
}

type introduceResponse struct {
	Added        bool     `json:"added"`
	Participants []string `json:"participants"`
}

type resetResponse struct {
	Score        model.Score `json:"score"`
	Participants []string    `json:"participants"`
}

// MatchesHandler serves match lifecycle and per-match reads.
type MatchesHandler struct {
	deps Dependencies
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps Dependencies) *MatchesHandler {
	return &MatchesHandler{deps: deps}
}

// HandleCreate handles POST /matches.
func (h *MatchesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_match"
	var req createMatchRequest
	if err := decodeBody(r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	m, err := h.deps.CreateMatch(r.Context(), req.Starters)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, matchResponse{
		MatchID:      m.ID,
		CreatedAt:    m.Created,
		Participants: m.Ledger.Participants(),
	})
}

// HandleList handles GET /matches.
func (h *MatchesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.deps.ListMatches(r.Context())
	if err != nil {
		writeFailure(w, "api.list_matches", err)
		return
	}
	writeJSON(w, http.StatusOK, matchListResponse{Matches: list})
}

// HandleDelete handles DELETE /matches/{matchID}.
func (h *MatchesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteMatch(r.Context(), chi.URLParam(r, "matchID")); err != nil {
		writeFailure(w, "api.delete_match", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleReset handles POST /matches/{matchID}/reset.
func (h *MatchesHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	const op = "api.reset_match"
	matchID := chi.URLParam(r, "matchID")
	if err := h.deps.ResetMatch(r.Context(), matchID); err != nil {
		writeFailure(w, op, err)
		return
	}
	seen, err := h.deps.SeenParticipants(r.Context(), matchID)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, resetResponse{Participants: seen})
}

// HandleScore handles GET /matches/{matchID}/score.
func (h *MatchesHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	score, err := h.deps.Score(r.Context(), chi.URLParam(r, "matchID"))
	if err != nil {
		writeFailure(w, "api.score", err)
		return
	}
	writeJSON(w, http.StatusOK, score)
}

// HandleParticipants handles GET /matches/{matchID}/participants.
func (h *MatchesHandler) HandleParticipants(w http.ResponseWriter, r *http.Request) {
	seen, err := h.deps.SeenParticipants(r.Context(), chi.URLParam(r, "matchID"))
	if err != nil {
		writeFailure(w, "api.participants", err)
		return
	}
	writeJSON(w, http.StatusOK, participantsResponse{Participants: seen})
}

// HandleIntroduce handles POST /matches/{matchID}/participants.
func (h *MatchesHandler) HandleIntroduce(w http.ResponseWriter, r *http.Request) {
	const op = "api.introduce_participant"
	var req introduceRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	matchID := chi.URLParam(r, "matchID")
	added, err := h.deps.IntroduceParticipant(r.Context(), matchID, req.ID)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	seen, err := h.deps.SeenParticipants(r.Context(), matchID)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, introduceResponse{Added: added, Participants: seen})
}
