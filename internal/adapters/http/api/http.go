// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/okian/scorebook/internal/adapters/http/swagger"
	"github.com/okian/scorebook/internal/adapters/repository"
	service "github.com/okian/scorebook/internal/app"
	"github.com/okian/scorebook/internal/domain/ledger"
	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/internal/domain/stats"
	"github.com/okian/scorebook/pkg/logger"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	CreateMatch(ctx context.Context, starters []string) (repository.Match, error)
	ListMatches(ctx context.Context) ([]repository.Summary, error)
	DeleteMatch(ctx context.Context, matchID string) error

	RecordEvent(ctx context.Context, matchID, participant, key, requestID string) (ledger.AppendResult, bool, error)
	EditEvent(ctx context.Context, matchID string, seq int64, participant, key string) (model.Event, error)
	DeleteEvent(ctx context.Context, matchID string, seq int64) error
	ResetMatch(ctx context.Context, matchID string) error
	IntroduceParticipant(ctx context.Context, matchID, id string) (bool, error)

	Score(ctx context.Context, matchID string) (model.Score, error)
	EventLog(ctx context.Context, matchID string) ([]model.Event, error)
	StatsPivot(ctx context.Context, matchID string) (stats.Pivot, error)
	SeenParticipants(ctx context.Context, matchID string) ([]string, error)
	ExportEventLog(ctx context.Context, matchID string, w io.Writer) error
	ExportPivot(ctx context.Context, matchID string, w io.Writer) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	matchesHandler *MatchesHandler
	eventsHandler  *EventsHandler
	reportsHandler *ReportsHandler

	corsOrigins []string
	logger      logger.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithCORSOrigins sets the origins allowed to call the API from a browser.
func WithCORSOrigins(origins []string) ServerOption {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// WithLogger enables per-request debug logging.
func WithLogger(log logger.Logger) ServerOption {
	return func(s *Server) {
		s.logger = log
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		matchesHandler: NewMatchesHandler(deps),
		eventsHandler:  NewEventsHandler(deps),
		reportsHandler: NewReportsHandler(deps),
		corsOrigins:    []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the root router with middleware, API routes and docs.
func (s *Server) Handler(ctx context.Context) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if s.logger != nil {
		r.Use(requestLogger(s.logger))
	}
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	s.Register(ctx, r)
	swagger.Register(ctx, r)
	return r
}

// Register attaches all API routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	m, e, rep := s.matchesHandler, s.eventsHandler, s.reportsHandler
	r.Route("/matches", func(r chi.Router) {
		r.Post("/", MetricsMiddleware(m.HandleCreate, "matches"))
		r.Get("/", MetricsMiddleware(m.HandleList, "matches"))

		r.Route("/{matchID}", func(r chi.Router) {
			r.Delete("/", MetricsMiddleware(m.HandleDelete, "match"))
			r.Post("/reset", MetricsMiddleware(m.HandleReset, "reset"))
			r.Get("/score", MetricsMiddleware(m.HandleScore, "score"))
			r.Get("/participants", MetricsMiddleware(m.HandleParticipants, "participants"))
			r.Post("/participants", MetricsMiddleware(m.HandleIntroduce, "participants"))

			r.Post("/events", MetricsMiddleware(e.HandleRecord, "events"))
			r.Get("/events", MetricsMiddleware(e.HandleList, "events"))
			r.Put("/events/{seq}", MetricsMiddleware(e.HandleEdit, "event"))
			r.Delete("/events/{seq}", MetricsMiddleware(e.HandleDelete, "event"))

			r.Get("/pivot", MetricsMiddleware(rep.HandlePivot, "pivot"))
			r.Get("/export/events.csv", MetricsMiddleware(rep.HandleExportEvents, "export_events"))
			r.Get("/export/pivot.csv", MetricsMiddleware(rep.HandleExportPivot, "export_pivot"))
		})
	})
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps a dependency error to its status and code.
func writeFailure(w http.ResponseWriter, op string, err error) {
	status, code := classify(err)
	writeError(w, status, code, Wrap(op, err))
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ledger.ErrUnknownEventKey):
		return http.StatusBadRequest, "unknown_event_key"
	case errors.Is(err, ledger.ErrMissingParticipant):
		return http.StatusBadRequest, "missing_participant"
	case errors.Is(err, ledger.ErrReservedParticipant):
		return http.StatusBadRequest, "reserved_participant"
	case errors.Is(err, ledger.ErrUnknownSequenceID):
		return http.StatusNotFound, "unknown_sequence_id"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "match_not_found"
	case errors.Is(err, repository.ErrCapacity):
		return http.StatusTooManyRequests, "capacity"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, ledger.ErrIntegrity):
		return http.StatusInternalServerError, "integrity_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// decodeBody reads a JSON body into v. An empty body leaves v untouched
// when allowEmpty is set.
func decodeBody(r *http.Request, v any, allowEmpty bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

func seqParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "seq")
	seq, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || seq <= 0 {
		return 0, ErrBadSeq
	}
	return seq, nil
}
